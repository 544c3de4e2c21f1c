package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/accounts"
	"github.com/ariefcatur/go-vehicle-market/internal/blob"
	"github.com/ariefcatur/go-vehicle-market/internal/booking"
	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/config"
	"github.com/ariefcatur/go-vehicle-market/internal/content"
	"github.com/ariefcatur/go-vehicle-market/internal/customers"
	"github.com/ariefcatur/go-vehicle-market/internal/events"
	"github.com/ariefcatur/go-vehicle-market/internal/httpx"
	kafkax "github.com/ariefcatur/go-vehicle-market/internal/kafka"
	"github.com/ariefcatur/go-vehicle-market/internal/logx"
	"github.com/ariefcatur/go-vehicle-market/internal/memstore"
	"github.com/ariefcatur/go-vehicle-market/internal/postgres"
	"github.com/ariefcatur/go-vehicle-market/internal/reconcile"
	"github.com/ariefcatur/go-vehicle-market/internal/redisx"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/reports"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
	"github.com/ariefcatur/go-vehicle-market/internal/seed"
)

// kv is what Redis provides to the services: the catalog cache, booking
// idempotency and session revocation.
type kv interface {
	catalog.Cache
	booking.Guard
	accounts.Revocations
}

// repos is the storage backend chosen by DATA_BACKEND.
type repos struct {
	vehicles catalog.Repository
	rentals  rentals.Repository
	sales    sales.Repository
	profiles accounts.Repository
	content  content.Repository
	// local is set for the memory backend and doubles as the key-value store
	// when Redis is not configured.
	local *memstore.Store
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logx.Must(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	var st repos
	switch cfg.DataBackend {
	case config.BackendMemory:
		st.local = memstore.New()
		st.vehicles, st.rentals, st.sales = st.local.Vehicles(), st.local.Rentals(), st.local.Sales()
		st.profiles, st.content = st.local.Profiles(), st.local.Content()
		log.Warn("using in-memory data backend, data is lost on exit")
	default:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal("db connect", zap.Error(err))
		}
		defer db.Close()
		if err := postgres.NewMigrator(db, log).Up(ctx); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
		r := postgres.NewRepos(db)
		st = repos{vehicles: r.Vehicles, rentals: r.Rentals, sales: r.Sales, profiles: r.Profiles, content: r.Content}
	}

	// Redis
	var store kv
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		pctx, pcancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pctx).Err(); err != nil {
			log.Warn("redis ping failed, continuing", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		pcancel()
		store = redisx.NewStore(rdb)
	} else {
		if st.local == nil {
			st.local = memstore.New()
		}
		store = st.local.KV()
	}

	// Kafka producer
	var emitter events.Emitter = events.Nop{}
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, events.TopicTransactions, 1024, log)
		prod.Start(ctx)
		emitter = &events.KafkaEmitter{Producer: prod, Service: cfg.ServiceName, Log: log}
	}

	// Services
	blobs := blob.NewDiskStore(cfg.BlobDir, cfg.PublicBaseURL)

	cat := catalog.NewService(st.vehicles, blobs, log)
	cat.Cache = store
	cat.CacheTTL = cfg.CatalogTTL

	rent := rentals.NewService(st.rentals, cat, emitter, log)
	sale := sales.NewService(st.sales, cat, emitter, log)
	acc := accounts.NewService(st.profiles, cfg.JWTSecret, cfg.JWTTTL, store, blobs, log)
	go accounts.LogEvents(ctx, acc.Hub, log)

	api := &httpx.API{
		Catalog:    cat,
		Rentals:    rent,
		Sales:      sale,
		Booking:    booking.NewService(cat, rent, sale, store, log),
		Accounts:   acc,
		Customers:  customers.NewService(acc, rent, sale, log),
		Content:    content.NewService(st.content),
		Reports:    reports.NewService(rent, sale, cat),
		Reconciler: reconcile.New(cat, rent, sale, log),
		BlobDir:    cfg.BlobDir,
		Log:        log,
	}
	// The memory backend starts empty on every run; fill it from the seed file.
	if cfg.DataBackend == config.BackendMemory {
		if f, err := seed.Load(cfg.SeedFile); err == nil {
			if _, err := seed.Apply(ctx, seed.Targets{Catalog: cat, Content: api.Content, Accounts: acc}, f, log); err != nil {
				log.Fatal("seed", zap.Error(err))
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Fatal("load seed file", zap.String("path", cfg.SeedFile), zap.Error(err))
		}
	}

	router := httpx.NewRouter(log)
	api.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	// graceful shutdown
	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("backend", cfg.DataBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close() // close inbox, flush and close writer
		cancel()
		prod.WaitClosed()
	}
}
