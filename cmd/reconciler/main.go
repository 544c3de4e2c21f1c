package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/blob"
	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/config"
	"github.com/ariefcatur/go-vehicle-market/internal/events"
	kafkax "github.com/ariefcatur/go-vehicle-market/internal/kafka"
	"github.com/ariefcatur/go-vehicle-market/internal/logx"
	"github.com/ariefcatur/go-vehicle-market/internal/memstore"
	"github.com/ariefcatur/go-vehicle-market/internal/postgres"
	"github.com/ariefcatur/go-vehicle-market/internal/reconcile"
	"github.com/ariefcatur/go-vehicle-market/internal/redisx"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
)

// The reconciler re-checks vehicle status against transactions: per vehicle
// for every transaction event on Kafka, and for the whole fleet on a ticker.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logx.Must(cfg.LogLevel).With(zap.String("service", cfg.ServiceName+"-reconciler"))
	defer func() { _ = log.Sync() }()

	if cfg.DataBackend != config.BackendPostgres {
		log.Fatal("the reconciler needs the postgres backend")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	repos := postgres.NewRepos(db)

	// Redis: dedup of redelivered events and the catalog cache the API reads
	cat := catalog.NewService(repos.Vehicles, blob.NewDiskStore(cfg.BlobDir, cfg.PublicBaseURL), log)
	var dedup reconcile.Dedup
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		store := redisx.NewStore(rdb)
		cat.Cache = store
		dedup = store
	} else {
		dedup = memstore.New().KV()
	}

	rec := reconcile.New(cat,
		rentals.NewService(repos.Rentals, cat, events.Nop{}, log),
		sales.NewService(repos.Sales, cat, events.Nop{}, log),
		log)

	// Consumer
	if len(cfg.KafkaBrokers) > 0 {
		h := &reconcile.Handler{R: rec, Dedup: dedup, Service: cfg.ServiceName + "-reconciler", Log: log}
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ReconcilerGroup, events.TopicTransactions, cfg.ReconcilerWorkers, log)
		go func() {
			log.Info("reconciler consumer started",
				zap.String("group", cfg.ReconcilerGroup),
				zap.String("topic", events.TopicTransactions),
				zap.Int("workers", cfg.ReconcilerWorkers))
			if err := cons.Start(ctx, h.Handle); err != nil {
				log.Error("consumer exit", zap.Error(err))
				cancel()
			}
		}()
	} else {
		log.Warn("KAFKA_BROKERS not set, running periodic sweeps only")
	}

	// Periodic sweep
	go func() {
		t := time.NewTicker(cfg.ReconcileInterval)
		defer t.Stop()
		for {
			sweep(ctx, rec, log)
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down reconciler")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func sweep(ctx context.Context, rec *reconcile.Reconciler, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	ms, err := rec.Run(ctx, false)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("reconcile sweep", zap.Error(err))
		}
		return
	}
	log.Info("reconcile sweep", zap.Int("fixed", len(ms)))
}
