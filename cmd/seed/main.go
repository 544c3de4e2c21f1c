package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/accounts"
	"github.com/ariefcatur/go-vehicle-market/internal/blob"
	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/config"
	"github.com/ariefcatur/go-vehicle-market/internal/content"
	"github.com/ariefcatur/go-vehicle-market/internal/logx"
	"github.com/ariefcatur/go-vehicle-market/internal/memstore"
	"github.com/ariefcatur/go-vehicle-market/internal/postgres"
	"github.com/ariefcatur/go-vehicle-market/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logx.Must(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	path := flag.String("file", cfg.SeedFile, "seed YAML file")
	flag.Parse()

	if cfg.DataBackend != config.BackendPostgres {
		log.Fatal("seeding needs the postgres backend; the memory backend seeds itself at startup")
	}

	f, err := seed.Load(*path)
	if err != nil {
		log.Fatal("load seed file", zap.String("path", *path), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.NewMigrator(db, log).Up(ctx); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	repos := postgres.NewRepos(db)

	// Seed records carry image URLs, nothing is uploaded. Revocation is never
	// consulted while seeding, so a local store stands in for Redis.
	blobs := blob.NewDiskStore(cfg.BlobDir, cfg.PublicBaseURL)
	res, err := seed.Apply(ctx, seed.Targets{
		Catalog:  catalog.NewService(repos.Vehicles, blobs, log),
		Content:  content.NewService(repos.Content),
		Accounts: accounts.NewService(repos.Profiles, cfg.JWTSecret, cfg.JWTTTL, memstore.New().KV(), blobs, log),
	}, f, log)
	if err != nil {
		log.Fatal("seed", zap.Error(err))
	}
	log.Info("seed done", zap.String("file", *path), zap.Any("result", res))
}
