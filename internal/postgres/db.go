package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-vehicle-market/internal/accounts"
	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/content"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Repos bundles the Postgres repositories sharing one pool.
type Repos struct {
	Vehicles *catalog.PGRepo
	Rentals  *rentals.PGRepo
	Sales    *sales.PGRepo
	Profiles *accounts.PGRepo
	Content  *content.PGRepo
}

func NewRepos(db *pgxpool.Pool) Repos {
	return Repos{
		Vehicles: &catalog.PGRepo{DB: db},
		Rentals:  &rentals.PGRepo{DB: db},
		Sales:    &sales.PGRepo{DB: db},
		Profiles: &accounts.PGRepo{DB: db},
		Content:  &content.PGRepo{DB: db},
	}
}
