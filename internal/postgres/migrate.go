package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations is the schema shipped with the binary.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrator applies *.up.sql files in lexical order, each in its own
// transaction, and records them in schema_migrations.
type Migrator struct {
	DB  *pgxpool.Pool
	FS  fs.FS
	Dir string
	Log *zap.Logger
}

func NewMigrator(db *pgxpool.Pool, log *zap.Logger) *Migrator {
	return &Migrator{DB: db, FS: Migrations(), Dir: ".", Log: log}
}

func (m *Migrator) Up(ctx context.Context) error {
	if m.DB == nil || m.FS == nil {
		return errors.New("migrator requires a pool and a filesystem")
	}
	if _, err := m.DB.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now())`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := Pending(m.FS, m.Dir)
	if err != nil {
		return err
	}
	applied := 0
	for _, name := range names {
		ok, err := m.apply(ctx, name)
		if err != nil {
			return err
		}
		if ok {
			applied++
			m.Log.Info("migration applied", zap.String("file", name))
		}
	}
	if applied == 0 {
		m.Log.Info("no migrations to run")
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, name string) (bool, error) {
	body, err := fs.ReadFile(m.FS, path.Join(m.Dir, name))
	if err != nil {
		return false, fmt.Errorf("read migration %s: %w", name, err)
	}

	tx, err := m.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var done bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&done); err != nil {
		return false, err
	}
	if done {
		return false, nil
	}
	for i, stmt := range SplitStatements(string(body)) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return false, fmt.Errorf("exec %s [%d]: %w", name, i+1, err)
		}
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// Pending lists the up migrations under dir in apply order.
func Pending(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// SplitStatements splits on semicolons. Migrations must not use them inside
// literals or function bodies.
func SplitStatements(sql string) []string {
	raw := strings.Split(sql, ";")
	out := make([]string, 0, len(raw))
	for _, stmt := range raw {
		if s := strings.TrimSpace(stripComments(stmt)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stripComments(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if !strings.HasPrefix(strings.TrimSpace(l), "--") {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
