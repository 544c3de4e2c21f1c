package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, a Account) (Profile, error)
	ByEmail(ctx context.Context, email string) (Account, error)
	Get(ctx context.Context, id string) (Profile, error)
	// List returns profiles, most recently updated first.
	List(ctx context.Context) ([]Profile, error)
	Update(ctx context.Context, id string, p ProfilePatch) (Profile, error)
	SetIDCard(ctx context.Context, id, url string) (Profile, error)
}

type PGRepo struct{ DB *pgxpool.Pool }

const profileColumns = `id, email, full_name, phone, address, role, id_card_url, created_at, updated_at`

func scanProfile(row pgx.Row, extra ...any) (Profile, error) {
	var (
		p    Profile
		role string
	)
	dest := append([]any{&p.ID, &p.Email, &p.FullName, &p.Phone, &p.Address, &role, &p.IDCardURL, &p.CreatedAt, &p.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return Profile{}, err
	}
	p.Role = Role(role)
	return p, nil
}

func (r *PGRepo) Create(ctx context.Context, a Account) (Profile, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	p, err := scanProfile(r.DB.QueryRow(ctx, `
		INSERT INTO profiles (id, email, full_name, phone, address, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+profileColumns,
		a.ID, a.Email, a.FullName, a.Phone, a.Address, string(a.Role), a.PasswordHash))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return Profile{}, ErrEmailTaken
	}
	if err != nil {
		return Profile{}, fmt.Errorf("insert profile: %w", err)
	}
	return p, nil
}

func (r *PGRepo) ByEmail(ctx context.Context, email string) (Account, error) {
	var a Account
	p, err := scanProfile(r.DB.QueryRow(ctx,
		`SELECT `+profileColumns+`, password_hash FROM profiles WHERE email = $1`, email), &a.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("profile by email: %w", err)
	}
	a.Profile = p
	return a, nil
}

func (r *PGRepo) Get(ctx context.Context, id string) (Profile, error) {
	p, err := scanProfile(r.DB.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get profile %s: %w", id, err)
	}
	return p, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	out := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, id string, patch ProfilePatch) (Profile, error) {
	p, err := scanProfile(r.DB.QueryRow(ctx, `
		UPDATE profiles SET
			full_name = COALESCE($2, full_name),
			phone = COALESCE($3, phone),
			address = COALESCE($4, address),
			updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns, id, patch.FullName, patch.Phone, patch.Address))
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("update profile %s: %w", id, err)
	}
	return p, nil
}

func (r *PGRepo) SetIDCard(ctx context.Context, id, url string) (Profile, error) {
	p, err := scanProfile(r.DB.QueryRow(ctx, `
		UPDATE profiles SET id_card_url = $2, updated_at = now() WHERE id = $1
		RETURNING `+profileColumns, id, url))
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("set id card %s: %w", id, err)
	}
	return p, nil
}
