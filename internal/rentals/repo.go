package rentals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

// Repository is the rentals table. Every method that touches the vehicle
// does so in the same transaction as the rental write.
type Repository interface {
	// Create inserts r as pending and moves its vehicle from tersedia to disewa.
	Create(ctx context.Context, r Rental) (Rental, error)
	Get(ctx context.Context, id string) (Rental, error)
	// List returns rentals newest first with vehicle and profile summaries.
	List(ctx context.Context, f ListFilter) ([]Rental, error)
	UpdateDetails(ctx context.Context, id string, start, end time.Time, total int64) (Rental, error)
	// Transition writes step.To and total if the rental is still in step.From,
	// plus step.VehicleStatus when set.
	Transition(ctx context.Context, id string, step Step, total int64) (Rental, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type PGRepo struct{ DB *pgxpool.Pool }

const selectRental = `
	SELECT r.id, r.user_id, r.vehicle_id, r.start_date, r.end_date, r.total_price, r.status, r.created_at,
	       v.name, v.image, p.full_name, p.phone
	FROM rentals r
	LEFT JOIN vehicles v ON v.id = r.vehicle_id
	LEFT JOIN profiles p ON p.id = r.user_id`

func scanRental(row pgx.Row) (Rental, error) {
	var (
		r               Rental
		vehicleID       *string
		status          string
		vName, vImage   *string
		fullName, phone *string
	)
	err := row.Scan(&r.ID, &r.UserID, &vehicleID, &r.StartDate, &r.EndDate, &r.TotalPrice, &status, &r.CreatedAt,
		&vName, &vImage, &fullName, &phone)
	if err != nil {
		return Rental{}, err
	}
	r.Status = Status(status)
	if vehicleID != nil {
		r.VehicleID = *vehicleID
	}
	if vName != nil {
		r.Vehicle = &VehicleSummary{Name: *vName, Image: deref(vImage)}
	}
	if fullName != nil || phone != nil {
		r.Profile = &ProfileSummary{FullName: deref(fullName), Phone: deref(phone)}
	}
	return r, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (p *PGRepo) Create(ctx context.Context, r Rental) (Rental, error) {
	tx, err := p.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Rental{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := catalog.ReserveTx(ctx, tx, r.VehicleID, catalog.StatusRented); err != nil {
		return Rental{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO rentals (id, user_id, vehicle_id, start_date, end_date, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')`,
		r.ID, r.UserID, r.VehicleID, r.StartDate, r.EndDate, r.TotalPrice); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return Rental{}, validation.Errors{}.Add("user_id", "unknown user")
		}
		return Rental{}, fmt.Errorf("insert rental: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Rental{}, err
	}
	return p.Get(ctx, r.ID)
}

func (p *PGRepo) Get(ctx context.Context, id string) (Rental, error) {
	r, err := scanRental(p.DB.QueryRow(ctx, selectRental+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Rental{}, ErrNotFound
	}
	if err != nil {
		return Rental{}, fmt.Errorf("get rental %s: %w", id, err)
	}
	return r, nil
}

func (p *PGRepo) List(ctx context.Context, f ListFilter) ([]Rental, error) {
	q := selectRental + ` WHERE ($1 = '' OR r.user_id = $1) AND ($2 = '' OR r.vehicle_id = $2)
		ORDER BY r.created_at DESC`
	rows, err := p.DB.Query(ctx, q, f.UserID, f.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}
	defer rows.Close()

	out := []Rental{}
	for rows.Next() {
		r, err := scanRental(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rental: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PGRepo) UpdateDetails(ctx context.Context, id string, start, end time.Time, total int64) (Rental, error) {
	ct, err := p.DB.Exec(ctx, `UPDATE rentals SET start_date = $2, end_date = $3, total_price = $4 WHERE id = $1`,
		id, start, end, total)
	if err != nil {
		return Rental{}, fmt.Errorf("update rental %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return Rental{}, ErrNotFound
	}
	return p.Get(ctx, id)
}

func (p *PGRepo) Transition(ctx context.Context, id string, step Step, total int64) (Rental, error) {
	tx, err := p.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Rental{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var vehicleID *string
	err = tx.QueryRow(ctx, `
		UPDATE rentals SET status = $3, total_price = $4
		WHERE id = $1 AND status = $2
		RETURNING vehicle_id`, id, string(step.From), string(step.To), total).Scan(&vehicleID)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rentals WHERE id = $1)`, id).Scan(&exists); err != nil {
			return Rental{}, err
		}
		if !exists {
			return Rental{}, ErrNotFound
		}
		return Rental{}, ErrStale
	}
	if err != nil {
		return Rental{}, fmt.Errorf("transition rental %s: %w", id, err)
	}
	if err := catalog.SetStatusTx(ctx, tx, deref(vehicleID), step.VehicleStatus); err != nil {
		return Rental{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Rental{}, err
	}
	return p.Get(ctx, id)
}

func (p *PGRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := p.DB.QueryRow(ctx, `SELECT COUNT(*) FROM rentals WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rentals: %w", err)
	}
	return n, nil
}
