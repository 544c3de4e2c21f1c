package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

// Repository is the sales table; vehicle writes share the sale's transaction.
type Repository interface {
	// Create inserts s as pending and moves its vehicle from tersedia to terjual.
	Create(ctx context.Context, s Sale) (Sale, error)
	Get(ctx context.Context, id string) (Sale, error)
	List(ctx context.Context, f ListFilter) ([]Sale, error)
	Transition(ctx context.Context, id string, step Step) (Sale, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type PGRepo struct{ DB *pgxpool.Pool }

const selectSale = `
	SELECT s.id, s.user_id, s.vehicle_id, s.sale_price, s.sale_date, s.status, s.notes, s.created_at,
	       v.name, v.image, p.full_name, p.phone
	FROM sales s
	LEFT JOIN vehicles v ON v.id = s.vehicle_id
	LEFT JOIN profiles p ON p.id = s.user_id`

func scanSale(row pgx.Row) (Sale, error) {
	var (
		s               Sale
		vehicleID       *string
		status          string
		vName, vImage   *string
		fullName, phone *string
	)
	err := row.Scan(&s.ID, &s.UserID, &vehicleID, &s.SalePrice, &s.SaleDate, &status, &s.Notes, &s.CreatedAt,
		&vName, &vImage, &fullName, &phone)
	if err != nil {
		return Sale{}, err
	}
	s.Status = Status(status)
	if vehicleID != nil {
		s.VehicleID = *vehicleID
	}
	if vName != nil {
		s.Vehicle = &VehicleSummary{Name: *vName, Image: str(vImage)}
	}
	if fullName != nil || phone != nil {
		s.Profile = &ProfileSummary{FullName: str(fullName), Phone: str(phone)}
	}
	return s, nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (p *PGRepo) Create(ctx context.Context, s Sale) (Sale, error) {
	tx, err := p.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Sale{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := catalog.ReserveTx(ctx, tx, s.VehicleID, catalog.StatusSold); err != nil {
		return Sale{}, err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO sales (id, user_id, vehicle_id, sale_price, sale_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)`,
		s.ID, s.UserID, s.VehicleID, s.SalePrice, s.SaleDate, s.Notes); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return Sale{}, validation.Errors{}.Add("user_id", "unknown user")
		}
		return Sale{}, fmt.Errorf("insert sale: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Sale{}, err
	}
	return p.Get(ctx, s.ID)
}

func (p *PGRepo) Get(ctx context.Context, id string) (Sale, error) {
	s, err := scanSale(p.DB.QueryRow(ctx, selectSale+` WHERE s.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, ErrNotFound
	}
	if err != nil {
		return Sale{}, fmt.Errorf("get sale %s: %w", id, err)
	}
	return s, nil
}

func (p *PGRepo) List(ctx context.Context, f ListFilter) ([]Sale, error) {
	rows, err := p.DB.Query(ctx, selectSale+`
		WHERE ($1 = '' OR s.user_id = $1) AND ($2 = '' OR s.vehicle_id = $2)
		ORDER BY s.created_at DESC`, f.UserID, f.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	out := []Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *PGRepo) Transition(ctx context.Context, id string, step Step) (Sale, error) {
	tx, err := p.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Sale{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var vehicleID *string
	err = tx.QueryRow(ctx, `
		UPDATE sales SET status = $3 WHERE id = $1 AND status = $2
		RETURNING vehicle_id`, id, string(step.From), string(step.To)).Scan(&vehicleID)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)`, id).Scan(&exists); err != nil {
			return Sale{}, err
		}
		if !exists {
			return Sale{}, ErrNotFound
		}
		return Sale{}, ErrStale
	}
	if err != nil {
		return Sale{}, fmt.Errorf("transition sale %s: %w", id, err)
	}
	if err := catalog.SetStatusTx(ctx, tx, str(vehicleID), step.VehicleStatus); err != nil {
		return Sale{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Sale{}, err
	}
	return p.Get(ctx, id)
}

func (p *PGRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := p.DB.QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}
