package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("vehicle not found")
	// ErrUnavailable rejects a booking or sale of a vehicle that is not tersedia.
	ErrUnavailable = errors.New("vehicle is not available")
)

// ListFilter narrows List; the zero value lists every vehicle.
type ListFilter struct {
	Status Status
}

// Repository is the vehicle table. Lists are ordered newest first.
type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Row, error)
	Get(ctx context.Context, id string) (Row, error)
	Insert(ctx context.Context, r Row) (Row, error)
	Update(ctx context.Context, id string, p Patch) (Row, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, s Status) error
}

const vehicleColumns = `id, name, image, price, price_numeric, rental_price, year, fuel, mileage,
	transmission, type, badge, gallery, description, specs, seller_name, seller_phone,
	seller_location, status, created_at, color, capacity, engine, horsepower, torque,
	license_plate, tax_expiry::text`

// Scan reads one vehicleColumns row. Exported for the other Postgres repos
// that join vehicles.
func Scan(row pgx.Row) (Row, error) {
	var r Row
	err := row.Scan(&r.ID, &r.Name, &r.Image, &r.Price, &r.PriceNumeric, &r.RentalPrice, &r.Year,
		&r.Fuel, &r.Mileage, &r.Transmission, &r.Type, &r.Badge, &r.Gallery, &r.Description,
		&r.Specs, &r.SellerName, &r.SellerPhone, &r.SellerLocation, &r.Status, &r.CreatedAt,
		&r.Color, &r.Capacity, &r.Engine, &r.Horsepower, &r.Torque, &r.LicensePlate, &r.TaxExpiry)
	return r, err
}

type PGRepo struct{ DB *pgxpool.Pool }

func (p *PGRepo) List(ctx context.Context, f ListFilter) ([]Row, error) {
	q := `SELECT ` + vehicleColumns + ` FROM vehicles`
	var args []any
	if f.Status != "" {
		q += ` WHERE status = $1`
		args = append(args, string(f.Status))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := p.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PGRepo) Get(ctx context.Context, id string) (Row, error) {
	r, err := Scan(p.DB.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrNotFound
	}
	if err != nil {
		return Row{}, fmt.Errorf("get vehicle %s: %w", id, err)
	}
	return r, nil
}

func (p *PGRepo) Insert(ctx context.Context, r Row) (Row, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	out, err := Scan(p.DB.QueryRow(ctx, `
		INSERT INTO vehicles (id, name, image, price, price_numeric, rental_price, year, fuel, mileage,
			transmission, type, badge, gallery, description, specs, seller_name, seller_phone,
			seller_location, status, color, capacity, engine, horsepower, torque, license_plate, tax_expiry)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26::text::date)
		RETURNING `+vehicleColumns,
		r.ID, r.Name, r.Image, r.Price, r.PriceNumeric, r.RentalPrice, r.Year, r.Fuel, r.Mileage,
		r.Transmission, r.Type, r.Badge, r.Gallery, r.Description, r.Specs, r.SellerName, r.SellerPhone,
		r.SellerLocation, r.Status, r.Color, r.Capacity, r.Engine, r.Horsepower, r.Torque, r.LicensePlate, r.TaxExpiry))
	if err != nil {
		return Row{}, fmt.Errorf("insert vehicle: %w", err)
	}
	return out, nil
}

// Update locks the row, applies p and writes it back in one transaction.
func (p *PGRepo) Update(ctx context.Context, id string, patch Patch) (Row, error) {
	tx, err := p.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Row{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	r, err := Scan(tx.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrNotFound
	}
	if err != nil {
		return Row{}, fmt.Errorf("lock vehicle %s: %w", id, err)
	}
	patch.Apply(&r)

	out, err := Scan(tx.QueryRow(ctx, `
		UPDATE vehicles SET name=$2, image=$3, price=$4, price_numeric=$5, rental_price=$6, year=$7,
			fuel=$8, mileage=$9, transmission=$10, type=$11, badge=$12, gallery=$13, description=$14,
			specs=$15, seller_name=$16, seller_phone=$17, seller_location=$18, status=$19, color=$20,
			capacity=$21, engine=$22, horsepower=$23, torque=$24, license_plate=$25, tax_expiry=$26::text::date
		WHERE id = $1
		RETURNING `+vehicleColumns,
		r.ID, r.Name, r.Image, r.Price, r.PriceNumeric, r.RentalPrice, r.Year, r.Fuel, r.Mileage,
		r.Transmission, r.Type, r.Badge, r.Gallery, r.Description, r.Specs, r.SellerName, r.SellerPhone,
		r.SellerLocation, r.Status, r.Color, r.Capacity, r.Engine, r.Horsepower, r.Torque, r.LicensePlate, r.TaxExpiry))
	if err != nil {
		return Row{}, fmt.Errorf("update vehicle %s: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Row{}, err
	}
	return out, nil
}

func (p *PGRepo) Delete(ctx context.Context, id string) error {
	ct, err := p.DB.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PGRepo) SetStatus(ctx context.Context, id string, s Status) error {
	ct, err := p.DB.Exec(ctx, `UPDATE vehicles SET status = $2 WHERE id = $1`, id, string(s))
	if err != nil {
		return fmt.Errorf("set vehicle status %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReserveTx locks the vehicle inside tx and moves it from tersedia to to.
// Rentals and sales call it in the same transaction as their insert.
func ReserveTx(ctx context.Context, tx pgx.Tx, vehicleID string, to Status) error {
	var cur string
	err := tx.QueryRow(ctx, `SELECT status FROM vehicles WHERE id = $1 FOR UPDATE`, vehicleID).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock vehicle %s: %w", vehicleID, err)
	}
	if Status(cur) != StatusAvailable {
		return fmt.Errorf("%w: %s is %s", ErrUnavailable, vehicleID, cur)
	}
	if _, err := tx.Exec(ctx, `UPDATE vehicles SET status = $2 WHERE id = $1`, vehicleID, string(to)); err != nil {
		return fmt.Errorf("reserve vehicle %s: %w", vehicleID, err)
	}
	return nil
}

// SetStatusTx writes a vehicle status inside tx. A deleted vehicle is skipped.
func SetStatusTx(ctx context.Context, tx pgx.Tx, vehicleID string, s Status) error {
	if vehicleID == "" || s == "" {
		return nil
	}
	if _, err := tx.Exec(ctx, `UPDATE vehicles SET status = $2 WHERE id = $1`, vehicleID, string(s)); err != nil {
		return fmt.Errorf("set vehicle status %s: %w", vehicleID, err)
	}
	return nil
}
