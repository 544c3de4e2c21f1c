package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/pricing"
	"github.com/ariefcatur/go-vehicle-market/internal/redisx"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

// ErrDuplicate rejects a request whose idempotency key was already used.
var ErrDuplicate = errors.New("duplicate booking request")

// Guard claims idempotency keys.
type Guard interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type Vehicles interface {
	GetByID(ctx context.Context, id string) (catalog.Vehicle, error)
}

// Quote is the estimate shown before a rental is requested.
type Quote struct {
	Days      int    `json:"days"`
	DailyRate int64  `json:"daily_rate"`
	Total     int64  `json:"total"`
	Display   string `json:"display"`
}

// QuoteFor prices a rental of v. A vehicle without a daily rate quotes zero.
func QuoteFor(v catalog.Vehicle, start, end time.Time) Quote {
	var rate int64
	if v.RentalPrice != nil {
		rate = *v.RentalPrice
	}
	q := Quote{DailyRate: rate}
	if !start.IsZero() && !end.IsZero() {
		q.Days = pricing.DaysBetween(start, end)
		q.Total = int64(q.Days) * rate
	}
	q.Display = pricing.FormatCurrency(q.Total)
	return q
}

type Service struct {
	Vehicles Vehicles
	Rentals  *rentals.Service
	Sales    *sales.Service
	Guard    Guard
	Log      *zap.Logger
}

func NewService(v Vehicles, r *rentals.Service, s *sales.Service, g Guard, log *zap.Logger) *Service {
	return &Service{Vehicles: v, Rentals: r, Sales: s, Guard: g, Log: log}
}

func (s *Service) Quote(ctx context.Context, vehicleID string, start, end time.Time) (Quote, error) {
	v, err := s.Vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return Quote{}, err
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		return Quote{}, validation.Errors{}.Add("end", "Tanggal selesai harus setelah tanggal mulai.")
	}
	return QuoteFor(v, start, end), nil
}

type RentalRequest struct {
	VehicleID string
	Start     time.Time
	End       time.Time
	// IdempotencyKey is optional; repeated keys are rejected for a day.
	IdempotencyKey string
}

// RequestRental books a pending rental for a signed-in member.
func (s *Service) RequestRental(ctx context.Context, userID string, req RentalRequest) (rentals.Rental, error) {
	if req.Start.IsZero() || req.End.IsZero() {
		return rentals.Rental{}, validation.Errors{}.Add("dates", "Mohon pilih tanggal sewa.")
	}
	if !req.End.After(req.Start) {
		return rentals.Rental{}, validation.Errors{}.Add("end_date", "Tanggal selesai harus setelah tanggal mulai.")
	}
	release, err := s.claim(ctx, userID, req.IdempotencyKey)
	if err != nil {
		return rentals.Rental{}, err
	}
	r, err := s.Rentals.Create(ctx, rentals.CreateInput{
		UserID:    userID,
		VehicleID: req.VehicleID,
		StartDate: req.Start,
		EndDate:   req.End,
	})
	if err != nil {
		release()
		return rentals.Rental{}, err
	}
	return r, nil
}

type PurchaseRequest struct {
	VehicleID      string
	Contact        PurchaseContact
	IdempotencyKey string
}

// PurchaseNotes is the note attached to an in-app purchase request.
func PurchaseNotes(c PurchaseContact) string {
	return fmt.Sprintf("Nama: %s\nNo HP: %s\nPesan: %s", c.Name, c.Phone, c.Message)
}

// RequestPurchase records a pending sale at the listed price.
func (s *Service) RequestPurchase(ctx context.Context, userID string, req PurchaseRequest) (sales.Sale, error) {
	release, err := s.claim(ctx, userID, req.IdempotencyKey)
	if err != nil {
		return sales.Sale{}, err
	}
	sale, err := s.Sales.Create(ctx, sales.CreateInput{
		UserID:    userID,
		VehicleID: req.VehicleID,
		Notes:     PurchaseNotes(req.Contact),
	})
	if err != nil {
		release()
		return sales.Sale{}, err
	}
	return sale, nil
}

func (s *Service) RentalLink(ctx context.Context, vehicleID string, c RentalContact, start, end time.Time) (string, error) {
	v, err := s.Vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	return RentalLink(v, c, start, end)
}

func (s *Service) PurchaseLink(ctx context.Context, vehicleID string, c PurchaseContact) (string, error) {
	v, err := s.Vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	return PurchaseLink(v, c)
}

// claim takes the idempotency key. The returned func gives it back after a
// failed attempt so the user can retry.
func (s *Service) claim(ctx context.Context, userID, key string) (func(), error) {
	if userID == "" {
		return nil, validation.Errors{}.Add("user_id", "Anda harus login terlebih dahulu.")
	}
	if key == "" || s.Guard == nil {
		return func() {}, nil
	}
	full := fmt.Sprintf(redisx.KeyIdemBooking, userID, key)
	ok, err := s.Guard.Claim(ctx, full, redisx.TTLIdempotency)
	if err != nil {
		s.Log.Warn("idempotency claim failed, continuing", zap.String("key", full), zap.Error(err))
		return func() {}, nil
	}
	if !ok {
		return nil, ErrDuplicate
	}
	return func() {
		if err := s.Guard.Release(context.WithoutCancel(ctx), full); err != nil {
			s.Log.Warn("release idempotency key", zap.String("key", full), zap.Error(err))
		}
	}, nil
}
