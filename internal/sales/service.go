package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/events"
	"github.com/ariefcatur/go-vehicle-market/internal/pricing"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

type Vehicles interface {
	GetByID(ctx context.Context, id string) (catalog.Vehicle, error)
	Invalidate(ctx context.Context)
}

type Service struct {
	Repo     Repository
	Vehicles Vehicles
	Events   events.Emitter
	Log      *zap.Logger
	Now      func() time.Time
}

func NewService(repo Repository, vehicles Vehicles, em events.Emitter, log *zap.Logger) *Service {
	if em == nil {
		em = events.Nop{}
	}
	return &Service{Repo: repo, Vehicles: vehicles, Events: em, Log: log, Now: time.Now}
}

type CreateInput struct {
	UserID    string
	VehicleID string
	// SalePrice defaults to the vehicle's listed price.
	SalePrice *int64
	// SaleDate defaults to today.
	SaleDate *time.Time
	Notes    string
}

// Create records a pending sale and marks its vehicle terjual.
func (s *Service) Create(ctx context.Context, in CreateInput) (Sale, error) {
	errs := validation.Errors{}
	if in.UserID == "" {
		errs.Add("user_id", "is required")
	}
	if in.VehicleID == "" {
		errs.Add("vehicle_id", "is required")
	}
	if in.SalePrice != nil && *in.SalePrice < 0 {
		errs.Add("sale_price", "must be at least 0")
	}
	if err := errs.Err(); err != nil {
		return Sale{}, err
	}

	v, err := s.Vehicles.GetByID(ctx, in.VehicleID)
	if err != nil {
		return Sale{}, err
	}
	if v.Status != catalog.StatusAvailable {
		return Sale{}, fmt.Errorf("%w: %s is %s", catalog.ErrUnavailable, v.Name, v.Status)
	}

	sale := Sale{
		UserID:    in.UserID,
		VehicleID: in.VehicleID,
		SalePrice: v.PriceNumeric,
		SaleDate:  pricing.Today(s.Now()),
		Status:    StatusPending,
	}
	if in.SalePrice != nil {
		sale.SalePrice = *in.SalePrice
	}
	if in.SaleDate != nil {
		sale.SaleDate = *in.SaleDate
	}
	if n := strings.TrimSpace(in.Notes); n != "" {
		sale.Notes = &n
	}

	out, err := s.Repo.Create(ctx, sale)
	if err != nil {
		return Sale{}, fmt.Errorf("create sale: %w", err)
	}
	s.Vehicles.Invalidate(ctx)
	s.emit(ctx, events.EventSaleCreated, out, "", catalog.StatusSold)
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Sale, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]Sale, error) {
	return s.Repo.List(ctx, ListFilter{})
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Sale, error) {
	return s.Repo.List(ctx, ListFilter{UserID: userID})
}

func (s *Service) ListByVehicle(ctx context.Context, vehicleID string) ([]Sale, error) {
	return s.Repo.List(ctx, ListFilter{VehicleID: vehicleID})
}

func (s *Service) CountByUser(ctx context.Context, userID string) (int, error) {
	return s.Repo.CountByUser(ctx, userID)
}

// Transition completes or cancels a pending sale.
func (s *Service) Transition(ctx context.Context, id string, to Status) (Sale, error) {
	cur, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	step, err := Next(cur.Status, to)
	if err != nil {
		return Sale{}, err
	}
	out, err := s.Repo.Transition(ctx, id, step)
	if err != nil {
		return Sale{}, fmt.Errorf("sale %s %s -> %s: %w", id, step.From, step.To, err)
	}
	s.Vehicles.Invalidate(ctx)
	s.emit(ctx, events.EventSaleStatusChanged, out, step.From, step.VehicleStatus)
	return out, nil
}

func (s *Service) emit(ctx context.Context, typ string, sale Sale, from Status, vs catalog.Status) {
	s.Events.Emit(ctx, typ, events.TransactionPayload{
		Kind:          events.KindSale,
		TransactionID: sale.ID,
		VehicleID:     sale.VehicleID,
		UserID:        sale.UserID,
		From:          string(from),
		To:            string(sale.Status),
		VehicleStatus: string(vs),
		TotalPrice:    sale.SalePrice,
	})
}
