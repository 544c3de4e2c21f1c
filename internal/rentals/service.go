package rentals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/events"
	"github.com/ariefcatur/go-vehicle-market/internal/pricing"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

// Vehicles is the catalog as seen by the rental lifecycle.
type Vehicles interface {
	GetByID(ctx context.Context, id string) (catalog.Vehicle, error)
	Invalidate(ctx context.Context)
}

type Service struct {
	Repo     Repository
	Vehicles Vehicles
	Events   events.Emitter
	Log      *zap.Logger
}

func NewService(repo Repository, vehicles Vehicles, em events.Emitter, log *zap.Logger) *Service {
	if em == nil {
		em = events.Nop{}
	}
	return &Service{Repo: repo, Vehicles: vehicles, Events: em, Log: log}
}

type CreateInput struct {
	UserID    string
	VehicleID string
	StartDate time.Time
	EndDate   time.Time
	// TotalPrice overrides the derived total when set.
	TotalPrice *int64
}

func (in CreateInput) validate() error {
	errs := validation.Errors{}
	if in.UserID == "" {
		errs.Add("user_id", "is required")
	}
	if in.VehicleID == "" {
		errs.Add("vehicle_id", "is required")
	}
	if in.StartDate.IsZero() {
		errs.Add("start_date", "is required")
	}
	if in.EndDate.IsZero() {
		errs.Add("end_date", "is required")
	}
	if !in.StartDate.IsZero() && !in.EndDate.IsZero() && !in.EndDate.After(in.StartDate) {
		errs.Add("end_date", "must be after start_date")
	}
	if in.TotalPrice != nil && *in.TotalPrice < 0 {
		errs.Add("total_price", "must be at least 0")
	}
	return errs.Err()
}

// Create records a pending rental and reserves its vehicle. The total is
// days × the vehicle's daily rate unless given explicitly.
func (s *Service) Create(ctx context.Context, in CreateInput) (Rental, error) {
	if err := in.validate(); err != nil {
		return Rental{}, err
	}
	v, err := s.Vehicles.GetByID(ctx, in.VehicleID)
	if err != nil {
		return Rental{}, err
	}
	if v.Status != catalog.StatusAvailable {
		return Rental{}, fmt.Errorf("%w: %s is %s", catalog.ErrUnavailable, v.Name, v.Status)
	}

	var total int64
	switch {
	case in.TotalPrice != nil:
		total = *in.TotalPrice
	case v.Rentable():
		total = pricing.RentalTotal(*v.RentalPrice, in.StartDate, in.EndDate)
	default:
		return Rental{}, validation.Errors{}.Add("vehicle_id", "vehicle has no rental price")
	}

	r, err := s.Repo.Create(ctx, Rental{
		UserID:     in.UserID,
		VehicleID:  in.VehicleID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		TotalPrice: total,
		Status:     StatusPending,
	})
	if err != nil {
		return Rental{}, fmt.Errorf("create rental: %w", err)
	}
	s.Vehicles.Invalidate(ctx)
	s.emit(ctx, events.EventRentalCreated, r, "", catalog.StatusRented)
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (Rental, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]Rental, error) {
	return s.Repo.List(ctx, ListFilter{})
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Rental, error) {
	return s.Repo.List(ctx, ListFilter{UserID: userID})
}

func (s *Service) ListByVehicle(ctx context.Context, vehicleID string) ([]Rental, error) {
	return s.Repo.List(ctx, ListFilter{VehicleID: vehicleID})
}

func (s *Service) CountByUser(ctx context.Context, userID string) (int, error) {
	return s.Repo.CountByUser(ctx, userID)
}

// Transition moves a rental to status to. Activating a rental whose total is
// zero first re-derives it from the dates and the vehicle's daily rate; if
// that is impossible nothing is written.
func (s *Service) Transition(ctx context.Context, id string, to Status) (Rental, error) {
	cur, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Rental{}, err
	}
	step, err := Next(cur.Status, to)
	if err != nil {
		return Rental{}, err
	}

	total := cur.TotalPrice
	if step.ReconcilePrice && total <= 0 {
		if total, err = s.derivePrice(ctx, cur); err != nil {
			return Rental{}, err
		}
		s.Log.Info("rental price reconciled on activation",
			zap.String("rental_id", id), zap.Int64("total_price", total))
	}

	r, err := s.Repo.Transition(ctx, id, step, total)
	if err != nil {
		return Rental{}, fmt.Errorf("rental %s %s -> %s: %w", id, step.From, step.To, err)
	}
	if step.VehicleStatus != "" {
		s.Vehicles.Invalidate(ctx)
	}
	s.emit(ctx, events.EventRentalStatusChanged, r, step.From, step.VehicleStatus)
	return r, nil
}

func (s *Service) derivePrice(ctx context.Context, r Rental) (int64, error) {
	if r.VehicleID == "" || r.StartDate.IsZero() || r.EndDate.IsZero() {
		return 0, fmt.Errorf("%w: rental %s has no vehicle or dates", ErrPriceUnresolved, r.ID)
	}
	v, err := s.Vehicles.GetByID(ctx, r.VehicleID)
	if errors.Is(err, catalog.ErrNotFound) {
		return 0, fmt.Errorf("%w: vehicle %s no longer exists", ErrPriceUnresolved, r.VehicleID)
	}
	if err != nil {
		return 0, err
	}
	if !v.Rentable() {
		return 0, fmt.Errorf("%w: vehicle %s has no rental price", ErrPriceUnresolved, v.Name)
	}
	return pricing.RentalTotal(*v.RentalPrice, r.StartDate, r.EndDate), nil
}

// Edit is an admin correction of a rental's dates or total. Status is
// changed only through Transition.
type Edit struct {
	StartDate  *time.Time
	EndDate    *time.Time
	TotalPrice *int64
}

// Update applies an edit. Changing only the dates re-derives the total from
// the vehicle's daily rate; an explicit total is stored as given.
func (s *Service) Update(ctx context.Context, id string, e Edit) (Rental, error) {
	cur, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Rental{}, err
	}
	start, end, total := cur.StartDate, cur.EndDate, cur.TotalPrice
	if e.StartDate != nil {
		start = *e.StartDate
	}
	if e.EndDate != nil {
		end = *e.EndDate
	}
	errs := validation.Errors{}
	if !end.After(start) {
		errs.Add("end_date", "must be after start_date")
	}
	if e.TotalPrice != nil && *e.TotalPrice < 0 {
		errs.Add("total_price", "must be at least 0")
	}
	if err := errs.Err(); err != nil {
		return Rental{}, err
	}

	datesChanged := !start.Equal(cur.StartDate) || !end.Equal(cur.EndDate)
	switch {
	case e.TotalPrice != nil:
		total = *e.TotalPrice
	case datesChanged:
		if derived, err := s.derivePrice(ctx, Rental{ID: id, VehicleID: cur.VehicleID, StartDate: start, EndDate: end}); err == nil {
			total = derived
		} else if !errors.Is(err, ErrPriceUnresolved) {
			return Rental{}, err
		}
	}
	return s.Repo.UpdateDetails(ctx, id, start, end, total)
}

func (s *Service) emit(ctx context.Context, typ string, r Rental, from Status, vs catalog.Status) {
	s.Events.Emit(ctx, typ, events.TransactionPayload{
		Kind:          events.KindRental,
		TransactionID: r.ID,
		VehicleID:     r.VehicleID,
		UserID:        r.UserID,
		From:          string(from),
		To:            string(r.Status),
		VehicleStatus: string(vs),
		TotalPrice:    r.TotalPrice,
	})
}
