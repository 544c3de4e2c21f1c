package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
)

type Vehicles interface {
	GetAll(ctx context.Context) ([]catalog.Vehicle, error)
	GetByID(ctx context.Context, id string) (catalog.Vehicle, error)
	UpdateStatus(ctx context.Context, id string, s catalog.Status) error
}

type Rentals interface {
	ListAll(ctx context.Context) ([]rentals.Rental, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]rentals.Rental, error)
}

type Sales interface {
	ListAll(ctx context.Context) ([]sales.Sale, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]sales.Sale, error)
}

// Mismatch is a vehicle whose stored status disagrees with its transactions.
type Mismatch struct {
	VehicleID string         `json:"vehicle_id"`
	Name      string         `json:"name"`
	Current   catalog.Status `json:"current"`
	Expected  catalog.Status `json:"expected"`
	Reason    string         `json:"reason"`
}

type Reconciler struct {
	Vehicles Vehicles
	Rentals  Rentals
	Sales    Sales
	Log      *zap.Logger
	// StrictManual also resets vehicles without an open or held transaction
	// to tersedia. Otherwise a status an admin set by hand on such a vehicle
	// is kept, whatever its closed transactions say.
	StrictManual bool
}

func New(v Vehicles, r Rentals, s Sales, log *zap.Logger) *Reconciler {
	return &Reconciler{Vehicles: v, Rentals: r, Sales: s, Log: log}
}

// history counts the transactions that still hold one vehicle.
type history struct {
	rentals int // pending or active
	sales   int // pending or completed
}

// expected derives the status a vehicle should hold. A held sale wins over an
// open rental. Without either, only StrictManual has an opinion: closed
// transactions never override an admin's status.
func (r *Reconciler) expected(h history) (catalog.Status, string, bool) {
	switch {
	case h.sales > 0:
		return catalog.StatusSold, "open or completed sale", true
	case h.rentals > 0:
		return catalog.StatusRented, "pending or active rental", true
	case r.StrictManual:
		return catalog.StatusAvailable, "no open transaction", true
	}
	return "", "", false
}

func (r *Reconciler) check(v catalog.Vehicle, h history) (Mismatch, bool) {
	want, why, ok := r.expected(h)
	if !ok || want == v.Status {
		return Mismatch{}, false
	}
	return Mismatch{VehicleID: v.ID, Name: v.Name, Current: v.Status, Expected: want, Reason: why}, true
}

// Scan compares every vehicle with its transactions and returns the mismatches.
func (r *Reconciler) Scan(ctx context.Context) ([]Mismatch, error) {
	vs, err := r.Vehicles.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	rs, err := r.Rentals.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ss, err := r.Sales.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	hist := map[string]*history{}
	at := func(id string) *history {
		h, ok := hist[id]
		if !ok {
			h = &history{}
			hist[id] = h
		}
		return h
	}
	for _, rt := range rs {
		if rt.Status.Open() {
			at(rt.VehicleID).rentals++
		}
	}
	for _, sl := range ss {
		if sl.Status.Holds() {
			at(sl.VehicleID).sales++
		}
	}

	out := []Mismatch{}
	for _, v := range vs {
		var h history
		if p, ok := hist[v.ID]; ok {
			h = *p
		}
		if m, ok := r.check(v, h); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// Fix writes the expected status of every mismatch. It stops at the first
// failure and reports how many were fixed.
func (r *Reconciler) Fix(ctx context.Context, ms []Mismatch) (int, error) {
	for i, m := range ms {
		if err := r.Vehicles.UpdateStatus(ctx, m.VehicleID, m.Expected); err != nil {
			return i, fmt.Errorf("fix vehicle %s: %w", m.VehicleID, err)
		}
		r.Log.Warn("vehicle status repaired",
			zap.String("vehicle_id", m.VehicleID),
			zap.String("from", string(m.Current)),
			zap.String("to", string(m.Expected)),
			zap.String("reason", m.Reason))
	}
	return len(ms), nil
}

// Run scans and, unless dryRun, fixes what it found.
func (r *Reconciler) Run(ctx context.Context, dryRun bool) ([]Mismatch, error) {
	ms, err := r.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if dryRun || len(ms) == 0 {
		return ms, nil
	}
	if _, err := r.Fix(ctx, ms); err != nil {
		return ms, err
	}
	return ms, nil
}

// Vehicle reconciles a single vehicle against its own transactions.
func (r *Reconciler) Vehicle(ctx context.Context, vehicleID string) (*Mismatch, error) {
	v, err := r.Vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	rs, err := r.Rentals.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	ss, err := r.Sales.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	var h history
	for _, rt := range rs {
		if rt.Status.Open() {
			h.rentals++
		}
	}
	for _, sl := range ss {
		if sl.Status.Holds() {
			h.sales++
		}
	}
	m, ok := r.check(v, h)
	if !ok {
		return nil, nil
	}
	if _, err := r.Fix(ctx, []Mismatch{m}); err != nil {
		return nil, err
	}
	return &m, nil
}
