package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
)

// Vehicles implements catalog.Repository.
type Vehicles struct{ s *Store }

func cloneRow(r catalog.Row) catalog.Row {
	r.Gallery = slices.Clone(r.Gallery)
	r.Specs = slices.Clone(r.Specs)
	return r
}

func (v *Vehicles) List(_ context.Context, f catalog.ListFilter) ([]catalog.Row, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	recs := make([]*vehicleRec, 0, len(v.s.vehicles))
	for _, rec := range v.s.vehicles {
		if f.Status != "" && catalog.Status(rec.row.Status) != f.Status {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })
	out := make([]catalog.Row, 0, len(recs))
	for _, rec := range recs {
		out = append(out, cloneRow(rec.row))
	}
	return out, nil
}

func (v *Vehicles) Get(_ context.Context, id string) (catalog.Row, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	rec, ok := v.s.vehicles[id]
	if !ok {
		return catalog.Row{}, catalog.ErrNotFound
	}
	return cloneRow(rec.row), nil
}

func (v *Vehicles) Insert(_ context.Context, r catalog.Row) (catalog.Row, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, dup := v.s.vehicles[r.ID]; dup {
		return catalog.Row{}, fmt.Errorf("insert vehicle: duplicate id %s", r.ID)
	}
	if r.Status == "" {
		r.Status = string(catalog.StatusAvailable)
	}
	r.CreatedAt = v.s.Now().UTC()
	v.s.vehicles[r.ID] = &vehicleRec{row: cloneRow(r), seq: v.s.next()}
	return cloneRow(r), nil
}

func (v *Vehicles) Update(_ context.Context, id string, p catalog.Patch) (catalog.Row, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	rec, ok := v.s.vehicles[id]
	if !ok {
		return catalog.Row{}, catalog.ErrNotFound
	}
	r := cloneRow(rec.row)
	p.Apply(&r)
	rec.row = r
	return cloneRow(r), nil
}

// Delete removes the vehicle and detaches its transactions.
func (v *Vehicles) Delete(_ context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.vehicles[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(v.s.vehicles, id)
	for _, rec := range v.s.rentals {
		if rec.r.VehicleID == id {
			rec.r.VehicleID = ""
		}
	}
	for _, rec := range v.s.sales {
		if rec.s.VehicleID == id {
			rec.s.VehicleID = ""
		}
	}
	return nil
}

func (v *Vehicles) SetStatus(_ context.Context, id string, st catalog.Status) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	rec, ok := v.s.vehicles[id]
	if !ok {
		return catalog.ErrNotFound
	}
	rec.row.Status = string(st)
	return nil
}

// reserve is ReserveTx under the store lock.
func (s *Store) reserve(vehicleID string, to catalog.Status) error {
	rec, ok := s.vehicles[vehicleID]
	if !ok {
		return catalog.ErrNotFound
	}
	if catalog.Status(rec.row.Status) != catalog.StatusAvailable {
		return fmt.Errorf("%w: %s is %s", catalog.ErrUnavailable, vehicleID, rec.row.Status)
	}
	rec.row.Status = string(to)
	return nil
}

func (s *Store) setVehicleStatus(vehicleID string, st catalog.Status) {
	if vehicleID == "" || st == "" {
		return
	}
	if rec, ok := s.vehicles[vehicleID]; ok {
		rec.row.Status = string(st)
	}
}

func (s *Store) vehicleSummary(vehicleID string) (name, image string, ok bool) {
	rec, found := s.vehicles[vehicleID]
	if !found {
		return "", "", false
	}
	return rec.row.Name, rec.row.Image, true
}

func (s *Store) profileSummary(userID string) (fullName, phone string, ok bool) {
	rec, found := s.profiles[userID]
	if !found {
		return "", "", false
	}
	return rec.a.FullName, rec.a.Phone, true
}
