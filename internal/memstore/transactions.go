package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
)

// Rentals implements rentals.Repository.
type Rentals struct{ s *Store }

func (s *Store) joinRental(r rentals.Rental) rentals.Rental {
	r.Vehicle, r.Profile = nil, nil
	if name, image, ok := s.vehicleSummary(r.VehicleID); ok {
		r.Vehicle = &rentals.VehicleSummary{Name: name, Image: image}
	}
	if fullName, phone, ok := s.profileSummary(r.UserID); ok {
		r.Profile = &rentals.ProfileSummary{FullName: fullName, Phone: phone}
	}
	return r
}

func (rr *Rentals) Create(_ context.Context, r rentals.Rental) (rentals.Rental, error) {
	s := rr.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reserve(r.VehicleID, catalog.StatusRented); err != nil {
		return rentals.Rental{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Status = rentals.StatusPending
	r.CreatedAt = s.Now().UTC()
	r.Vehicle, r.Profile = nil, nil
	s.rentals[r.ID] = &rentalRec{r: r, seq: s.next()}
	return s.joinRental(r), nil
}

func (rr *Rentals) Get(_ context.Context, id string) (rentals.Rental, error) {
	s := rr.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rentals[id]
	if !ok {
		return rentals.Rental{}, rentals.ErrNotFound
	}
	return s.joinRental(rec.r), nil
}

func (rr *Rentals) List(_ context.Context, f rentals.ListFilter) ([]rentals.Rental, error) {
	s := rr.s
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]*rentalRec, 0, len(s.rentals))
	for _, rec := range s.rentals {
		if f.UserID != "" && rec.r.UserID != f.UserID {
			continue
		}
		if f.VehicleID != "" && rec.r.VehicleID != f.VehicleID {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })
	out := make([]rentals.Rental, 0, len(recs))
	for _, rec := range recs {
		out = append(out, s.joinRental(rec.r))
	}
	return out, nil
}

func (rr *Rentals) UpdateDetails(_ context.Context, id string, start, end time.Time, total int64) (rentals.Rental, error) {
	s := rr.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rentals[id]
	if !ok {
		return rentals.Rental{}, rentals.ErrNotFound
	}
	rec.r.StartDate, rec.r.EndDate, rec.r.TotalPrice = start, end, total
	return s.joinRental(rec.r), nil
}

func (rr *Rentals) Transition(_ context.Context, id string, step rentals.Step, total int64) (rentals.Rental, error) {
	s := rr.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rentals[id]
	if !ok {
		return rentals.Rental{}, rentals.ErrNotFound
	}
	if rec.r.Status != step.From {
		return rentals.Rental{}, rentals.ErrStale
	}
	rec.r.Status, rec.r.TotalPrice = step.To, total
	s.setVehicleStatus(rec.r.VehicleID, step.VehicleStatus)
	return s.joinRental(rec.r), nil
}

func (rr *Rentals) CountByUser(_ context.Context, userID string) (int, error) {
	s := rr.s
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.rentals {
		if rec.r.UserID == userID {
			n++
		}
	}
	return n, nil
}

// Sales implements sales.Repository.
type Sales struct{ s *Store }

func (s *Store) joinSale(sl sales.Sale) sales.Sale {
	sl.Vehicle, sl.Profile = nil, nil
	if name, image, ok := s.vehicleSummary(sl.VehicleID); ok {
		sl.Vehicle = &sales.VehicleSummary{Name: name, Image: image}
	}
	if fullName, phone, ok := s.profileSummary(sl.UserID); ok {
		sl.Profile = &sales.ProfileSummary{FullName: fullName, Phone: phone}
	}
	return sl
}

func (ss *Sales) Create(_ context.Context, sl sales.Sale) (sales.Sale, error) {
	s := ss.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reserve(sl.VehicleID, catalog.StatusSold); err != nil {
		return sales.Sale{}, err
	}
	if sl.ID == "" {
		sl.ID = uuid.NewString()
	}
	sl.Status = sales.StatusPending
	sl.CreatedAt = s.Now().UTC()
	s.sales[sl.ID] = &saleRec{s: sl, seq: s.next()}
	return s.joinSale(sl), nil
}

func (ss *Sales) Get(_ context.Context, id string) (sales.Sale, error) {
	s := ss.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sales[id]
	if !ok {
		return sales.Sale{}, sales.ErrNotFound
	}
	return s.joinSale(rec.s), nil
}

func (ss *Sales) List(_ context.Context, f sales.ListFilter) ([]sales.Sale, error) {
	s := ss.s
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]*saleRec, 0, len(s.sales))
	for _, rec := range s.sales {
		if f.UserID != "" && rec.s.UserID != f.UserID {
			continue
		}
		if f.VehicleID != "" && rec.s.VehicleID != f.VehicleID {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })
	out := make([]sales.Sale, 0, len(recs))
	for _, rec := range recs {
		out = append(out, s.joinSale(rec.s))
	}
	return out, nil
}

func (ss *Sales) Transition(_ context.Context, id string, step sales.Step) (sales.Sale, error) {
	s := ss.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sales[id]
	if !ok {
		return sales.Sale{}, sales.ErrNotFound
	}
	if rec.s.Status != step.From {
		return sales.Sale{}, sales.ErrStale
	}
	rec.s.Status = step.To
	s.setVehicleStatus(rec.s.VehicleID, step.VehicleStatus)
	return s.joinSale(rec.s), nil
}

func (ss *Sales) CountByUser(_ context.Context, userID string) (int, error) {
	s := ss.s
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.sales {
		if rec.s.UserID == userID {
			n++
		}
	}
	return n, nil
}
