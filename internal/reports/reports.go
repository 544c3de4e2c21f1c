package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/pricing"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
)

const (
	KindSale   = "sale"
	KindRental = "rental"

	unknown    = "Unknown"
	noneMarker = "-"
)

type Transaction struct {
	ID       string    `json:"id"`
	Kind     string    `json:"type"`
	Date     time.Time `json:"date"`
	Customer string    `json:"customer"`
	Item     string    `json:"item"`
	Image    string    `json:"image,omitempty"`
	Total    int64     `json:"total"`
	Status   string    `json:"status"`
}

type Summary struct {
	Revenue    int64  `json:"total_revenue"`
	Display    string `json:"total_revenue_display"`
	Count      int    `json:"total_transactions"`
	BestSeller string `json:"best_seller"`
}

type Report struct {
	Transactions []Transaction `json:"transactions"`
	Completed    []Transaction `json:"completed"`
	Summary      Summary       `json:"summary"`
}

// Range bounds transaction dates inclusively; zero times are open.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) contains(t time.Time) bool {
	d := t.Format(pricing.DateLayout)
	if !r.Start.IsZero() && d < r.Start.Format(pricing.DateLayout) {
		return false
	}
	if !r.End.IsZero() && d > r.End.Format(pricing.DateLayout) {
		return false
	}
	return true
}

type RentalLister interface {
	ListAll(ctx context.Context) ([]rentals.Rental, error)
}

type SaleLister interface {
	ListAll(ctx context.Context) ([]sales.Sale, error)
}

type VehicleLister interface {
	GetAll(ctx context.Context) ([]catalog.Vehicle, error)
}

type Service struct {
	Rentals  RentalLister
	Sales    SaleLister
	Vehicles VehicleLister
}

func NewService(r RentalLister, s SaleLister, v VehicleLister) *Service {
	return &Service{Rentals: r, Sales: s, Vehicles: v}
}

func (s *Service) fetch(ctx context.Context) ([]sales.Sale, []rentals.Rental, error) {
	var (
		ss []sales.Sale
		rs []rentals.Rental
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ss, err = s.Sales.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		rs, err = s.Rentals.ListAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load transactions: %w", err)
	}
	return ss, rs, nil
}

// Transactions merges sales and rentals, newest first. A sale is dated by its
// sale date and a rental by its start date.
func Transactions(ss []sales.Sale, rs []rentals.Rental) []Transaction {
	out := make([]Transaction, 0, len(ss)+len(rs))
	for _, sl := range ss {
		t := Transaction{ID: sl.ID, Kind: KindSale, Date: sl.SaleDate, Customer: unknown, Item: unknown,
			Total: sl.SalePrice, Status: string(sl.Status)}
		if sl.Profile != nil && sl.Profile.FullName != "" {
			t.Customer = sl.Profile.FullName
		}
		if sl.Vehicle != nil {
			t.Item, t.Image = nonEmpty(sl.Vehicle.Name), sl.Vehicle.Image
		}
		out = append(out, t)
	}
	for _, r := range rs {
		t := Transaction{ID: r.ID, Kind: KindRental, Date: r.StartDate, Customer: unknown, Item: unknown,
			Total: r.TotalPrice, Status: string(r.Status)}
		if r.Profile != nil && r.Profile.FullName != "" {
			t.Customer = r.Profile.FullName
		}
		if r.Vehicle != nil {
			t.Item, t.Image = nonEmpty(r.Vehicle.Name), r.Vehicle.Image
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func nonEmpty(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

// Summarize totals completed transactions. The best seller is the item with
// the most completed transactions; ties keep the first one seen.
func Summarize(txs []Transaction) ([]Transaction, Summary) {
	completed := []Transaction{}
	counts := map[string]int{}
	var order []string
	sum := Summary{BestSeller: noneMarker}
	for _, t := range txs {
		if t.Status != "completed" {
			continue
		}
		completed = append(completed, t)
		sum.Revenue += t.Total
		if counts[t.Item] == 0 {
			order = append(order, t.Item)
		}
		counts[t.Item]++
	}
	best := 0
	for _, item := range order {
		if counts[item] > best {
			best, sum.BestSeller = counts[item], item
		}
	}
	sum.Count = len(completed)
	sum.Display = pricing.FormatCurrency(sum.Revenue)
	return completed, sum
}

// Build loads every transaction and reports on those inside rg.
func (s *Service) Build(ctx context.Context, rg Range) (Report, error) {
	ss, rs, err := s.fetch(ctx)
	if err != nil {
		return Report{}, err
	}
	all := Transactions(ss, rs)
	in := make([]Transaction, 0, len(all))
	for _, t := range all {
		if rg.contains(t.Date) {
			in = append(in, t)
		}
	}
	completed, sum := Summarize(in)
	return Report{Transactions: in, Completed: completed, Summary: sum}, nil
}

type Dashboard struct {
	Vehicles       int                    `json:"total_vehicles"`
	Cars           int                    `json:"cars"`
	Motorcycles    int                    `json:"motorcycles"`
	Rentable       int                    `json:"rentable"`
	ByStatus       map[catalog.Status]int `json:"by_status"`
	PendingRentals int                    `json:"pending_rentals"`
	ActiveRentals  int                    `json:"active_rentals"`
	PendingSales   int                    `json:"pending_sales"`
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var vs []catalog.Vehicle
	var ss []sales.Sale
	var rs []rentals.Rental
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		vs, err = s.Vehicles.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		ss, rs, err = s.fetch(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{Vehicles: len(vs), ByStatus: map[catalog.Status]int{
		catalog.StatusAvailable: 0, catalog.StatusRented: 0, catalog.StatusSold: 0,
	}}
	for _, v := range vs {
		switch v.Type {
		case catalog.Car:
			d.Cars++
		case catalog.Motorcycle:
			d.Motorcycles++
		}
		if v.Rentable() {
			d.Rentable++
		}
		d.ByStatus[v.Status]++
	}
	for _, r := range rs {
		switch r.Status {
		case rentals.StatusPending:
			d.PendingRentals++
		case rentals.StatusActive:
			d.ActiveRentals++
		}
	}
	for _, sl := range ss {
		if sl.Status == sales.StatusPending {
			d.PendingSales++
		}
	}
	return d, nil
}
