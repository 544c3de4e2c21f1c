package customers

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-vehicle-market/internal/accounts"
)

// Counter counts a customer's transactions of one kind.
type Counter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

type Customer struct {
	accounts.Profile
	RentalCount int `json:"rental_count"`
	SaleCount   int `json:"sale_count"`
}

type Service struct {
	Accounts *accounts.Service
	Rentals  Counter
	Sales    Counter
	Log      *zap.Logger
}

func NewService(acc *accounts.Service, rentals, sales Counter, log *zap.Logger) *Service {
	return &Service{Accounts: acc, Rentals: rentals, Sales: sales, Log: log}
}

// List returns every profile, most recently updated first, with its counts.
func (s *Service) List(ctx context.Context) ([]Customer, error) {
	profiles, err := s.Accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Customer, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, p := range profiles {
		i, p := i, p
		g.Go(func() error {
			out[i] = s.withCounts(gctx, p)
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	p, err := s.Accounts.Get(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	return s.withCounts(ctx, p), nil
}

// Create opens a member account on behalf of a customer.
func (s *Service) Create(ctx context.Context, callerID string, in accounts.CreateMemberInput) (Customer, error) {
	p, err := s.Accounts.CreateMember(ctx, callerID, in)
	if err != nil {
		return Customer{}, err
	}
	return Customer{Profile: p}, nil
}

// withCounts fills both counts concurrently. A failed count is logged and
// left at zero.
func (s *Service) withCounts(ctx context.Context, p accounts.Profile) Customer {
	c := Customer{Profile: p}
	var g errgroup.Group
	g.Go(func() error {
		n, err := s.Rentals.CountByUser(ctx, p.ID)
		if err != nil {
			s.Log.Warn("count rentals", zap.String("user_id", p.ID), zap.Error(err))
			return nil
		}
		c.RentalCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.Sales.CountByUser(ctx, p.ID)
		if err != nil {
			s.Log.Warn("count sales", zap.String("user_id", p.ID), zap.Error(err))
			return nil
		}
		c.SaleCount = n
		return nil
	})
	_ = g.Wait()
	return c
}
