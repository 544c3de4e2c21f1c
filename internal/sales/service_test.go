package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/blob"
	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/events"
	"github.com/ariefcatur/go-vehicle-market/internal/memstore"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

func setup(t *testing.T) (*catalog.Service, *sales.Service, *events.Recorder) {
	t.Helper()
	st := memstore.New()
	cat := catalog.NewService(st.Vehicles(), blob.NewDiskStore(t.TempDir(), "http://localhost"), zap.NewNop())
	rec := &events.Recorder{}
	svc := sales.NewService(st.Sales(), cat, rec, zap.NewNop())
	svc.Now = func() time.Time { return time.Date(2025, 5, 17, 15, 4, 0, 0, time.UTC) }
	return cat, svc, rec
}

func addVehicle(t *testing.T, cat *catalog.Service) catalog.Vehicle {
	t.Helper()
	v, err := cat.Add(context.Background(), catalog.Vehicle{
		Name:         "Honda Beat",
		PriceNumeric: 18500000,
		Year:         2022,
		Transmission: catalog.CVT,
		Type:         catalog.Motorcycle,
		Seller:       catalog.Seller{Name: "Sari", Phone: "081300000000"},
	}, nil, nil)
	require.NoError(t, err)
	return v
}

func statusOf(t *testing.T, cat *catalog.Service, id string) catalog.Status {
	t.Helper()
	v, err := cat.GetByID(context.Background(), id)
	require.NoError(t, err)
	return v.Status
}

func TestCreate_DefaultsAndHold(t *testing.T) {
	cat, svc, rec := setup(t)
	ctx := context.Background()
	v := addVehicle(t, cat)

	s, err := svc.Create(ctx, sales.CreateInput{UserID: "u1", VehicleID: v.ID, Notes: "  Nama: Andi  "})
	require.NoError(t, err)
	require.Equal(t, sales.StatusPending, s.Status)
	require.Equal(t, int64(18500000), s.SalePrice)
	require.Equal(t, "2025-05-17", s.SaleDate.Format("2006-01-02"))
	require.NotNil(t, s.Notes)
	require.Equal(t, "Nama: Andi", *s.Notes)
	require.Equal(t, catalog.StatusSold, statusOf(t, cat, v.ID))
	require.Equal(t, []string{events.EventSaleCreated}, rec.Types())

	_, err = svc.Create(ctx, sales.CreateInput{UserID: "u2", VehicleID: v.ID})
	require.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestCreate_ExplicitPriceAndValidation(t *testing.T) {
	cat, svc, _ := setup(t)
	ctx := context.Background()
	v := addVehicle(t, cat)

	price := int64(17000000)
	s, err := svc.Create(ctx, sales.CreateInput{UserID: "u1", VehicleID: v.ID, SalePrice: &price})
	require.NoError(t, err)
	require.Equal(t, price, s.SalePrice)
	require.Nil(t, s.Notes)

	neg := int64(-1)
	_, err = svc.Create(ctx, sales.CreateInput{SalePrice: &neg})
	errs, ok := validation.As(err)
	require.True(t, ok)
	require.Len(t, errs, 3)
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name string
		to   sales.Status
		want catalog.Status
	}{
		{"completed keeps vehicle sold", sales.StatusCompleted, catalog.StatusSold},
		{"cancelled releases vehicle", sales.StatusCancelled, catalog.StatusAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, svc, _ := setup(t)
			ctx := context.Background()
			v := addVehicle(t, cat)
			s, err := svc.Create(ctx, sales.CreateInput{UserID: "u1", VehicleID: v.ID})
			require.NoError(t, err)

			s, err = svc.Transition(ctx, s.ID, tt.to)
			require.NoError(t, err)
			require.Equal(t, tt.to, s.Status)
			require.Equal(t, tt.want, statusOf(t, cat, v.ID))

			_, err = svc.Transition(ctx, s.ID, sales.StatusPending)
			require.ErrorIs(t, err, sales.ErrIllegalTransition)
		})
	}
}

func TestListByUser(t *testing.T) {
	cat, svc, _ := setup(t)
	ctx := context.Background()
	a, b := addVehicle(t, cat), addVehicle(t, cat)

	_, err := svc.Create(ctx, sales.CreateInput{UserID: "u1", VehicleID: a.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, sales.CreateInput{UserID: "u2", VehicleID: b.ID})
	require.NoError(t, err)

	mine, err := svc.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, a.ID, mine[0].VehicleID)

	n, err := svc.CountByUser(ctx, "u2")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestStatusHelpers(t *testing.T) {
	require.True(t, sales.StatusPending.Holds())
	require.True(t, sales.StatusCompleted.Holds())
	require.False(t, sales.StatusCancelled.Holds())
	require.Equal(t, []sales.Status{sales.StatusCompleted, sales.StatusCancelled}, sales.NextStatuses(sales.StatusPending))
	require.Empty(t, sales.NextStatuses(sales.StatusCompleted))
}
