package reconcile_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/blob"
	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/events"
	"github.com/ariefcatur/go-vehicle-market/internal/memstore"
	"github.com/ariefcatur/go-vehicle-market/internal/reconcile"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
)

type fixture struct {
	store   *memstore.Store
	catalog *catalog.Service
	rentals *rentals.Service
	sales   *sales.Service
	rec     *reconcile.Reconciler
}

func setup(t *testing.T) fixture {
	t.Helper()
	st := memstore.New()
	log := zap.NewNop()
	cat := catalog.NewService(st.Vehicles(), blob.NewDiskStore(t.TempDir(), ""), log)
	r := rentals.NewService(st.Rentals(), cat, nil, log)
	s := sales.NewService(st.Sales(), cat, nil, log)
	return fixture{store: st, catalog: cat, rentals: r, sales: s, rec: reconcile.New(cat, r, s, log)}
}

func (f fixture) vehicle(t *testing.T, name string) catalog.Vehicle {
	t.Helper()
	rate := int64(100)
	v, err := f.catalog.Add(context.Background(), catalog.Vehicle{
		Name: name, Year: 2020, PriceNumeric: 1000, RentalPrice: &rate,
		Transmission: catalog.Manual, Type: catalog.Car,
		Seller: catalog.Seller{Name: "Budi", Phone: "0812"},
	}, nil, nil)
	require.NoError(t, err)
	return v
}

func (f fixture) status(t *testing.T, id string) catalog.Status {
	t.Helper()
	v, err := f.catalog.GetByID(context.Background(), id)
	require.NoError(t, err)
	return v.Status
}

func (f fixture) rent(t *testing.T, vehicleID string) rentals.Rental {
	t.Helper()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := f.rentals.Create(context.Background(), rentals.CreateInput{
		UserID: "u1", VehicleID: vehicleID, StartDate: start, EndDate: start.AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	return r
}

func TestScanAndRun(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	rented := f.vehicle(t, "Rented")
	f.rent(t, rented.ID)
	require.NoError(t, f.catalog.UpdateStatus(ctx, rented.ID, catalog.StatusAvailable))

	manual := f.vehicle(t, "Manual")
	require.NoError(t, f.catalog.UpdateStatus(ctx, manual.ID, catalog.StatusSold))

	cancelled := f.vehicle(t, "Cancelled")
	s, err := f.sales.Create(ctx, sales.CreateInput{UserID: "u1", VehicleID: cancelled.ID})
	require.NoError(t, err)
	_, err = f.sales.Transition(ctx, s.ID, sales.StatusCancelled)
	require.NoError(t, err)
	require.NoError(t, f.catalog.UpdateStatus(ctx, cancelled.ID, catalog.StatusRented))

	ms, err := f.rec.Run(ctx, true)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	require.Equal(t, rented.ID, ms[0].VehicleID)
	require.Equal(t, catalog.StatusRented, ms[0].Expected)
	require.Equal(t, catalog.StatusAvailable, f.status(t, rented.ID), "dry run writes nothing")

	_, err = f.rec.Run(ctx, false)
	require.NoError(t, err)
	require.Equal(t, catalog.StatusRented, f.status(t, rented.ID))
	require.Equal(t, catalog.StatusRented, f.status(t, cancelled.ID), "closed transactions keep the manual status")
	require.Equal(t, catalog.StatusSold, f.status(t, manual.ID), "manual status without transactions is kept")

	ms, err = f.rec.Scan(ctx)
	require.NoError(t, err)
	require.Empty(t, ms)

	f.rec.StrictManual = true
	ms, err = f.rec.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	for _, m := range ms {
		require.Contains(t, []string{manual.ID, cancelled.ID}, m.VehicleID)
		require.Equal(t, catalog.StatusAvailable, m.Expected)
	}
}

func TestRun_KeepsManualStatusAfterCancelledRental(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	v := f.vehicle(t, "Sold offline")

	r := f.rent(t, v.ID)
	_, err := f.rentals.Transition(ctx, r.ID, rentals.StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, catalog.StatusAvailable, f.status(t, v.ID))
	require.NoError(t, f.catalog.UpdateStatus(ctx, v.ID, catalog.StatusSold))

	ms, err := f.rec.Run(ctx, false)
	require.NoError(t, err)
	require.Empty(t, ms)
	require.Equal(t, catalog.StatusSold, f.status(t, v.ID))

	m, err := f.rec.Vehicle(ctx, v.ID)
	require.NoError(t, err)
	require.Nil(t, m)
	require.Equal(t, catalog.StatusSold, f.status(t, v.ID))
}

func TestScan_SaleWinsOverRental(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	v := f.vehicle(t, "Both")

	r := f.rent(t, v.ID)
	_, err := f.rentals.Transition(ctx, r.ID, rentals.StatusActive)
	require.NoError(t, err)
	// force a sale row onto a rented vehicle behind the services' backs
	require.NoError(t, f.catalog.UpdateStatus(ctx, v.ID, catalog.StatusAvailable))
	_, err = f.sales.Create(ctx, sales.CreateInput{UserID: "u2", VehicleID: v.ID})
	require.NoError(t, err)
	require.NoError(t, f.catalog.UpdateStatus(ctx, v.ID, catalog.StatusRented))

	ms, err := f.rec.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	require.Equal(t, catalog.StatusSold, ms[0].Expected)
}

func message(t *testing.T, eventID, vehicleID string) kafkago.Message {
	t.Helper()
	env, err := events.NewEnvelope(context.Background(), "test", events.EventRentalStatusChanged,
		events.TransactionPayload{Kind: events.KindRental, TransactionID: "r1", VehicleID: vehicleID})
	require.NoError(t, err)
	env.EventID = eventID
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return kafkago.Message{Value: b}
}

func TestHandler(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	v := f.vehicle(t, "Rented")
	f.rent(t, v.ID)
	require.NoError(t, f.catalog.UpdateStatus(ctx, v.ID, catalog.StatusAvailable))

	h := &reconcile.Handler{R: f.rec, Dedup: f.store.KV(), Service: "test", Log: zap.NewNop()}

	require.NoError(t, h.Handle(ctx, message(t, "e1", v.ID)))
	require.Equal(t, catalog.StatusRented, f.status(t, v.ID))

	// a redelivered event is skipped
	require.NoError(t, f.catalog.UpdateStatus(ctx, v.ID, catalog.StatusAvailable))
	require.NoError(t, h.Handle(ctx, message(t, "e1", v.ID)))
	require.Equal(t, catalog.StatusAvailable, f.status(t, v.ID))

	require.NoError(t, h.Handle(ctx, message(t, "e2", v.ID)))
	require.Equal(t, catalog.StatusRented, f.status(t, v.ID))

	// poison and dangling events are acknowledged
	require.NoError(t, h.Handle(ctx, kafkago.Message{Value: []byte("{not json")}))
	require.NoError(t, h.Handle(ctx, message(t, "e3", "deleted-vehicle")))
	require.NoError(t, h.Handle(ctx, message(t, "e4", "")))
}
