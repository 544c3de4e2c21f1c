package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
)

func TestKV_Expiry(t *testing.T) {
	s := New()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return now }
	kv := s.KV()
	ctx := context.Background()

	ok, err := kv.Claim(ctx, "idem:k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = kv.Claim(ctx, "idem:k", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	now = now.Add(time.Minute)
	ok, err = kv.Claim(ctx, "idem:k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "expired claims can be taken again")

	require.NoError(t, kv.Release(ctx, "idem:k"))
	ok, err = kv.Claim(ctx, "idem:k", 0)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestKV_LoadStore(t *testing.T) {
	kv := New().KV()
	ctx := context.Background()

	var out map[string]int
	found, err := kv.Load(ctx, "k", &out)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, kv.Store(ctx, "k", map[string]int{"a": 1}, time.Hour))
	found, err = kv.Load(ctx, "k", &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1, out["a"])

	require.NoError(t, kv.Drop(ctx, "k"))
	found, err = kv.Load(ctx, "k", &out)
	require.NoError(t, err)
	require.False(t, found)
}

func TestKV_Revocation(t *testing.T) {
	kv := New().KV()
	ctx := context.Background()

	require.NoError(t, kv.Revoke(ctx, "jti", 0))
	revoked, err := kv.Revoked(ctx, "jti")
	require.NoError(t, err)
	require.False(t, revoked, "already expired tokens are not recorded")

	require.NoError(t, kv.Revoke(ctx, "jti", time.Hour))
	revoked, err = kv.Revoked(ctx, "jti")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestRentalCreate_AtomicWithVehicle(t *testing.T) {
	s := New()
	ctx := context.Background()
	v, err := s.Vehicles().Insert(ctx, catalog.Row{Name: "Avanza"})
	require.NoError(t, err)
	require.Equal(t, string(catalog.StatusAvailable), v.Status)

	_, err = s.Rentals().Create(ctx, rentals.Rental{UserID: "u1", VehicleID: v.ID})
	require.NoError(t, err)

	// the failed second reservation leaves no rental behind
	_, err = s.Rentals().Create(ctx, rentals.Rental{UserID: "u2", VehicleID: v.ID})
	require.ErrorIs(t, err, catalog.ErrUnavailable)
	rs, err := s.Rentals().List(ctx, rentals.ListFilter{})
	require.NoError(t, err)
	require.Len(t, rs, 1)

	_, err = s.Rentals().Create(ctx, rentals.Rental{UserID: "u2", VehicleID: "missing"})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestVehicleList_NewestFirstAndFiltered(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, err := s.Vehicles().Insert(ctx, catalog.Row{Name: "A"})
	require.NoError(t, err)
	b, err := s.Vehicles().Insert(ctx, catalog.Row{Name: "B", Status: string(catalog.StatusSold)})
	require.NoError(t, err)

	all, err := s.Vehicles().List(ctx, catalog.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, []string{b.ID, a.ID}, []string{all[0].ID, all[1].ID})

	avail, err := s.Vehicles().List(ctx, catalog.ListFilter{Status: catalog.StatusAvailable})
	require.NoError(t, err)
	require.Len(t, avail, 1)
	require.Equal(t, a.ID, avail[0].ID)
}
