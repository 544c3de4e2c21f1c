package booking_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/blob"
	"github.com/ariefcatur/go-vehicle-market/internal/booking"
	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/memstore"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func avanza() catalog.Vehicle {
	rate := int64(350000)
	return catalog.Vehicle{
		Name:         "Toyota Avanza",
		Year:         2021,
		PriceNumeric: 230000000,
		RentalPrice:  &rate,
		Transmission: catalog.Manual,
		Type:         catalog.Car,
		Seller:       catalog.Seller{Name: "Budi", Phone: "6281234567890"},
	}
}

func TestRentalMessage_DropsEmptyLines(t *testing.T) {
	msg := booking.RentalMessage(avanza(), booking.RentalContact{Name: "Andi", Phone: "0812"}, day("2025-01-01"), day("2025-01-04"))

	require.True(t, strings.HasPrefix(msg, "Halo Budi,\nSaya ingin menyewa kendaraan berikut:\n"), msg)
	require.Contains(t, msg, "🚗 *Toyota Avanza* (2021)")
	require.Contains(t, msg, "📅 Tanggal: 01 Jan 2025 - 04 Jan 2025")
	require.Contains(t, msg, "1.050.000")
	require.Contains(t, msg, "👤 Nama: Andi\n📱 HP: 0812\nMohon konfirmasi")
	require.NotContains(t, msg, "Catatan")
	require.NotContains(t, msg, "\n\n")

	msg = booking.RentalMessage(avanza(), booking.RentalContact{Name: "Andi", Phone: "0812", Note: "Antar ke hotel"}, day("2025-01-01"), day("2025-01-04"))
	require.Contains(t, msg, "📱 HP: 0812\n📝 Catatan: Antar ke hotel\n")
}

func TestPurchaseMessage(t *testing.T) {
	msg := booking.PurchaseMessage(avanza(), booking.PurchaseContact{Name: "Andi", Phone: "0812", Message: "Bisa nego?"})
	require.Contains(t, msg, "Saya tertarik untuk membeli kendaraan berikut:")
	require.Contains(t, msg, "230.000.000")
	require.Contains(t, msg, "💬 Pesan: Bisa nego?")
	require.True(t, strings.HasSuffix(msg, "\nApakah kendaraan masih tersedia? Terima kasih!"))
}

func TestRentalLink(t *testing.T) {
	v := avanza()
	c := booking.RentalContact{Name: "Andi", Phone: "0812"}
	link, err := booking.RentalLink(v, c, day("2025-01-01"), day("2025-01-04"))
	require.NoError(t, err)

	prefix := "https://wa.me/6281234567890?text="
	require.True(t, strings.HasPrefix(link, prefix), link)
	text := strings.TrimPrefix(link, prefix)
	require.NotContains(t, text, "+")
	require.Contains(t, text, "%20")
	decoded, err := url.QueryUnescape(text)
	require.NoError(t, err)
	require.Equal(t, booking.RentalMessage(v, c, day("2025-01-01"), day("2025-01-04")), decoded)

	_, err = booking.RentalLink(v, booking.RentalContact{Phone: "0812"}, day("2025-01-01"), day("2025-01-04"))
	errs, ok := validation.As(err)
	require.True(t, ok)
	require.Equal(t, "Mohon lengkapi nama dan nomor HP Anda.", errs["name"])

	_, err = booking.RentalLink(v, c, time.Time{}, day("2025-01-04"))
	errs, ok = validation.As(err)
	require.True(t, ok)
	require.Equal(t, "Mohon pilih tanggal sewa.", errs["dates"])
}

func TestPurchaseNotes(t *testing.T) {
	require.Equal(t, "Nama: Andi\nNo HP: 0812\nPesan: Bisa nego?",
		booking.PurchaseNotes(booking.PurchaseContact{Name: "Andi", Phone: "0812", Message: "Bisa nego?"}))
}

func TestQuoteFor(t *testing.T) {
	q := booking.QuoteFor(avanza(), day("2025-01-01"), day("2025-01-04"))
	require.Equal(t, 3, q.Days)
	require.Equal(t, int64(1050000), q.Total)

	v := avanza()
	v.RentalPrice = nil
	q = booking.QuoteFor(v, day("2025-01-01"), day("2025-01-04"))
	require.Zero(t, q.Total)
	require.Equal(t, "Hubungi Admin", q.Display)
}

type fixture struct {
	catalog *catalog.Service
	svc     *booking.Service
}

func setup(t *testing.T, g booking.Guard) fixture {
	t.Helper()
	st := memstore.New()
	log := zap.NewNop()
	cat := catalog.NewService(st.Vehicles(), blob.NewDiskStore(t.TempDir(), "http://localhost"), log)
	if g == nil {
		g = st.KV()
	}
	r := rentals.NewService(st.Rentals(), cat, nil, log)
	s := sales.NewService(st.Sales(), cat, nil, log)
	return fixture{catalog: cat, svc: booking.NewService(cat, r, s, g, log)}
}

func (f fixture) add(t *testing.T) catalog.Vehicle {
	t.Helper()
	v, err := f.catalog.Add(context.Background(), avanza(), nil, nil)
	require.NoError(t, err)
	return v
}

func TestQuote(t *testing.T) {
	f := setup(t, nil)
	v := f.add(t)

	q, err := f.svc.Quote(context.Background(), v.ID, day("2025-01-01"), day("2025-01-03"))
	require.NoError(t, err)
	require.Equal(t, int64(700000), q.Total)

	_, err = f.svc.Quote(context.Background(), v.ID, day("2025-01-03"), day("2025-01-01"))
	_, ok := validation.As(err)
	require.True(t, ok)

	_, err = f.svc.Quote(context.Background(), "missing", time.Time{}, time.Time{})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestRequestRental_Idempotency(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	a, b := f.add(t), f.add(t)

	req := booking.RentalRequest{VehicleID: a.ID, Start: day("2025-01-01"), End: day("2025-01-03"), IdempotencyKey: "k1"}
	r, err := f.svc.RequestRental(ctx, "u1", req)
	require.NoError(t, err)
	require.Equal(t, rentals.StatusPending, r.Status)
	require.Equal(t, int64(700000), r.TotalPrice)

	_, err = f.svc.RequestRental(ctx, "u1", req)
	require.ErrorIs(t, err, booking.ErrDuplicate)

	// the same key from another user is a different request
	req.VehicleID = b.ID
	_, err = f.svc.RequestRental(ctx, "u2", req)
	require.NoError(t, err)
}

func TestRequestRental_FailureReleasesKey(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	a, b := f.add(t), f.add(t)

	_, err := f.svc.RequestRental(ctx, "u1", booking.RentalRequest{VehicleID: a.ID, Start: day("2025-01-01"), End: day("2025-01-03")})
	require.NoError(t, err)

	_, err = f.svc.RequestRental(ctx, "u2", booking.RentalRequest{VehicleID: a.ID, Start: day("2025-01-01"), End: day("2025-01-03"), IdempotencyKey: "k"})
	require.ErrorIs(t, err, catalog.ErrUnavailable)

	_, err = f.svc.RequestRental(ctx, "u2", booking.RentalRequest{VehicleID: b.ID, Start: day("2025-01-01"), End: day("2025-01-03"), IdempotencyKey: "k"})
	require.NoError(t, err)
}

func TestRequestRental_Validation(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	v := f.add(t)

	_, err := f.svc.RequestRental(ctx, "", booking.RentalRequest{VehicleID: v.ID, Start: day("2025-01-01"), End: day("2025-01-02")})
	errs, ok := validation.As(err)
	require.True(t, ok)
	require.Contains(t, errs, "user_id")

	_, err = f.svc.RequestRental(ctx, "u1", booking.RentalRequest{VehicleID: v.ID})
	errs, ok = validation.As(err)
	require.True(t, ok)
	require.Contains(t, errs, "dates")

	_, err = f.svc.RequestRental(ctx, "u1", booking.RentalRequest{VehicleID: v.ID, Start: day("2025-01-02"), End: day("2025-01-02")})
	errs, ok = validation.As(err)
	require.True(t, ok)
	require.Contains(t, errs, "end_date")
}

func TestRequestPurchase(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	v := f.add(t)

	s, err := f.svc.RequestPurchase(ctx, "u1", booking.PurchaseRequest{
		VehicleID: v.ID,
		Contact:   booking.PurchaseContact{Name: "Andi", Phone: "0812", Message: "Bisa nego?"},
	})
	require.NoError(t, err)
	require.Equal(t, sales.StatusPending, s.Status)
	require.Equal(t, v.PriceNumeric, s.SalePrice)
	require.Equal(t, "Nama: Andi\nNo HP: 0812\nPesan: Bisa nego?", *s.Notes)

	got, err := f.catalog.GetByID(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, catalog.StatusSold, got.Status)
}

type brokenGuard struct{}

func (brokenGuard) Claim(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}
func (brokenGuard) Release(context.Context, string) error { return nil }

func TestRequestRental_GuardFailureDoesNotBlock(t *testing.T) {
	f := setup(t, brokenGuard{})
	v := f.add(t)
	_, err := f.svc.RequestRental(context.Background(), "u1", booking.RentalRequest{
		VehicleID: v.ID, Start: day("2025-01-01"), End: day("2025-01-02"), IdempotencyKey: "k",
	})
	require.NoError(t, err)
}
