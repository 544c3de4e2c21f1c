package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/go-vehicle-market/internal/accounts"
	"github.com/ariefcatur/go-vehicle-market/internal/blob"
	"github.com/ariefcatur/go-vehicle-market/internal/booking"
	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/content"
	"github.com/ariefcatur/go-vehicle-market/internal/customers"
	"github.com/ariefcatur/go-vehicle-market/internal/httpx"
	"github.com/ariefcatur/go-vehicle-market/internal/listing"
	"github.com/ariefcatur/go-vehicle-market/internal/memstore"
	"github.com/ariefcatur/go-vehicle-market/internal/reconcile"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/reports"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
)

type server struct {
	*httptest.Server
	api *httpx.API
}

func newServer(t *testing.T) server {
	t.Helper()
	st := memstore.New()
	log := zap.NewNop()
	dir := t.TempDir()
	blobs := blob.NewDiskStore(dir, "http://test.local")

	cat := catalog.NewService(st.Vehicles(), blobs, log)
	cat.Cache = st.KV()
	cat.CacheTTL = time.Minute
	rent := rentals.NewService(st.Rentals(), cat, nil, log)
	sale := sales.NewService(st.Sales(), cat, nil, log)
	acc := accounts.NewService(st.Profiles(), "secret", time.Hour, st.KV(), blobs, log)
	acc.BcryptCost = bcrypt.MinCost

	api := &httpx.API{
		Catalog:    cat,
		Rentals:    rent,
		Sales:      sale,
		Booking:    booking.NewService(cat, rent, sale, st.KV(), log),
		Accounts:   acc,
		Customers:  customers.NewService(acc, rent, sale, log),
		Content:    content.NewService(st.Content()),
		Reports:    reports.NewService(rent, sale, cat),
		Reconciler: reconcile.New(cat, rent, sale, log),
		BlobDir:    dir,
		Log:        log,
	}
	router := httpx.NewRouter(log)
	api.Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return server{Server: srv, api: api}
}

func (s server) vehicle(t *testing.T, name string) catalog.Vehicle {
	t.Helper()
	rate := int64(350000)
	v, err := s.api.Catalog.Add(context.Background(), catalog.Vehicle{
		Name: name, Year: 2021, PriceNumeric: 150000000, RentalPrice: &rate,
		Transmission: catalog.Automatic, Type: catalog.Car,
		Seller: catalog.Seller{Name: "Budi", Phone: "081234567890"},
	}, nil, nil)
	require.NoError(t, err)
	return v
}

func (s server) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s server) signUp(t *testing.T, email string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "password": "rahasia", "full_name": "Rina",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[accounts.Session](t, resp).Token
}

func TestHealthz(t *testing.T) {
	s := newServer(t)
	resp := s.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListVehicles(t *testing.T) {
	s := newServer(t)
	s.vehicle(t, "Toyota Avanza")
	s.vehicle(t, "Honda Jazz")

	resp := s.do(t, http.MethodGet, "/api/vehicles", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[listing.Result](t, resp)
	require.Equal(t, 2, res.Total)
	require.True(t, res.IsDefault)

	resp = s.do(t, http.MethodGet, "/api/vehicles?search=jazz", "", nil)
	res = decode[listing.Result](t, resp)
	require.Equal(t, 1, res.Matched)
	require.Equal(t, "Honda Jazz", res.Vehicles[0].Name)
}

func TestGetVehicle_NotFound(t *testing.T) {
	s := newServer(t)
	resp := s.do(t, http.MethodGet, "/api/vehicles/missing", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)
	token := s.signUp(t, "rina@example.com")

	resp := s.do(t, http.MethodGet, "/api/auth/session", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/me/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "rina@example.com", decode[accounts.Profile](t, resp).Email)

	resp = s.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "rina@example.com", "password": "salah",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "rina@example.com", "password": "rahasia",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/signout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = s.do(t, http.MethodGet, "/api/me/profile", token, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignUp_ValidationBody(t *testing.T) {
	s := newServer(t)
	resp := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "bukan-email"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}](t, resp)
	require.Equal(t, "validation failed", body.Error)
	require.Contains(t, body.Fields, "email")
	require.Contains(t, body.Fields, "password")
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	s := newServer(t)
	member := s.signUp(t, "member@example.com")

	resp := s.do(t, http.MethodGet, "/api/admin/dashboard", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = s.do(t, http.MethodGet, "/api/admin/dashboard", member, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, _, err := s.api.Accounts.EnsureAdmin(context.Background(), "admin@example.com", "admin123", "Admin")
	require.NoError(t, err)
	resp = s.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{
		"email": "admin@example.com", "password": "admin123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	admin := decode[accounts.Session](t, resp).Token

	resp = s.do(t, http.MethodGet, "/api/admin/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBookRental(t *testing.T) {
	s := newServer(t)
	v := s.vehicle(t, "Toyota Avanza")
	token := s.signUp(t, "rina@example.com")
	body := map[string]string{"vehicle_id": v.ID, "start_date": "2025-03-01", "end_date": "2025-03-04"}

	resp := s.do(t, http.MethodPost, "/api/bookings/rentals", token, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[struct {
		Message string         `json:"message"`
		Rental  rentals.Rental `json:"rental"`
	}](t, resp)
	require.Equal(t, int64(3*350000), created.Rental.TotalPrice)
	require.Equal(t, rentals.StatusPending, created.Rental.Status)

	// the vehicle is reserved now
	resp = s.do(t, http.MethodPost, "/api/bookings/rentals", token, body)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/me/rentals", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[[]rentals.Rental](t, resp), 1)

	resp = s.do(t, http.MethodPost, "/api/bookings/rentals", token, map[string]string{
		"vehicle_id": v.ID, "start_date": "03/01/2025",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBookRental_RequiresSession(t *testing.T) {
	s := newServer(t)
	v := s.vehicle(t, "Toyota Avanza")
	resp := s.do(t, http.MethodPost, "/api/bookings/rentals", "", map[string]string{
		"vehicle_id": v.ID, "start_date": "2025-03-01", "end_date": "2025-03-04",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRentalLink(t *testing.T) {
	s := newServer(t)
	v := s.vehicle(t, "Toyota Avanza")
	resp := s.do(t, http.MethodPost, "/api/vehicles/"+v.ID+"/whatsapp/rental", "", map[string]string{
		"name": "Rina", "phone": "0812", "start_date": "2025-03-01", "end_date": "2025-03-04",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	require.Contains(t, body["url"], "https://wa.me/")
}
