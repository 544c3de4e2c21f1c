package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/accounts"
	"github.com/ariefcatur/go-vehicle-market/internal/booking"
	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/content"
	"github.com/ariefcatur/go-vehicle-market/internal/customers"
	"github.com/ariefcatur/go-vehicle-market/internal/reconcile"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/reports"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
)

func NewRouter(log *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// requestLogger logs every request once, after it completes.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote_ip", r.RemoteAddr))
		})
	}
}

// API carries every service the HTTP surface calls.
type API struct {
	Catalog    *catalog.Service
	Rentals    *rentals.Service
	Sales      *sales.Service
	Booking    *booking.Service
	Accounts   *accounts.Service
	Customers  *customers.Service
	Content    *content.Service
	Reports    *reports.Service
	Reconciler *reconcile.Reconciler
	// BlobDir is served under /media/ when set.
	BlobDir string
	Log     *zap.Logger
}

func (a *API) Register(r chi.Router) {
	if a.BlobDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(a.BlobDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/vehicles", a.listVehicles)
		r.Get("/vehicles/{id}", a.getVehicle)
		r.Get("/vehicles/{id}/quote", a.quote)
		r.Post("/vehicles/{id}/whatsapp/rental", a.rentalLink)
		r.Post("/vehicles/{id}/whatsapp/purchase", a.purchaseLink)
		r.Get("/testimonials", a.listTestimonials)
		r.Get("/faqs", a.listFAQs)

		r.Post("/auth/signup", a.signUp)
		r.Post("/auth/signin", a.signIn)

		r.Group(func(r chi.Router) {
			r.Use(a.requireSession)
			r.Post("/auth/signout", a.signOut)
			r.Get("/auth/session", a.session)
			r.Get("/me/profile", a.myProfile)
			r.Patch("/me/profile", a.updateMyProfile)
			r.Post("/me/id-card", a.uploadIDCard)
			r.Get("/me/rentals", a.myRentals)
			r.Get("/me/sales", a.mySales)
			r.Post("/bookings/rentals", a.bookRental)
			r.Post("/bookings/purchases", a.bookPurchase)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(a.requireSession, a.requireAdmin)

			r.Get("/vehicles", a.adminVehicles)
			r.Post("/vehicles", a.createVehicle)
			r.Patch("/vehicles/{id}", a.updateVehicle)
			r.Delete("/vehicles/{id}", a.deleteVehicle)
			r.Put("/vehicles/{id}/status", a.setVehicleStatus)
			r.Post("/uploads", a.uploadImage)

			r.Get("/rentals", a.listRentals)
			r.Post("/rentals", a.createRental)
			r.Patch("/rentals/{id}", a.updateRental)
			r.Post("/rentals/{id}/status", a.transitionRental)
			r.Get("/rentals/{id}/transitions", a.rentalTransitions)

			r.Get("/sales", a.listSales)
			r.Post("/sales", a.createSale)
			r.Post("/sales/{id}/status", a.transitionSale)
			r.Get("/sales/{id}/transitions", a.saleTransitions)

			r.Get("/customers", a.listCustomers)
			r.Get("/customers/{id}", a.getCustomer)
			r.Post("/customers", a.createCustomer)

			r.Post("/testimonials", a.createTestimonial)
			r.Patch("/testimonials/{id}", a.updateTestimonial)
			r.Delete("/testimonials/{id}", a.deleteTestimonial)
			r.Post("/faqs", a.createFAQ)
			r.Patch("/faqs/{id}", a.updateFAQ)
			r.Delete("/faqs/{id}", a.deleteFAQ)

			r.Get("/reports", a.report)
			r.Get("/dashboard", a.dashboard)
			r.Post("/reconcile", a.reconcile)
		})
	})
}
