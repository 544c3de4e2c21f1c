package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/accounts"
	"github.com/ariefcatur/go-vehicle-market/internal/content"
	"github.com/ariefcatur/go-vehicle-market/internal/pricing"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/reports"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

func (a *API) listRentals(w http.ResponseWriter, r *http.Request) {
	rs, err := a.Rentals.ListAll(r.Context())
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

type rentalReq struct {
	UserID     string `json:"user_id"`
	VehicleID  string `json:"vehicle_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	TotalPrice *int64 `json:"total_price"`
}

func (a *API) createRental(w http.ResponseWriter, r *http.Request) {
	var req rentalReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	start, end, err := dateRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	out, err := a.Rentals.Create(r.Context(), rentals.CreateInput{
		UserID:     req.UserID,
		VehicleID:  req.VehicleID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: req.TotalPrice,
	})
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a *API) updateRental(w http.ResponseWriter, r *http.Request) {
	var req rentalReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	start, end, err := dateRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	e := rentals.Edit{TotalPrice: req.TotalPrice}
	if !start.IsZero() {
		e.StartDate = &start
	}
	if !end.IsZero() {
		e.EndDate = &end
	}
	out, err := a.Rentals.Update(r.Context(), chi.URLParam(r, "id"), e)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type statusReq struct {
	Status string `json:"status"`
}

func (a *API) transitionRental(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	out, err := a.Rentals.Transition(r.Context(), chi.URLParam(r, "id"), rentals.Status(req.Status))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Status sewa diperbarui.", "rental": out})
}

func (a *API) rentalTransitions(w http.ResponseWriter, r *http.Request) {
	cur, err := a.Rentals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": cur.Status, "next": rentals.NextStatuses(cur.Status)})
}

func (a *API) listSales(w http.ResponseWriter, r *http.Request) {
	ss, err := a.Sales.ListAll(r.Context())
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ss)
}

type saleReq struct {
	UserID    string `json:"user_id"`
	VehicleID string `json:"vehicle_id"`
	SalePrice *int64 `json:"sale_price"`
	SaleDate  string `json:"sale_date"`
	Notes     string `json:"notes"`
}

func (a *API) createSale(w http.ResponseWriter, r *http.Request) {
	var req saleReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	in := sales.CreateInput{UserID: req.UserID, VehicleID: req.VehicleID, SalePrice: req.SalePrice, Notes: req.Notes}
	if req.SaleDate != "" {
		d, err := pricing.ParseDate(req.SaleDate)
		if err != nil {
			writeError(w, r, a.Log, validation.Errors{}.Add("sale_date", err.Error()))
			return
		}
		in.SaleDate = &d
	}
	out, err := a.Sales.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a *API) transitionSale(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	out, err := a.Sales.Transition(r.Context(), chi.URLParam(r, "id"), sales.Status(req.Status))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Status penjualan diperbarui.", "sale": out})
}

func (a *API) saleTransitions(w http.ResponseWriter, r *http.Request) {
	cur, err := a.Sales.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": cur.Status, "next": sales.NextStatuses(cur.Status)})
}

func (a *API) listCustomers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cs, err := a.Customers.List(ctx)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (a *API) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := a.Customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) createCustomer(w http.ResponseWriter, r *http.Request) {
	var in accounts.CreateMemberInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	c, err := a.Customers.Create(r.Context(), sessionFrom(r.Context()).Profile.ID, in)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) listTestimonials(w http.ResponseWriter, r *http.Request) {
	ts, err := a.Content.Testimonials(r.Context())
	if err != nil {
		a.Log.Warn("list testimonials", zap.Error(err))
		ts = []content.Testimonial{}
	}
	writeJSON(w, http.StatusOK, ts)
}

func (a *API) createTestimonial(w http.ResponseWriter, r *http.Request) {
	var t content.Testimonial
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	out, err := a.Content.CreateTestimonial(r.Context(), t)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a *API) updateTestimonial(w http.ResponseWriter, r *http.Request) {
	var p content.TestimonialPatch
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	out, err := a.Content.UpdateTestimonial(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) deleteTestimonial(w http.ResponseWriter, r *http.Request) {
	if err := a.Content.DeleteTestimonial(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Testimoni dihapus.")
}

func (a *API) listFAQs(w http.ResponseWriter, r *http.Request) {
	fs, err := a.Content.FAQs(r.Context())
	if err != nil {
		a.Log.Warn("list faqs", zap.Error(err))
		fs = []content.FAQ{}
	}
	writeJSON(w, http.StatusOK, fs)
}

func (a *API) createFAQ(w http.ResponseWriter, r *http.Request) {
	var f content.FAQ
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	out, err := a.Content.CreateFAQ(r.Context(), f)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a *API) updateFAQ(w http.ResponseWriter, r *http.Request) {
	var p content.FAQPatch
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	out, err := a.Content.UpdateFAQ(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) deleteFAQ(w http.ResponseWriter, r *http.Request) {
	if err := a.Content.DeleteFAQ(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeMessage(w, http.StatusOK, "FAQ dihapus.")
}

func (a *API) report(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	rep, err := a.Reports.Build(ctx, reports.Range{Start: start, End: end})
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	d, err := a.Reports.Dashboard(ctx)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) reconcile(w http.ResponseWriter, r *http.Request) {
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))
	ms, err := a.Reconciler.Run(r.Context(), dryRun)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dry_run": dryRun, "mismatches": ms})
}
