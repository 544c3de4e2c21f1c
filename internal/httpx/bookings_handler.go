package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-vehicle-market/internal/booking"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

const headerIdempotencyKey = "Idempotency-Key"

type bookRentalReq struct {
	VehicleID string `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (a *API) bookRental(w http.ResponseWriter, r *http.Request) {
	var req bookRentalReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	if req.VehicleID == "" {
		writeError(w, r, a.Log, validation.Errors{}.Add("vehicle_id", "is required"))
		return
	}
	start, end, err := dateRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	rental, err := a.Booking.RequestRental(r.Context(), sessionFrom(r.Context()).Profile.ID, booking.RentalRequest{
		VehicleID:      req.VehicleID,
		Start:          start,
		End:            end,
		IdempotencyKey: r.Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Pengajuan berhasil! Admin akan menghubungi via WhatsApp.",
		"rental":  rental,
	})
}

type bookPurchaseReq struct {
	VehicleID string `json:"vehicle_id"`
	booking.PurchaseContact
}

func (a *API) bookPurchase(w http.ResponseWriter, r *http.Request) {
	var req bookPurchaseReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	if req.VehicleID == "" {
		writeError(w, r, a.Log, validation.Errors{}.Add("vehicle_id", "is required"))
		return
	}
	sale, err := a.Booking.RequestPurchase(r.Context(), sessionFrom(r.Context()).Profile.ID, booking.PurchaseRequest{
		VehicleID:      req.VehicleID,
		Contact:        req.PurchaseContact,
		IdempotencyKey: r.Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Pengajuan pembelian berhasil! Admin akan menghubungi Anda.",
		"sale":    sale,
	})
}
