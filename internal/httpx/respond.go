package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/accounts"
	"github.com/ariefcatur/go-vehicle-market/internal/blob"
	"github.com/ariefcatur/go-vehicle-market/internal/booking"
	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/content"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return validation.Errors{}.Add("body", "invalid json: "+err.Error())
	}
	return nil
}

// statusOf maps a domain error to its HTTP status.
func statusOf(err error) int {
	if _, ok := validation.As(err); ok {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, accounts.ErrUnauthenticated), errors.Is(err, accounts.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, accounts.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, rentals.ErrNotFound),
		errors.Is(err, sales.ErrNotFound), errors.Is(err, accounts.ErrNotFound),
		errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, rentals.ErrIllegalTransition), errors.Is(err, sales.ErrIllegalTransition),
		errors.Is(err, rentals.ErrStale), errors.Is(err, sales.ErrStale),
		errors.Is(err, catalog.ErrUnavailable), errors.Is(err, accounts.ErrEmailTaken),
		errors.Is(err, booking.ErrDuplicate), errors.Is(err, blob.ErrExists):
		return http.StatusConflict
	case errors.Is(err, rentals.ErrPriceUnresolved):
		return http.StatusUnprocessableEntity
	case errors.Is(err, blob.ErrInvalidPath):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error", "fields"}. Server errors keep their
// detail in the log only.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	code := statusOf(err)
	body := map[string]any{"error": err.Error()}
	if fields, ok := validation.As(err); ok {
		body["error"] = "validation failed"
		body["fields"] = fields
	}
	if code == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		body["error"] = "internal error"
	}
	writeJSON(w, code, body)
}
