package httpx

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/blob"
	"github.com/ariefcatur/go-vehicle-market/internal/booking"
	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/listing"
	"github.com/ariefcatur/go-vehicle-market/internal/pricing"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

// listVehicles serves the filtered, windowed catalog. A failed load degrades
// to an empty list.
func (a *API) listVehicles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	snap, err := a.Catalog.Snapshot(ctx)
	if err != nil {
		a.Log.Warn("load catalog snapshot", zap.Error(err))
		snap = catalog.NewSnapshot(nil, time.Now().UTC())
	}
	req := listing.ParseRequest(r.URL.Query(), snap.PriceCeiling)
	writeJSON(w, http.StatusOK, listing.Apply(snap, req))
}

func (a *API) getVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := a.Catalog.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// dateRange reads optional YYYY-MM-DD parameters.
func dateRange(startRaw, endRaw string) (start, end time.Time, err error) {
	errs := validation.Errors{}
	if startRaw != "" {
		if start, err = pricing.ParseDate(startRaw); err != nil {
			errs.Add("start", err.Error())
		}
	}
	if endRaw != "" {
		if end, err = pricing.ParseDate(endRaw); err != nil {
			errs.Add("end", err.Error())
		}
	}
	return start, end, errs.Err()
}

func (a *API) quote(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	q, err := a.Booking.Quote(r.Context(), chi.URLParam(r, "id"), start, end)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type rentalLinkReq struct {
	booking.RentalContact
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (a *API) rentalLink(w http.ResponseWriter, r *http.Request) {
	var req rentalLinkReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	start, end, err := dateRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	link, err := a.Booking.RentalLink(r.Context(), chi.URLParam(r, "id"), req.RentalContact, start, end)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link, "message": "Mengarahkan ke WhatsApp..."})
}

func (a *API) purchaseLink(w http.ResponseWriter, r *http.Request) {
	var req booking.PurchaseContact
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	link, err := a.Booking.PurchaseLink(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link, "message": "Mengarahkan ke WhatsApp..."})
}

func (a *API) adminVehicles(w http.ResponseWriter, r *http.Request) {
	vs, err := a.Catalog.GetAll(r.Context())
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

// vehicleForm reads a vehicle body, either plain JSON or a multipart form
// with the JSON in "data", the primary picture in "image" and extra pictures
// in "gallery".
func vehicleForm(r *http.Request, into any) (*blob.File, []blob.File, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return nil, nil, noop, decodeJSON(r, into)
	}
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return nil, nil, noop, validation.Errors{}.Add("body", "invalid multipart form")
	}
	if err := json.Unmarshal([]byte(r.FormValue("data")), into); err != nil {
		return nil, nil, noop, validation.Errors{}.Add("data", "invalid json: "+err.Error())
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	open := func(h *multipart.FileHeader) (blob.File, error) {
		f, err := h.Open()
		if err != nil {
			return blob.File{}, err
		}
		opened = append(opened, f)
		return blob.File{Name: h.Filename, ContentType: h.Header.Get("Content-Type"), Body: f}, nil
	}

	var image *blob.File
	if hs := r.MultipartForm.File["image"]; len(hs) > 0 {
		f, err := open(hs[0])
		if err != nil {
			closeAll()
			return nil, nil, noop, err
		}
		image = &f
	}
	var gallery []blob.File
	for _, h := range r.MultipartForm.File["gallery"] {
		f, err := open(h)
		if err != nil {
			closeAll()
			return nil, nil, noop, err
		}
		gallery = append(gallery, f)
	}
	return image, gallery, closeAll, nil
}

func (a *API) createVehicle(w http.ResponseWriter, r *http.Request) {
	var v catalog.Vehicle
	image, gallery, done, err := vehicleForm(r, &v)
	defer done()
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	out, err := a.Catalog.Add(r.Context(), v, image, gallery)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a *API) updateVehicle(w http.ResponseWriter, r *http.Request) {
	var p catalog.Patch
	image, gallery, done, err := vehicleForm(r, &p)
	defer done()
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	out, err := a.Catalog.Update(r.Context(), chi.URLParam(r, "id"), p, image, gallery)
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) deleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := a.Catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Kendaraan berhasil dihapus.")
}

func (a *API) setVehicleStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status catalog.Status `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	if err := a.Catalog.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Status kendaraan diperbarui.")
}

func (a *API) uploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, r, a.Log, validation.Errors{}.Add("file", "multipart form required"))
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, a.Log, validation.Errors{}.Add("file", "is required"))
		return
	}
	defer f.Close()
	url, err := a.Catalog.UploadImage(r.Context(), blob.File{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Body:        f,
	})
	if err != nil {
		writeError(w, r, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
