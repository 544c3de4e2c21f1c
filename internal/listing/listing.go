package listing

import (
	"net/url"
	"strconv"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
)

const (
	DefaultWindow = 24
	WindowStep    = 12
)

// Result is one page of the filtered list.
type Result struct {
	Vehicles     []catalog.Vehicle `json:"vehicles"`
	Total        int               `json:"total"`
	Matched      int               `json:"matched"`
	Visible      int               `json:"visible"`
	Limit        int               `json:"limit"`
	HasMore      bool              `json:"hasMore"`
	NextLimit    int               `json:"nextLimit"`
	PriceMin     int64             `json:"priceMin"`
	PriceCeiling int64             `json:"priceCeiling"`
	Filters      Filters           `json:"filters"`
	Query        string            `json:"query"`
	IsDefault    bool              `json:"isDefault"`
}

// Window returns the visible window size for a requested limit. The window
// starts at DefaultWindow and grows in WindowStep increments; a changed
// filter set resets it.
func Window(limit int, filtersChanged bool) int {
	if filtersChanged || limit <= DefaultWindow {
		return DefaultWindow
	}
	steps := (limit - DefaultWindow + WindowStep - 1) / WindowStep
	return DefaultWindow + steps*WindowStep
}

// Request is a parsed listing request.
type Request struct {
	Filters Filters
	Limit   int
}

// ParseRequest reads filters and the window from q. The prev parameter holds
// the canonical query the client's current window was built for; when it no
// longer matches, the window starts over.
func ParseRequest(q url.Values, ceiling int64) Request {
	f := Parse(q, ceiling)
	limit, _ := strconv.Atoi(q.Get(ParamLimit))
	changed := false
	if q.Has(ParamPrev) {
		prev, err := url.ParseQuery(q.Get(ParamPrev))
		if err != nil {
			changed = true
		} else {
			changed = Parse(prev, ceiling) != f
		}
	}
	return Request{Filters: f, Limit: Window(limit, changed)}
}

// Apply filters the snapshot and slices the visible window.
func Apply(snap catalog.Snapshot, req Request) Result {
	matched := Filter(snap.Vehicles, req.Filters)
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultWindow
	}
	visible := matched
	if len(visible) > limit {
		visible = visible[:limit]
	}
	hasMore := len(matched) > limit
	next := limit
	if hasMore {
		next = limit + WindowStep
	}
	return Result{
		Vehicles:     visible,
		Total:        len(snap.Vehicles),
		Matched:      len(matched),
		Visible:      len(visible),
		Limit:        limit,
		HasMore:      hasMore,
		NextLimit:    next,
		PriceMin:     PriceMin,
		PriceCeiling: snap.PriceCeiling,
		Filters:      req.Filters,
		Query:        req.Filters.Query(snap.PriceCeiling).Encode(),
		IsDefault:    req.Filters.IsDefault(snap.PriceCeiling),
	}
}
