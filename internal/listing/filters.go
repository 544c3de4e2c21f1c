// Package listing derives the filtered, address-addressable vehicle list from
// a catalog snapshot.
package listing

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
)

// Query parameter names.
const (
	ParamSearch       = "search"
	ParamCategory     = "type"
	ParamTransmission = "transmisi"
	ParamMin          = "min"
	ParamMax          = "max"
	ParamLimit        = "limit"
	ParamPrev         = "prev"
)

// All disables the category or transmission filter.
const All = "all"

// allAlias is the legacy spelling of All still found in shared links.
const allAlias = "semua"

// PriceMin is the lower bound of the price filter.
const PriceMin int64 = 0

type Filters struct {
	Search       string `json:"search"`
	Category     string `json:"category"`
	Transmission string `json:"transmission"`
	PriceMin     int64  `json:"priceMin"`
	PriceMax     int64  `json:"priceMax"`
}

// Defaults is the unfiltered state for a dataset with the given ceiling.
func Defaults(ceiling int64) Filters {
	return Filters{Category: All, Transmission: All, PriceMin: PriceMin, PriceMax: ceiling}
}

// IsDefault reports whether f filters nothing for the given ceiling. Bounds
// at or beyond the full range count as unset.
func (f Filters) IsDefault(ceiling int64) bool {
	return f.Search == "" &&
		(f.Category == All || f.Category == "") &&
		(f.Transmission == All || f.Transmission == "") &&
		f.PriceMin <= PriceMin && f.PriceMax >= ceiling
}

// Parse reads filters from query parameters. Unknown categories and
// transmissions read as All; missing, zero or malformed bounds fall back to
// [PriceMin, ceiling].
func Parse(q url.Values, ceiling int64) Filters {
	f := Defaults(ceiling)
	f.Search = q.Get(ParamSearch)
	f.Category = normCategory(q.Get(ParamCategory))
	f.Transmission = normTransmission(q.Get(ParamTransmission))
	if n := parseInt(q.Get(ParamMin)); n != 0 {
		f.PriceMin = n
	}
	if n := parseInt(q.Get(ParamMax)); n != 0 {
		f.PriceMax = n
	}
	return f
}

// Query encodes f, omitting every parameter at its default. A bound at or
// beyond the full range is omitted.
func (f Filters) Query(ceiling int64) url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set(ParamSearch, f.Search)
	}
	if f.Category != All && f.Category != "" {
		q.Set(ParamCategory, f.Category)
	}
	if f.Transmission != All && f.Transmission != "" {
		q.Set(ParamTransmission, f.Transmission)
	}
	if f.PriceMin > PriceMin {
		q.Set(ParamMin, strconv.FormatInt(f.PriceMin, 10))
	}
	if f.PriceMax < ceiling {
		q.Set(ParamMax, strconv.FormatInt(f.PriceMax, 10))
	}
	return q
}

// Set changes one filter parameter and returns the canonical query. Setting
// a parameter to its default removes it.
func Set(q url.Values, key, value string, ceiling int64) url.Values {
	f := Parse(q, ceiling)
	switch key {
	case ParamSearch:
		f.Search = value
	case ParamCategory:
		f.Category = normCategory(value)
	case ParamTransmission:
		f.Transmission = normTransmission(value)
	case ParamMin:
		f.PriceMin = PriceMin
		if n := parseInt(value); n != 0 {
			f.PriceMin = n
		}
	case ParamMax:
		f.PriceMax = ceiling
		if n := parseInt(value); n != 0 {
			f.PriceMax = n
		}
	}
	return f.Query(ceiling)
}

// Reset clears every filter parameter.
func Reset() url.Values { return url.Values{} }

// Match reports whether v passes all four filters.
func Match(v catalog.Vehicle, f Filters) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(v.Name), needle) &&
			!strings.Contains(strings.ToLower(v.Fuel), needle) &&
			!strings.Contains(strings.ToLower(v.Mileage), needle) {
			return false
		}
	}
	if f.Category != All && f.Category != "" && string(v.Type) != f.Category {
		return false
	}
	if f.Transmission != All && f.Transmission != "" && string(v.Transmission) != f.Transmission {
		return false
	}
	return v.PriceNumeric >= f.PriceMin && v.PriceNumeric <= f.PriceMax
}

// Filter keeps the vehicles matching f in their original order.
func Filter(vs []catalog.Vehicle, f Filters) []catalog.Vehicle {
	out := make([]catalog.Vehicle, 0, len(vs))
	for _, v := range vs {
		if Match(v, f) {
			out = append(out, v)
		}
	}
	return out
}

func normCategory(s string) string {
	switch catalog.Category(s) {
	case catalog.Car, catalog.Motorcycle:
		return s
	}
	return All
}

func normTransmission(s string) string {
	switch catalog.Transmission(s) {
	case catalog.Manual, catalog.Automatic, catalog.CVT:
		return s
	}
	return All
}

func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		switch {
		case ferr != nil && !errors.Is(ferr, strconv.ErrRange), math.IsNaN(f):
			return 0
		case f >= math.MaxInt64:
			return math.MaxInt64
		case f <= math.MinInt64:
			return math.MinInt64
		}
		return int64(f)
	}
	return n
}
