// Package pricing holds the currency and day-count rules shared by the
// catalog, booking and rental code.
package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ContactAdmin is shown instead of a price when no usable amount exists.
const ContactAdmin = "Hubungi Admin"

const DateLayout = "2006-01-02"

var (
	idPrinter = message.NewPrinter(language.MustParse("id-ID"))
	idrSymbol = idPrinter.Sprint(currency.Symbol(currency.IDR))
)

// FormatCurrency renders v as whole rupiah in the Indonesian locale.
// Nil, non-numeric, NaN and zero values all yield ContactAdmin.
func FormatCurrency(v any) string {
	n, ok := toFloat(v)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return ContactAdmin
	}
	r := int64(math.Round(n))
	sign := ""
	if r < 0 {
		sign = "-"
		r = -r
	}
	return sign + idrSymbol + " " + idPrinter.Sprintf("%d", r)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case *int64:
		if x == nil {
			return 0, false
		}
		return float64(*x), true
	case *float64:
		if x == nil {
			return 0, false
		}
		return *x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// DaysBetween counts billable days from a to b on calendar dates,
// rounding partial days up and never returning less than one.
func DaysBetween(a, b time.Time) int {
	d := dateOnly(b).Sub(dateOnly(a))
	days := int(math.Ceil(d.Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// RentalTotal is DaysBetween(start, end) times the daily rate.
func RentalTotal(dailyRate int64, start, end time.Time) int64 {
	return int64(DaysBetween(start, end)) * dailyRate
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the current calendar date in UTC.
func Today(now time.Time) time.Time { return dateOnly(now) }

var idMonths = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// FormatDateID renders t as "02 Jan 2006" with Indonesian month abbreviations.
func FormatDateID(t time.Time) string {
	return fmt.Sprintf("%02d %s %d", t.Day(), idMonths[t.Month()-1], t.Year())
}
