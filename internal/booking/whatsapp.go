package booking

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/pricing"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

const waBase = "https://wa.me/"

type RentalContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}

type PurchaseContact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func requireContact(name, phone string) error {
	errs := validation.Errors{}
	if strings.TrimSpace(name) == "" {
		errs.Add("name", "Mohon lengkapi nama dan nomor HP Anda.")
	}
	if strings.TrimSpace(phone) == "" {
		errs.Add("phone", "Mohon lengkapi nama dan nomor HP Anda.")
	}
	return errs.Err()
}

// RentalMessage renders the rental inquiry sent to the seller.
func RentalMessage(v catalog.Vehicle, c RentalContact, start, end time.Time) string {
	q := QuoteFor(v, start, end)
	var note string
	if c.Note != "" {
		note = "📝 Catatan: " + c.Note
	}
	return joinLines(
		fmt.Sprintf("Halo %s,", v.Seller.Name),
		"",
		"Saya ingin menyewa kendaraan berikut:",
		fmt.Sprintf("🚗 *%s* (%d)", v.Name, v.Year),
		fmt.Sprintf("💰 Harga sewa: %s/hari", pricing.FormatCurrency(q.DailyRate)),
		fmt.Sprintf("📅 Tanggal: %s - %s", pricing.FormatDateID(start), pricing.FormatDateID(end)),
		fmt.Sprintf("💵 Estimasi total: %s", pricing.FormatCurrency(q.Total)),
		"",
		"Data Pemesan:",
		"👤 Nama: "+c.Name,
		"📱 HP: "+c.Phone,
		note,
		"",
		"Mohon konfirmasi ketersediaannya. Terima kasih!",
	)
}

// PurchaseMessage renders the purchase inquiry sent to the seller.
func PurchaseMessage(v catalog.Vehicle, c PurchaseContact) string {
	var msg string
	if c.Message != "" {
		msg = "💬 Pesan: " + c.Message
	}
	return joinLines(
		fmt.Sprintf("Halo %s,", v.Seller.Name),
		"",
		"Saya tertarik untuk membeli kendaraan berikut:",
		fmt.Sprintf("🚗 *%s* (%d)", v.Name, v.Year),
		fmt.Sprintf("💰 Harga: %s", pricing.FormatCurrency(v.PriceNumeric)),
		"",
		"Data Calon Pembeli:",
		"👤 Nama: "+c.Name,
		"📱 HP: "+c.Phone,
		msg,
		"",
		"Apakah kendaraan masih tersedia? Terima kasih!",
	)
}

// RentalLink validates the contact and dates and returns the wa.me deep link.
func RentalLink(v catalog.Vehicle, c RentalContact, start, end time.Time) (string, error) {
	if err := requireContact(c.Name, c.Phone); err != nil {
		return "", err
	}
	if start.IsZero() || end.IsZero() {
		return "", validation.Errors{}.Add("dates", "Mohon pilih tanggal sewa.")
	}
	return waLink(v.Seller.Phone, RentalMessage(v, c, start, end)), nil
}

func PurchaseLink(v catalog.Vehicle, c PurchaseContact) (string, error) {
	if err := requireContact(c.Name, c.Phone); err != nil {
		return "", err
	}
	return waLink(v.Seller.Phone, PurchaseMessage(v, c)), nil
}

// joinLines drops empty lines, blank separators included.
func joinLines(lines ...string) string {
	kept := lines[:0]
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func waLink(phone, text string) string {
	return waBase + phone + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
