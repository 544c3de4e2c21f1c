package sales

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("sale not found")
	ErrIllegalTransition = errors.New("illegal sale status transition")
	ErrStale             = errors.New("sale status changed concurrently")
)

type VehicleSummary struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type ProfileSummary struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type Sale struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	VehicleID string    `json:"vehicle_id"`
	SalePrice int64     `json:"sale_price"`
	SaleDate  time.Time `json:"sale_date"`
	Status    Status    `json:"status"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Vehicle *VehicleSummary `json:"vehicle"`
	Profile *ProfileSummary `json:"profile"`
}

type ListFilter struct {
	UserID    string
	VehicleID string
}
