package rentals

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("rental not found")
	ErrIllegalTransition = errors.New("illegal rental status transition")
	// ErrPriceUnresolved aborts an activation whose total cannot be derived.
	ErrPriceUnresolved = errors.New("rental price cannot be derived")
	// ErrStale means the rental changed status between read and write.
	ErrStale = errors.New("rental status changed concurrently")
)

type VehicleSummary struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type ProfileSummary struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type Rental struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	VehicleID  string    `json:"vehicle_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	TotalPrice int64     `json:"total_price"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`

	Vehicle *VehicleSummary `json:"vehicle"`
	Profile *ProfileSummary `json:"profile"`
}

// ListFilter narrows List; empty fields match everything.
type ListFilter struct {
	UserID    string
	VehicleID string
}
