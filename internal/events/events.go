package events

import (
	"encoding/json"
	"time"
)

const (
	EventRentalCreated       = "RentalCreated"
	EventRentalStatusChanged = "RentalStatusChanged"
	EventSaleCreated         = "SaleCreated"
	EventSaleStatusChanged   = "SaleStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the Event* constants
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g. "vehicle-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // transaction id
	Payload       json.RawMessage `json:"payload"`
}

// Transaction kinds.
const (
	KindRental = "rental"
	KindSale   = "sale"
)

// TransactionPayload is carried by every rental and sale event. VehicleStatus
// is the vehicle status the store holds after the write.
type TransactionPayload struct {
	Kind          string `json:"kind"`
	TransactionID string `json:"transaction_id"`
	VehicleID     string `json:"vehicle_id"`
	UserID        string `json:"user_id"`
	From          string `json:"from,omitempty"`
	To            string `json:"to"`
	VehicleStatus string `json:"vehicle_status,omitempty"`
	TotalPrice    int64  `json:"total_price,omitempty"`
}
