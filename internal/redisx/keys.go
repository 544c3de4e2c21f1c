package redisx

import "time"

const (
	// Available-vehicle snapshot: catalog:available:v1 -> {"vehicles": [...], "priceCeiling": n}
	KeyCatalogAvailable = "catalog:available:v1"

	// Idempotency of booking requests: idem:booking:{user_id}:{key} -> "1"
	KeyIdemBooking = "idem:booking:%s:%s"

	// Revoked session tokens: session:revoked:{token_id} -> "1"
	KeySessionRevoked = "session:revoked:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
