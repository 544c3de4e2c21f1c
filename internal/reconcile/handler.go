package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/events"
	"github.com/ariefcatur/go-vehicle-market/internal/kafka"
	"github.com/ariefcatur/go-vehicle-market/internal/redisx"
)

// Dedup claims event ids so redelivered events are applied once.
type Dedup interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Handler applies transaction events: each one re-checks the vehicle it names.
type Handler struct {
	R       *Reconciler
	Dedup   Dedup
	Service string
	Log     *zap.Logger
}

func (h *Handler) Handle(ctx context.Context, m kafkago.Message) error {
	env, err := kafka.Decode[events.Envelope](m.Value)
	if err != nil {
		// poison message; commit and move on
		h.Log.Error("bad envelope", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	p, err := kafka.Decode[events.TransactionPayload](env.Payload)
	if err != nil {
		h.Log.Error("bad payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}
	if p.VehicleID == "" {
		return nil
	}

	key := fmt.Sprintf(redisx.KeyDedup, h.Service, env.EventID)
	if h.Dedup != nil {
		ok, err := h.Dedup.Claim(ctx, key, redisx.TTLDedup)
		if err != nil {
			return fmt.Errorf("dedup claim: %w", err)
		}
		if !ok {
			return nil
		}
	}

	fixed, err := h.R.Vehicle(ctx, p.VehicleID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil
	}
	if err != nil {
		if h.Dedup != nil {
			_ = h.Dedup.Release(ctx, key)
		}
		return err
	}
	if fixed != nil {
		h.Log.Error("vehicle status diverged from transactions",
			zap.String("event_type", env.EventType),
			zap.String("transaction_id", p.TransactionID),
			zap.String("vehicle_id", p.VehicleID),
			zap.String("expected", string(fixed.Expected)),
			zap.String("was", string(fixed.Current)))
	}
	return nil
}
