package events

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Emitter publishes transaction events after the store write succeeded.
// Emitting never fails the caller.
type Emitter interface {
	Emit(ctx context.Context, eventType string, p TransactionPayload)
}

type Nop struct{}

func (Nop) Emit(context.Context, string, TransactionPayload) {}

// Publisher is the subset of the kafka producer used here.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// KafkaEmitter wraps payloads in an Envelope and hands them to a producer.
type KafkaEmitter struct {
	Producer Publisher
	Service  string
	Log      *zap.Logger
}

func (k *KafkaEmitter) Emit(ctx context.Context, eventType string, p TransactionPayload) {
	env, err := NewEnvelope(ctx, k.Service, eventType, p)
	if err != nil {
		k.Log.Error("encode event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		k.Log.Error("encode envelope", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	k.Producer.Publish(PartitionKey(p.VehicleID), value,
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(env.EventVersion))},
	)
}

func NewEnvelope(ctx context.Context, producer, eventType string, p TransactionPayload) (Envelope, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: p.TransactionID,
		Payload:       b,
	}, nil
}

// Recorder keeps emitted events in memory. Used by tests and the memory backend.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
}

type Recorded struct {
	Type    string
	Payload TransactionPayload
}

func (r *Recorder) Emit(_ context.Context, eventType string, p TransactionPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Recorded{Type: eventType, Payload: p})
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
