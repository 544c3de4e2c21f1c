package events

import (
	"context"
	"encoding/json"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capture struct {
	key     []byte
	value   []byte
	headers []kafkago.Header
}

func (c *capture) Publish(key, value []byte, headers ...kafkago.Header) {
	c.key, c.value, c.headers = key, value, headers
}

func TestKafkaEmitter_WrapsPayload(t *testing.T) {
	c := &capture{}
	e := &KafkaEmitter{Producer: c, Service: "vehicle-api", Log: zap.NewNop()}

	e.Emit(context.Background(), EventRentalCreated, TransactionPayload{
		Kind: KindRental, TransactionID: "r1", VehicleID: "v1", UserID: "u1", To: "pending", VehicleStatus: "disewa",
	})

	require.Equal(t, []byte("v1"), c.key)
	require.Equal(t, "x-event-type", c.headers[0].Key)
	require.Equal(t, EventRentalCreated, string(c.headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(c.value, &env))
	require.Equal(t, EventRentalCreated, env.EventType)
	require.Equal(t, "r1", env.CorrelationID)
	require.NotEmpty(t, env.EventID)

	var p TransactionPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	require.Equal(t, "disewa", p.VehicleStatus)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Emit(context.Background(), EventSaleCreated, TransactionPayload{})
	require.Equal(t, []string{EventSaleCreated}, r.Types())
}
