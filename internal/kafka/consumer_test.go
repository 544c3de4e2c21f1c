package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func failing(times int, calls *int) Handler {
	return func(context.Context, kafka.Message) error {
		*calls++
		if *calls <= times {
			return errors.New("store unavailable")
		}
		return nil
	}
}

func TestProcess_RetriesUntilSuccess(t *testing.T) {
	c := &Consumer{log: zap.NewNop(), Attempts: 3}
	calls := 0
	require.NoError(t, c.process(context.Background(), 0, failing(2, &calls), kafka.Message{}))
	require.Equal(t, 3, calls)
}

func TestProcess_GivesUpAfterAttempts(t *testing.T) {
	c := &Consumer{log: zap.NewNop(), Attempts: 3}
	calls := 0
	err := c.process(context.Background(), 0, failing(10, &calls), kafka.Message{})
	require.ErrorContains(t, err, "store unavailable")
	require.Equal(t, 3, calls)

	c.Attempts = 0
	calls = 0
	require.Error(t, c.process(context.Background(), 0, failing(10, &calls), kafka.Message{}))
	require.Equal(t, 1, calls, "zero attempts still calls once")
}

func TestProcess_StopsOnShutdown(t *testing.T) {
	c := &Consumer{log: zap.NewNop(), Attempts: 5, Backoff: DefaultBackoff}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	require.Error(t, c.process(ctx, 0, failing(10, &calls), kafka.Message{}))
	require.Equal(t, 1, calls)
}
