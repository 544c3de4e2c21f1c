package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler returns nil once the message is processed. An error asks for a retry
// (see Consumer.Attempts).
type Handler func(ctx context.Context, m kafka.Message) error

// Defaults for Consumer.Attempts and Consumer.Backoff.
const (
	DefaultAttempts = 3
	DefaultBackoff  = 200 * time.Millisecond
)

type Consumer struct {
	r       *kafka.Reader
	workers int
	log     *zap.Logger

	// Attempts bounds the calls per message. Later offsets on the partition
	// are committed past a failed message, so it is retried here or not at all.
	Attempts int
	// Backoff is the wait before attempt n+1, multiplied by n.
	Backoff time.Duration
}

func NewConsumer(brokers []string, group, topic string, workers int, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, log: log, Attempts: DefaultAttempts, Backoff: DefaultBackoff}
}

// Start dispatches fetched messages to a worker pool and commits each one
// after its handler succeeded or ran out of attempts. It returns nil when ctx ends.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, c.workers*4)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for m := range jobs {
				c.handle(ctx, id, h, m)
			}
		}(i)
	}
	defer wg.Wait()
	defer close(jobs)

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

// handle runs h with retries, then commits. A message that still fails is
// logged and committed so the partition keeps moving; shutdown leaves it
// uncommitted for redelivery.
func (c *Consumer) handle(ctx context.Context, worker int, h Handler, m kafka.Message) {
	if err := c.process(ctx, worker, h, m); err != nil {
		if ctx.Err() != nil {
			return
		}
		c.log.Error("message dropped after retries",
			zap.Int("worker", worker),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.Int("attempts", c.attempts()),
			zap.Error(err))
	}
	if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
		c.log.Error("commit offset", zap.Int64("offset", m.Offset), zap.Error(err))
	}
}

func (c *Consumer) attempts() int {
	if c.Attempts <= 0 {
		return 1
	}
	return c.Attempts
}

// process calls h until it succeeds, attempts run out or ctx ends.
func (c *Consumer) process(ctx context.Context, worker int, h Handler, m kafka.Message) error {
	var err error
	for n := 1; ; n++ {
		if err = h(ctx, m); err == nil {
			return nil
		}
		if n >= c.attempts() {
			return err
		}
		c.log.Warn("handle message, retrying",
			zap.Int("worker", worker),
			zap.Int64("offset", m.Offset),
			zap.Int("attempt", n),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(n) * c.Backoff):
		}
	}
}
