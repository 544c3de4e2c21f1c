package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func Exists(ctx context.Context, rdb redis.Cmdable, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// Store adapts a Redis client to the cache, idempotency and revocation
// interfaces of the domain packages.
type Store struct {
	RDB redis.Cmdable
}

func NewStore(rdb redis.Cmdable) *Store { return &Store{RDB: rdb} }

// Load decodes the JSON value at key into out. A missing key is (false, nil).
func (s *Store) Load(ctx context.Context, key string, out any) (bool, error) {
	b, err := s.RDB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) Store(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.RDB.Set(ctx, key, b, ttl).Err()
}

func (s *Store) Drop(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.RDB.Del(ctx, keys...).Err()
}

// Claim sets key only if absent. It reports false when someone else holds it.
func (s *Store) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.RDB.SetNX(ctx, key, "1", ttl).Result()
}

// Release drops a claim so the caller may retry after a failed attempt.
func (s *Store) Release(ctx context.Context, key string) error {
	return s.RDB.Del(ctx, key).Err()
}

func (s *Store) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.RDB.Set(ctx, fmt.Sprintf(KeySessionRevoked, tokenID), "1", ttl).Err()
}

func (s *Store) Revoked(ctx context.Context, tokenID string) (bool, error) {
	return Exists(ctx, s.RDB, fmt.Sprintf(KeySessionRevoked, tokenID))
}
