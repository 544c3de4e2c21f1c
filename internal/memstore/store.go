// Package memstore keeps every repository in process memory behind one lock.
// Writes that touch two records (a transaction and its vehicle) happen under
// that lock, so they are atomic the same way the Postgres transactions are.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ariefcatur/go-vehicle-market/internal/accounts"
	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/content"
	"github.com/ariefcatur/go-vehicle-market/internal/redisx"
	"github.com/ariefcatur/go-vehicle-market/internal/rentals"
	"github.com/ariefcatur/go-vehicle-market/internal/sales"
)

type vehicleRec struct {
	row catalog.Row
	seq int64
}

type rentalRec struct {
	r   rentals.Rental
	seq int64
}

type saleRec struct {
	s   sales.Sale
	seq int64
}

type profileRec struct {
	a          accounts.Account
	updatedSeq int64
}

type testimonialRec struct {
	t   content.Testimonial
	seq int64
}

type faqRec struct {
	f   content.FAQ
	seq int64
}

type kvEntry struct {
	val     []byte
	expires time.Time
}

type Store struct {
	mu  sync.Mutex
	seq int64
	Now func() time.Time

	vehicles     map[string]*vehicleRec
	rentals      map[string]*rentalRec
	sales        map[string]*saleRec
	profiles     map[string]*profileRec
	testimonials map[string]*testimonialRec
	faqs         map[string]*faqRec
	kv           map[string]kvEntry
}

func New() *Store {
	return &Store{
		Now:          time.Now,
		vehicles:     map[string]*vehicleRec{},
		rentals:      map[string]*rentalRec{},
		sales:        map[string]*saleRec{},
		profiles:     map[string]*profileRec{},
		testimonials: map[string]*testimonialRec{},
		faqs:         map[string]*faqRec{},
		kv:           map[string]kvEntry{},
	}
}

// next orders records written within the same clock tick.
func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Vehicles() *Vehicles { return &Vehicles{s} }
func (s *Store) Rentals() *Rentals   { return &Rentals{s} }
func (s *Store) Sales() *Sales       { return &Sales{s} }
func (s *Store) Profiles() *Profiles { return &Profiles{s} }
func (s *Store) Content() *Content   { return &Content{s} }

// KV returns the key-value side: cache, idempotency claims, revocations.
func (s *Store) KV() *KV { return &KV{s} }

// KV mirrors redisx.Store in memory with the same expiry semantics.
type KV struct{ s *Store }

func (k *KV) get(key string) (kvEntry, bool) {
	e, ok := k.s.kv[key]
	if !ok {
		return kvEntry{}, false
	}
	if !e.expires.IsZero() && !k.s.Now().Before(e.expires) {
		delete(k.s.kv, key)
		return kvEntry{}, false
	}
	return e, true
}

func (k *KV) set(key string, val []byte, ttl time.Duration) {
	e := kvEntry{val: val}
	if ttl > 0 {
		e.expires = k.s.Now().Add(ttl)
	}
	k.s.kv[key] = e
}

func (k *KV) Load(_ context.Context, key string, out any) (bool, error) {
	k.s.mu.Lock()
	e, ok := k.get(key)
	k.s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(e.val, out)
}

func (k *KV) Store(_ context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	k.set(key, b, ttl)
	return nil
}

func (k *KV) Drop(_ context.Context, keys ...string) error {
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	for _, key := range keys {
		delete(k.s.kv, key)
	}
	return nil
}

func (k *KV) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	if _, ok := k.get(key); ok {
		return false, nil
	}
	k.set(key, []byte("1"), ttl)
	return true, nil
}

func (k *KV) Release(ctx context.Context, key string) error { return k.Drop(ctx, key) }

func (k *KV) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	k.set(fmt.Sprintf(redisx.KeySessionRevoked, tokenID), []byte("1"), ttl)
	return nil
}

func (k *KV) Revoked(_ context.Context, tokenID string) (bool, error) {
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	_, ok := k.get(fmt.Sprintf(redisx.KeySessionRevoked, tokenID))
	return ok, nil
}

var (
	_ catalog.Repository   = (*Vehicles)(nil)
	_ rentals.Repository   = (*Rentals)(nil)
	_ sales.Repository     = (*Sales)(nil)
	_ accounts.Repository  = (*Profiles)(nil)
	_ content.Repository   = (*Content)(nil)
	_ catalog.Cache        = (*KV)(nil)
	_ accounts.Revocations = (*KV)(nil)
)
