// Package cache is the fingerprint-keyed read-through store in front of the
// provider chain. Entries expire lazily; an opportunistic sweep keeps memory
// bounded but is not needed for correctness.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"quoteflow/internal/model"
)

// Payload is the cached value: the successful part of a FetchOutcome.
// Values are immutable once stored, so readers never copy defensively.
type Payload struct {
	Quote   *model.Quote
	Candles []model.Candle
	Source  string
}

type entry struct {
	payload   Payload
	expiresAt time.Time
}

// Store is a TTL map guarded by a single mutex; all operations are short
// read-modify-write sections.
type Store struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

// NewStore returns an empty cache.
func NewStore() *Store {
	return &Store{items: make(map[string]entry), now: time.Now}
}

// Fingerprint derives the deterministic cache key for a request. Historical
// requests fold the interval and date range into the key so that different
// ranges never collide.
func Fingerprint(symbol string, class model.AssetClass, mode model.Mode, params *model.HistoricalParams) string {
	key := fmt.Sprintf("%s|%s|%s", strings.ToUpper(symbol), class, mode)
	if params != nil {
		key += fmt.Sprintf("|%s|%s|%s",
			params.Interval,
			params.From.UTC().Format("2006-01-02"),
			params.To.UTC().Format("2006-01-02"))
	}
	return key
}

// Get returns the payload for the fingerprint, or false when absent or
// expired. A miss is silent, never an error.
func (s *Store) Get(fingerprint string) (Payload, bool) {
	s.mu.RLock()
	e, ok := s.items[fingerprint]
	s.mu.RUnlock()
	if !ok || s.now().After(e.expiresAt) {
		return Payload{}, false
	}
	return e.payload, true
}

// Put stores the payload under the fingerprint for the given TTL. Callers
// only write after a verified provider success.
func (s *Store) Put(fingerprint string, payload Payload, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.items[fingerprint] = entry{payload: payload, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// sweep removes expired entries.
func (s *Store) sweep() {
	now := s.now()
	s.mu.Lock()
	for k, e := range s.items {
		if now.After(e.expiresAt) {
			delete(s.items, k)
		}
	}
	s.mu.Unlock()
}

// StartSweeper runs a periodic sweep until the context is cancelled.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}
