package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// Key is an ordered cache key of strings and integers. Its canonical
// JSON array rendering is the internal key shared between the hot tier
// and the cold store, so keys built from the same components collide
// across processes by construction.
type Key []any

// String returns the canonical JSON array form of the key.
func (k Key) String() string {
	b, err := json.Marshal([]any(k))
	if err != nil {
		// Keys are composed of strings and integers; Marshal does not
		// fail for those. Fall back to a stable textual form.
		return fmt.Sprintf("%v", []any(k))
	}
	return string(b)
}

// ColdStore is an optional second cache tier, typically persistent and
// shared across navigators and processes. All methods may perform I/O.
type ColdStore interface {
	Get(ctx context.Context, key string) (any, bool, error)
	Set(ctx context.Context, key string, value any) error
	Has(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
}

// Tiered combines a bounded hot LRU with an optional cold store.
// Failures of the cold store never reach callers: reads fall back to
// a miss, writes are fire-and-forget, and panics are recovered.
type Tiered[V any] struct {
	hot  *LRU[V]
	cold ColdStore
}

// NewTiered creates a tiered cache. A nil cold store disables the
// second tier.
func NewTiered[V any](capacity int, cold ColdStore) *Tiered[V] {
	return &Tiered[V]{
		hot:  NewLRU[V](capacity),
		cold: cold,
	}
}

// Get returns a hot hit immediately; on miss it consults the cold
// store and promotes any hit into the hot tier.
func (c *Tiered[V]) Get(ctx context.Context, key Key) (V, bool) {
	k := key.String()
	if v, ok := c.hot.Get(k); ok {
		return v, true
	}

	var zero V
	if c.cold == nil {
		return zero, false
	}
	raw, ok := c.coldGet(ctx, k)
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		return zero, false
	}
	c.hot.Set(k, v)
	return v, true
}

// Set writes the hot tier and schedules a non-blocking cold write.
func (c *Tiered[V]) Set(ctx context.Context, key Key, value V) {
	k := key.String()
	c.hot.Set(k, value)
	if c.cold == nil {
		return
	}
	go func() {
		defer func() { _ = recover() }()
		_ = c.cold.Set(context.WithoutCancel(ctx), k, value)
	}()
}

// Has checks the hot tier first, then the cold store.
func (c *Tiered[V]) Has(ctx context.Context, key Key) bool {
	k := key.String()
	if c.hot.Has(k) {
		return true
	}
	if c.cold == nil {
		return false
	}
	ok, err := c.coldHas(ctx, k)
	if err != nil {
		return false
	}
	return ok
}

// Delete removes the key from both tiers and reports whether either
// held it. A cold failure leaves the hot outcome.
func (c *Tiered[V]) Delete(ctx context.Context, key Key) bool {
	k := key.String()
	deleted := c.hot.Delete(k)
	if c.cold == nil {
		return deleted
	}
	coldDeleted, err := c.coldDelete(ctx, k)
	if err != nil {
		return deleted
	}
	return deleted || coldDeleted
}

// Clear empties the hot tier and attempts to clear the cold store.
func (c *Tiered[V]) Clear(ctx context.Context) {
	c.hot.Clear()
	if c.cold == nil {
		return
	}
	func() {
		defer func() { _ = recover() }()
		_ = c.cold.Clear(ctx)
	}()
}

// Len returns the number of hot entries.
func (c *Tiered[V]) Len() int {
	return c.hot.Len()
}

// Stats returns the hot-tier metrics.
func (c *Tiered[V]) Stats() Stats {
	return c.hot.Stats()
}

func (c *Tiered[V]) coldGet(ctx context.Context, key string) (raw any, ok bool) {
	defer func() {
		if recover() != nil {
			raw, ok = nil, false
		}
	}()
	r, found, err := c.cold.Get(ctx, key)
	if err != nil || !found {
		return nil, false
	}
	return r, true
}

func (c *Tiered[V]) coldHas(ctx context.Context, key string) (ok bool, err error) {
	defer func() {
		if recover() != nil {
			ok, err = false, errColdPanic
		}
	}()
	return c.cold.Has(ctx, key)
}

func (c *Tiered[V]) coldDelete(ctx context.Context, key string) (ok bool, err error) {
	defer func() {
		if recover() != nil {
			ok, err = false, errColdPanic
		}
	}()
	return c.cold.Delete(ctx, key)
}

var errColdPanic = fmt.Errorf("cold store panicked")
