// Package checker implements the concurrent domain-availability engine
package checker

import "sync"

// Rotator hands out API credentials round-robin. It is safe for
// concurrent use: the cursor advances under a lock so no two callers
// see the same position before it moves on.
type Rotator struct {
	mu   sync.Mutex
	keys []string
	next int
}

// NewRotator creates a rotator over the given credential pool. An
// empty pool is valid and simply disables the fallback tier.
func NewRotator(keys []string) *Rotator {
	return &Rotator{keys: keys}
}

// Next returns the next credential in insertion order, wrapping around
// the pool. On an empty pool it reports false without blocking.
func (r *Rotator) Next() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.keys) == 0 {
		return "", false
	}
	key := r.keys[r.next]
	r.next = (r.next + 1) % len(r.keys)
	return key, true
}

// Empty reports whether the pool holds no credentials.
func (r *Rotator) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys) == 0
}
