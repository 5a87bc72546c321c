// Package identity tracks which record identities have already been
// admitted during an ingestion run.
package identity

import "sync"

// Tracker is a grow-only set of identity keys.
// It lives for one run and is never pruned. Safe for concurrent use.
type Tracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// Seen reports whether key has been marked.
func (t *Tracker) Seen(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.seen[key]
	return ok
}

// Mark records key as seen. Marking an existing key is a no-op.
func (t *Tracker) Mark(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen[key] = struct{}{}
}

// MarkIfUnseen marks key and reports true if it was not already seen.
// It reports false, leaving the set unchanged, otherwise.
func (t *Tracker) MarkIfUnseen(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seen[key]; ok {
		return false
	}
	t.seen[key] = struct{}{}
	return true
}

// Len returns the number of distinct keys marked.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
