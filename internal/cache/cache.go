// Package cache provides the prompt-fingerprinted result cache.
//
// Entries are stored as opaque strings (the caller marshals its result type)
// so the cache has no dependency on the analysis layer. Two stores implement
// the same interface: an in-memory map with lazy TTL expiry, and a Redis
// store that delegates expiry to the server. The in-memory store is the
// default; Redis is opt-in for deployments that already run one.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"promptly/internal/version"
)

const keyPrefix = "promptcache"

// Fingerprint computes the cache key for a prompt. The prompt is normalized
// first (lowercased, whitespace collapsed) so prompts that differ only in
// case or spacing share one entry. The key carries component versions, so
// heuristic or prompt-template changes invalidate old entries automatically.
func Fingerprint(prompt string) string {
	norm := strings.ToLower(strings.TrimSpace(prompt))
	norm = strings.Join(strings.Fields(norm), " ")
	return version.CacheKey(keyPrefix, norm)
}

// Store is the storage contract shared by the memory and Redis backends.
type Store interface {
	// Get returns the cached value for key, or false when the key is
	// absent or expired.
	Get(ctx context.Context, key string) (string, bool)
	// Set stores val under key, stamped with the current time.
	Set(ctx context.Context, key, val string)
	// Len reports how many live entries the store currently holds.
	Len() int
}

type memoryEntry struct {
	val       string
	createdAt time.Time
}

// MemoryStore is a process-local Store guarded by a mutex. There is no size
// bound: the service caches one entry per distinct prompt for a single
// session, and everything resets on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithClock overrides the store's time source, for deterministic tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements Store. Expiry is checked inline: a stale entry is removed
// and reported as a miss, so readers never observe values past their TTL.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if s.now().Sub(ent.createdAt) >= s.ttl {
		delete(s.entries, key)
		return "", false
	}
	return ent.val, true
}

// Set implements Store. Writing an existing key refreshes its timestamp.
func (s *MemoryStore) Set(_ context.Context, key, val string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{val: val, createdAt: s.now()}
}

// Len implements Store. Expired-but-unvisited entries still count; they are
// only reaped when looked up.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
