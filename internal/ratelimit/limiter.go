// Package ratelimit guards the external model provider.
//
// Two mechanisms live here. Limiter enforces the provider call quotas (rolling
// per-minute and per-day windows); exceeding it is not an error, the caller
// just takes the rule-based path instead. ClientStore plus Middleware apply a
// per-client token bucket to the HTTP surface itself.
package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	span   time.Duration
	quota  int
	stamps []time.Time
}

// prune drops timestamps that have fallen out of the rolling window.
func (w *window) prune(now time.Time) {
	cutoff := now.Add(-w.span)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}

// Limiter tracks provider calls against rolling quotas. Allow is an atomic
// check-and-record: a call that would exceed either window is denied without
// consuming a slot, so two concurrent calls can never both claim the last one.
type Limiter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows []*window
}

type Option func(*Limiter)

// WithNow overrides the limiter's time source, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter builds a limiter with the standard per-minute and per-day
// windows. A quota of zero or less disables that window.
func NewLimiter(perMinute, perDay int, opts ...Option) *Limiter {
	l := &Limiter{now: time.Now}
	if perMinute > 0 {
		l.windows = append(l.windows, &window{span: time.Minute, quota: perMinute})
	}
	if perDay > 0 {
		l.windows = append(l.windows, &window{span: 24 * time.Hour, quota: perDay})
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether a provider call may proceed now. The current
// timestamp is recorded in every window only when all windows have room.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for _, w := range l.windows {
		w.prune(now)
		if len(w.stamps) >= w.quota {
			return false
		}
	}
	for _, w := range l.windows {
		w.stamps = append(w.stamps, now)
	}
	return true
}

// Remaining returns the residual quota in the per-minute and per-day windows,
// in that order. Missing windows report -1 (unlimited).
func (l *Limiter) Remaining() (perMinute, perDay int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	perMinute, perDay = -1, -1
	now := l.now()
	for _, w := range l.windows {
		w.prune(now)
		left := w.quota - len(w.stamps)
		if left < 0 {
			left = 0
		}
		if w.span == time.Minute {
			perMinute = left
		} else {
			perDay = left
		}
	}
	return perMinute, perDay
}
