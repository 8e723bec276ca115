package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var _ Limiter = (*Memory)(nil)

const defaultIdleTTL = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	window   time.Duration
	lastSeen time.Time
}

// expired reports whether b has been idle long enough to be dropped. A bucket
// idle for its whole window is full again, so dropping it loses no state.
func (b *bucket) expired(now time.Time, idleTTL time.Duration) bool {
	return now.Sub(b.lastSeen) > max(idleTTL, b.window)
}

// Memory is a token bucket per key and rule, refilled evenly over the
// window. Buckets unused for the idle TTL, or for their rule's window when
// that is longer, are dropped. Limits are per process.
type Memory struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewMemory(idleTTL time.Duration) *Memory {
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}

	return &Memory{
		buckets:   make(map[string]*bucket),
		idleTTL:   idleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string, rule Rule) (bool, error) {
	if !rule.valid() {
		return true, nil
	}

	now := m.now()
	id := key + "|" + rule.String()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) > m.idleTTL {
		m.sweep(now)
	}

	b, ok := m.buckets[id]
	if !ok {
		every := rate.Every(rule.Window / time.Duration(rule.Limit))
		b = &bucket{limiter: rate.NewLimiter(every, rule.Limit), window: rule.Window}
		m.buckets[id] = b
	}

	b.lastSeen = now

	return b.limiter.AllowN(now, 1), nil
}

// Len is the number of live buckets.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.buckets)
}

func (m *Memory) sweep(now time.Time) {
	for id, b := range m.buckets {
		if b.expired(now, m.idleTTL) {
			delete(m.buckets, id)
		}
	}

	m.lastSweep = now
}
