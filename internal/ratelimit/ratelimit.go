// Package ratelimit counts requests per key. It sits in front of the HTTP
// handlers and knows nothing about wagers or balances.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Rule allows Limit requests per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

func (r Rule) String() string {
	return fmt.Sprintf("%d/%s", r.Limit, r.Window)
}

func (r Rule) valid() bool {
	return r.Limit > 0 && r.Window > 0
}

// Limiter reports whether one more request under key fits rule.
// Implementations must be safe for concurrent use.
type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (bool, error)
}
