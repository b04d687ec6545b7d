// Package ratelimit counts attempts per key over sliding windows.
package ratelimit

import (
	"context"
	"time"
)

// Limit caps attempts per window. A zero field disables that window.
type Limit struct {
	PerMinute int
	PerHour   int
}

func (l Limit) windows() []window {
	return []window{
		{duration: time.Minute, max: l.PerMinute},
		{duration: time.Hour, max: l.PerHour},
	}
}

// Enabled reports whether any window is limited.
func (l Limit) Enabled() bool {
	return l.PerMinute > 0 || l.PerHour > 0
}

type window struct {
	duration time.Duration
	max      int
}

type RateLimiter interface {
	// Allow records one attempt for key and reports whether it fits the limit.
	// Denied attempts are recorded too.
	Allow(ctx context.Context, key string, limit Limit) (bool, error)
	Reset(ctx context.Context, key string) error
}
