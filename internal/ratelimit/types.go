// Package ratelimit enforces a fixed-window cap on login attempts, with an
// in-memory backend and an optional Redis backend.
package ratelimit

import (
	"context"
	"time"
)

// Window is the fixed window applied to login attempts.
const Window = time.Minute

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error)
}
