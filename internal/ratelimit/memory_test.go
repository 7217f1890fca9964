package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		res, err := limiter.Allow(ctx, "login:a@example.com", 5, now)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("attempt %d should be allowed", i)
		}
		if want := 5 - i - 1; res.Remaining != want {
			t.Fatalf("attempt %d: expected %d remaining, got %d", i, want, res.Remaining)
		}
	}

	res, err := limiter.Allow(ctx, "login:a@example.com", 5, now)
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if res.Allowed {
		t.Fatalf("sixth attempt in the window should be denied")
	}
	if res.Reset.Before(now) {
		t.Fatalf("reset %s must not precede now %s", res.Reset, now)
	}
}

func TestMemoryLimiter_WindowRollover(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 10, 30, 59, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := limiter.Allow(ctx, "k", 3, now); err != nil {
			t.Fatalf("allow: %v", err)
		}
	}
	if res, _ := limiter.Allow(ctx, "k", 3, now); res.Allowed {
		t.Fatalf("expected denial at the limit")
	}

	res, err := limiter.Allow(ctx, "k", 3, now.Add(Window))
	if err != nil {
		t.Fatalf("allow in next window: %v", err)
	}
	if !res.Allowed {
		t.Fatalf("expected the counter to reset in the next window")
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := limiter.Allow(ctx, "a", 1, now); err != nil {
		t.Fatalf("allow a: %v", err)
	}
	if res, _ := limiter.Allow(ctx, "a", 1, now); res.Allowed {
		t.Fatalf("key a should be exhausted")
	}
	if res, _ := limiter.Allow(ctx, "b", 1, now); !res.Allowed {
		t.Fatalf("key b must not share key a's counter")
	}
}

func TestMemoryLimiter_ZeroLimitDisables(t *testing.T) {
	limiter := NewMemoryLimiter()
	for i := 0; i < 10; i++ {
		res, err := limiter.Allow(context.Background(), "k", 0, time.Now())
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("zero limit must disable limiting")
		}
	}
}
