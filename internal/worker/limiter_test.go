package worker

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(120, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}
	if limiter.defaultRate != rate.Limit(2) {
		t.Errorf("expected 120 rpm to become 2 rps, got %v", limiter.defaultRate)
	}

	l2 := NewLimiter(120, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}

	l3 := NewLimiter(0, 5)
	if l3.defaultRate != rate.Limit(50.0/60.0) {
		t.Errorf("expected default 50 rpm for zero input, got %v", l3.defaultRate)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(6000, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "anthropic"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(6000, 1)
	ctx := context.Background()

	start := time.Now()
	if err := limiter.WaitWithDelay(ctx, "openai", 50*time.Millisecond); err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", elapsed)
	}
}

func TestLimiter_BudgetIsPerProvider(t *testing.T) {
	// 60 rpm, burst 1: one token, then a one-second refill
	limiter := NewLimiter(60, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}
	if limiter.Allow("openai") {
		t.Error("expected exhausted bucket for openai")
	}
	if !limiter.Allow("anthropic") {
		t.Error("expected a fresh bucket for a different provider")
	}
}

func TestLimiter_SetProviderRate(t *testing.T) {
	limiter := NewLimiter(600, 10)
	limiter.SetProviderRate("ollama", 1, 1)

	if !limiter.Allow("ollama") {
		t.Error("first request should pass on the burst token")
	}
	if limiter.Allow("ollama") {
		t.Error("second request should be over budget")
	}
	if !limiter.Allow("openai") {
		t.Error("other providers keep the default budget")
	}
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	limiter := NewLimiter(1, 1) // one request a minute
	ctx := context.Background()

	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	cancelled, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(cancelled, "openai"); err == nil {
		t.Error("expected a context error while over budget")
	}
}
