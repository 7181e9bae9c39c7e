package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a per-minute request budget per provider. All workers
// share one token bucket per provider name, so pool concurrency never
// multiplies the request rate.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter with a requests-per-minute budget.
func NewLimiter(requestsPerMinute float64, burst int) *Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 50
	}
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerMinute / 60.0),
		defaultBurst: burst,
	}
}

// Wait blocks until the provider's bucket admits one request.
func (l *Limiter) Wait(ctx context.Context, provider string) error {
	return l.getLimiter(provider).Wait(ctx)
}

// Allow reports whether a request may proceed right now, without waiting.
func (l *Limiter) Allow(provider string) bool {
	return l.getLimiter(provider).Allow()
}

func (l *Limiter) getLimiter(provider string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[provider]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[provider]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[provider] = limiter

	return limiter
}

// SetProviderRate overrides the budget for one provider.
func (l *Limiter) SetProviderRate(provider string, requestsPerMinute float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[provider] = rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), burst)
}

// WaitWithDelay waits for budget clearance plus an additional delay, used
// when a provider has just asked us to back off.
func (l *Limiter) WaitWithDelay(ctx context.Context, provider string, additionalDelay time.Duration) error {
	if err := l.Wait(ctx, provider); err != nil {
		return err
	}

	if additionalDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(additionalDelay):
		}
	}

	return nil
}
