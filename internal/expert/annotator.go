package expert

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/examsift/examsift/internal/cache"
	"github.com/examsift/examsift/internal/model"
	"github.com/examsift/examsift/internal/worker"
)

// Stats summarizes one annotation run. Annotated includes cache hits;
// a question counts as Failed only after every attempt was exhausted.
type Stats struct {
	Annotated int
	Failed    int
	CacheHits int
}

// Annotator runs a provider over a batch of questions, writing each proposed
// answer onto its question in place. Calls share one rate budget per provider
// and successful responses are cached by question content.
type Annotator struct {
	provider Provider
	limiter  *worker.Limiter
	cache    cache.Cache
	logger   *slog.Logger

	model     string
	maxTokens int
	cacheTTL  time.Duration
	workers   int
	attempts  int
	backoff   float64
	baseDelay time.Duration
}

// NewAnnotator wires a provider to the run's rate-limiting and cache
// settings. A nil provider yields an annotator whose AnnotateAll is a no-op.
func NewAnnotator(provider Provider, cfg *model.Config, logger *slog.Logger) *Annotator {
	var store cache.Cache
	if cfg.LLM.CacheEnabled {
		store = cache.NewLayeredCache(time.Hour, cfg.LLM.CacheDir, cfg.LLM.CacheTTL())
	}

	rl := cfg.RateLimiting
	workers := rl.Workers
	if workers <= 0 {
		workers = 4
	}
	attempts := rl.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := rl.BackoffFactor
	if backoff < 1 {
		backoff = 2
	}

	return &Annotator{
		provider:  provider,
		limiter:   worker.NewLimiter(float64(rl.RequestsPerMinute), rl.BurstSize),
		cache:     store,
		logger:    logger,
		model:     cfg.LLM.Model,
		maxTokens: cfg.LLM.MaxTokens,
		cacheTTL:  cfg.LLM.CacheTTL(),
		workers:   workers,
		attempts:  attempts,
		backoff:   backoff,
		baseDelay: time.Second,
	}
}

// AnnotateAll annotates every question in the batch and returns run totals.
// Each job mutates only its own question, so the batch needs no locking.
// Cancelling ctx tears the pool down; questions still queued at that point
// are abandoned and appear in neither Annotated nor Failed.
func (a *Annotator) AnnotateAll(ctx context.Context, questions []*model.Question) Stats {
	if a.provider == nil || len(questions) == 0 {
		return Stats{}
	}

	a.logger.Info("annotating questions",
		"provider", a.provider.Name(), "count", len(questions), "workers", a.workers)

	// The whole batch is submitted before Wait, so the queue must hold it.
	pool := worker.NewPool(a.workers, len(questions))
	pool.Start()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()

	for _, q := range questions {
		pool.Submit(&annotateJob{annotator: a, question: q})
	}

	var stats Stats
	for _, result := range pool.Wait() {
		r := result.(*annotateResult)
		switch {
		case r.err != nil:
			a.logger.Warn("annotation failed", "question", r.questionID, "error", r.err)
			stats.Failed++
		case r.cacheHit:
			stats.CacheHits++
			stats.Annotated++
		default:
			stats.Annotated++
		}
	}
	close(done)

	a.logger.Info("annotation complete",
		"annotated", stats.Annotated, "cache_hits", stats.CacheHits, "failed", stats.Failed)
	return stats
}

// annotateJob answers one question.
type annotateJob struct {
	annotator *Annotator
	question  *model.Question
}

// annotateResult reports one question's outcome.
type annotateResult struct {
	questionID string
	cacheHit   bool
	err        error
}

// GetError returns the error from the annotation result
func (r *annotateResult) GetError() error {
	return r.err
}

// Execute answers the job's question: cache first, then the provider with
// retries. On success the answer lands on the question and in the cache.
func (j *annotateJob) Execute(ctx context.Context) worker.Result {
	a := j.annotator
	q := j.question

	key := cache.AnnotationKey(a.provider.Name(), a.model, q)
	if a.cache != nil {
		if data, ok := a.cache.Get(key); ok {
			var cached model.AnnotationResult
			if err := json.Unmarshal(data, &cached); err == nil {
				q.ClaudeAnswer = cached.Answer
				q.ClaudeReasoning = cached.Reasoning
				return &annotateResult{questionID: q.ID, cacheHit: true}
			}
			// unreadable entry: drop it and ask the provider again
			_ = a.cache.Delete(key)
		}
	}

	var lastErr error
	for attempt := 0; attempt < a.attempts; attempt++ {
		if attempt > 0 {
			delay := a.retryDelay(attempt, lastErr)
			a.logger.Warn("retrying annotation",
				"question", q.ID, "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return &annotateResult{questionID: q.ID, err: ctx.Err()}
			}
		}

		if err := a.limiter.Wait(ctx, a.provider.Name()); err != nil {
			return &annotateResult{questionID: q.ID, err: err}
		}

		resp, err := a.provider.Annotate(ctx, AnnotateRequest{
			Question:  q,
			Model:     a.model,
			MaxTokens: a.maxTokens,
		})
		if err != nil {
			lastErr = err
			continue
		}

		q.ClaudeAnswer = resp.Answer
		q.ClaudeReasoning = resp.Reasoning

		if a.cache != nil {
			data, merr := json.Marshal(model.AnnotationResult{
				Answer:     resp.Answer,
				Reasoning:  resp.Reasoning,
				Confidence: resp.Confidence,
			})
			if merr == nil {
				_ = a.cache.Set(key, data, a.cacheTTL)
			}
		}
		return &annotateResult{questionID: q.ID}
	}

	return &annotateResult{questionID: q.ID, err: fmt.Errorf("annotate %s: %w", q.ID, lastErr)}
}

// retryDelay grows exponentially per attempt, with rate-limit errors
// backing off five times harder.
func (a *Annotator) retryDelay(attempt int, err error) time.Duration {
	delay := time.Duration(float64(a.baseDelay) * math.Pow(a.backoff, float64(attempt-1)))
	if isRateLimitError(err) {
		delay *= 5
	}
	return delay
}

// isRateLimitError checks error strings for provider throttling
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "too many requests")
}
