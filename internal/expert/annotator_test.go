package expert

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/examsift/examsift/internal/cache"
	"github.com/examsift/examsift/internal/model"
)

// mockProvider returns a canned response after an optional number of failures.
type mockProvider struct {
	mu               sync.Mutex
	calls            int
	failures         int
	failErr          error
	response         AnnotateResponse
	blockUntilCancel bool
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) IsAvailable(ctx context.Context) bool { return true }

func (m *mockProvider) Annotate(ctx context.Context, req AnnotateRequest) (*AnnotateResponse, error) {
	if m.blockUntilCancel {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failures {
		return nil, m.failErr
	}
	resp := m.response
	return &resp, nil
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestAnnotator(p Provider) *Annotator {
	cfg := model.DefaultConfig()
	cfg.LLM.CacheEnabled = false
	cfg.RateLimiting.RequestsPerMinute = 6000
	cfg.RateLimiting.BurstSize = 100

	a := NewAnnotator(p, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.baseDelay = time.Millisecond
	return a
}

func testBatch(n int) []*model.Question {
	questions := make([]*model.Question, n)
	for i := range questions {
		q := testQuestion()
		q.ID = q.ID + "_" + string(rune('a'+i))
		q.Description = q.Description + " Variant " + string(rune('a'+i)) + "."
		questions[i] = q
	}
	return questions
}

func TestAnnotator_AnnotateAll(t *testing.T) {
	mock := &mockProvider{
		response: AnnotateResponse{Answer: "B", Reasoning: "Coldline is cheapest.", Confidence: 0.8},
	}
	annotator := newTestAnnotator(mock)

	questions := testBatch(3)
	stats := annotator.AnnotateAll(context.Background(), questions)

	if stats.Annotated != 3 {
		t.Errorf("Expected 3 annotated, got %d", stats.Annotated)
	}
	if stats.Failed != 0 {
		t.Errorf("Expected 0 failed, got %d", stats.Failed)
	}
	if stats.CacheHits != 0 {
		t.Errorf("Expected 0 cache hits, got %d", stats.CacheHits)
	}
	for _, q := range questions {
		if q.ClaudeAnswer != "B" {
			t.Errorf("Question %s: expected answer B, got %q", q.ID, q.ClaudeAnswer)
		}
		if q.ClaudeReasoning == "" {
			t.Errorf("Question %s: expected reasoning to be set", q.ID)
		}
	}
}

func TestAnnotator_NoProvider(t *testing.T) {
	annotator := newTestAnnotator(nil)

	q := testQuestion()
	stats := annotator.AnnotateAll(context.Background(), []*model.Question{q})

	if stats != (Stats{}) {
		t.Errorf("Expected zero stats without a provider, got %+v", stats)
	}
	if q.ClaudeAnswer != "" {
		t.Errorf("Expected untouched question, got answer %q", q.ClaudeAnswer)
	}
}

func TestAnnotator_EmptyBatch(t *testing.T) {
	mock := &mockProvider{response: AnnotateResponse{Answer: "A"}}
	annotator := newTestAnnotator(mock)

	stats := annotator.AnnotateAll(context.Background(), nil)

	if stats != (Stats{}) {
		t.Errorf("Expected zero stats for empty batch, got %+v", stats)
	}
	if mock.callCount() != 0 {
		t.Errorf("Expected no provider calls, got %d", mock.callCount())
	}
}

func TestAnnotator_RetriesTransientFailures(t *testing.T) {
	mock := &mockProvider{
		failures: 2,
		failErr:  errors.New("HTTP 500 server error"),
		response: AnnotateResponse{Answer: "C", Reasoning: "Third try."},
	}
	annotator := newTestAnnotator(mock)

	q := testQuestion()
	stats := annotator.AnnotateAll(context.Background(), []*model.Question{q})

	if stats.Annotated != 1 || stats.Failed != 0 {
		t.Errorf("Expected recovery after retries, got %+v", stats)
	}
	if mock.callCount() != 3 {
		t.Errorf("Expected 3 provider calls, got %d", mock.callCount())
	}
	if q.ClaudeAnswer != "C" {
		t.Errorf("Expected answer C, got %q", q.ClaudeAnswer)
	}
}

func TestAnnotator_FailsAfterAttemptsExhausted(t *testing.T) {
	mock := &mockProvider{
		failures: 10,
		failErr:  errors.New("HTTP 503 unavailable"),
	}
	annotator := newTestAnnotator(mock)

	q := testQuestion()
	stats := annotator.AnnotateAll(context.Background(), []*model.Question{q})

	if stats.Failed != 1 || stats.Annotated != 0 {
		t.Errorf("Expected 1 failure, got %+v", stats)
	}
	if mock.callCount() != annotator.attempts {
		t.Errorf("Expected %d provider calls, got %d", annotator.attempts, mock.callCount())
	}
	if q.ClaudeAnswer != "" {
		t.Errorf("Expected no answer on failure, got %q", q.ClaudeAnswer)
	}
}

func TestAnnotator_CacheRoundTrip(t *testing.T) {
	mock := &mockProvider{
		response: AnnotateResponse{Answer: "B", Reasoning: "Cached.", Confidence: 0.9},
	}
	annotator := newTestAnnotator(mock)
	annotator.cache = cache.NewMemoryCache(time.Minute, time.Minute)

	q := testQuestion()

	first := annotator.AnnotateAll(context.Background(), []*model.Question{q})
	if first.Annotated != 1 || first.CacheHits != 0 {
		t.Fatalf("Unexpected first run stats: %+v", first)
	}
	if mock.callCount() != 1 {
		t.Fatalf("Expected 1 provider call, got %d", mock.callCount())
	}

	// A second run over the same content must come from the cache
	q.ClaudeAnswer = ""
	q.ClaudeReasoning = ""

	second := annotator.AnnotateAll(context.Background(), []*model.Question{q})
	if second.CacheHits != 1 || second.Annotated != 1 {
		t.Errorf("Expected a cache hit, got %+v", second)
	}
	if mock.callCount() != 1 {
		t.Errorf("Expected no further provider calls, got %d", mock.callCount())
	}
	if q.ClaudeAnswer != "B" || q.ClaudeReasoning != "Cached." {
		t.Errorf("Expected cached annotation restored, got %q / %q", q.ClaudeAnswer, q.ClaudeReasoning)
	}
}

func TestAnnotator_ContextCancelled(t *testing.T) {
	mock := &mockProvider{blockUntilCancel: true}
	annotator := newTestAnnotator(mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	statsCh := make(chan Stats, 1)
	go func() {
		statsCh <- annotator.AnnotateAll(ctx, testBatch(3))
	}()

	select {
	case stats := <-statsCh:
		if stats.Annotated != 0 {
			t.Errorf("Expected no annotations after cancellation, got %+v", stats)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("AnnotateAll did not return after context cancellation")
	}
}

func TestRetryDelay(t *testing.T) {
	a := &Annotator{baseDelay: time.Second, backoff: 2}

	if got := a.retryDelay(1, nil); got != time.Second {
		t.Errorf("Expected 1s for attempt 1, got %v", got)
	}
	if got := a.retryDelay(2, nil); got != 2*time.Second {
		t.Errorf("Expected 2s for attempt 2, got %v", got)
	}
	if got := a.retryDelay(3, nil); got != 4*time.Second {
		t.Errorf("Expected 4s for attempt 3, got %v", got)
	}
	if got := a.retryDelay(1, errors.New("HTTP 429")); got != 5*time.Second {
		t.Errorf("Expected 5s for rate-limited attempt 1, got %v", got)
	}
}

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("API error (429): too many tokens"), true},
		{errors.New("Rate limit exceeded"), true},
		{errors.New("rate_limit_error from API"), true},
		{errors.New("Too Many Requests"), true},
		{errors.New("connection refused"), false},
		{errors.New("HTTP 500 server error"), false},
	}

	for _, tt := range tests {
		if got := isRateLimitError(tt.err); got != tt.want {
			t.Errorf("isRateLimitError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
