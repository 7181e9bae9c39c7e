package expert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaProvider_Annotate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected stream to be false")
		}
		if req.Model != "llama3.1:8b" {
			t.Errorf("Expected model llama3.1:8b, got %s", req.Model)
		}

		resp := ollamaResponse{
			Model:           "llama3.1:8b",
			Response:        "Answer: A\nReasoning: Coldline is the cheapest class for long-term archives.",
			Done:            true,
			PromptEvalCount: 80,
			EvalCount:       40,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := Config{
		BaseURL: server.URL,
		Model:   "llama3.1:8b",
		Timeout: 5,
	}
	provider, err := NewOllamaProvider(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Annotate(context.Background(), AnnotateRequest{Question: testQuestion()})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	if resp.Answer != "A" {
		t.Errorf("Expected answer A, got %q", resp.Answer)
	}
	if resp.TokensUsed != 120 {
		t.Errorf("Expected 120 tokens, got %d", resp.TokensUsed)
	}
	if resp.Model != "llama3.1:8b" {
		t.Errorf("Unexpected model: %s", resp.Model)
	}
}

func TestOllamaProvider_Annotate_ModelRequired(t *testing.T) {
	provider, err := NewOllamaProvider(Config{})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Annotate(context.Background(), AnnotateRequest{Question: testQuestion()})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "model must be specified") {
		t.Errorf("Expected 'model must be specified' error, got %v", err)
	}
}

func TestOllamaProvider_Annotate_TokenEstimate(t *testing.T) {
	reply := "Answer: B\nReasoning: Local models work without network access."
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No eval counts in the response
		resp := ollamaResponse{
			Model:    "mistral",
			Response: reply,
			Done:     true,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := Config{
		BaseURL: server.URL,
		Model:   "mistral",
		Timeout: 5,
	}
	provider, err := NewOllamaProvider(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	q := testQuestion()
	resp, err := provider.Annotate(context.Background(), AnnotateRequest{Question: q})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	want := (len(BuildPrompt(q)) + len(reply)) / 4
	if resp.TokensUsed != want {
		t.Errorf("Expected estimated %d tokens, got %d", want, resp.TokensUsed)
	}
}

func TestOllamaProvider_Annotate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'missing' not found"}`))
	}))
	defer server.Close()

	config := Config{
		BaseURL: server.URL,
		Model:   "missing",
		Timeout: 5,
	}
	provider, err := NewOllamaProvider(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Annotate(context.Background(), AnnotateRequest{Question: testQuestion()})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected 'not found' in error, got %v", err)
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"models": [{"name": "llama3.1:8b"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	config := Config{
		BaseURL: server.URL,
	}
	provider, err := NewOllamaProvider(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	// Test failure
	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}
