// Package expert asks an external LLM provider to answer each extracted
// question. Providers return a proposed letter with reasoning; annotations
// are advisory metadata on the record, never a substitute for the
// community answers.
package expert

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/examsift/examsift/internal/model"
)

// Provider is implemented once per answer service.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Annotate proposes an answer for one question.
	Annotate(ctx context.Context, req AnnotateRequest) (*AnnotateResponse, error)

	// IsAvailable checks if the provider is properly configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// AnnotateRequest carries one question to the provider.
type AnnotateRequest struct {
	// Question is the record to answer.
	Question *model.Question

	// Prompt is an optional custom prompt (if empty, use the default).
	Prompt string

	// Model is the specific model to use (provider-specific).
	Model string

	// MaxTokens limits the response length.
	MaxTokens int
}

// AnnotateResponse is the provider's parsed reply.
type AnnotateResponse struct {
	// Answer is the proposed option letter, A through F.
	Answer string

	// Reasoning is the provider's justification, truncated for storage.
	Reasoning string

	// Confidence estimates how well-formed the reply was, in [0,1].
	Confidence float64

	// Model is the model that generated the response.
	Model string

	// TokensUsed tracks token consumption.
	TokensUsed int
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "claude", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling; zero means the stock 0.3
	Temperature float64
}

const systemPrompt = "You are an expert preparing candidates for cloud certification exams. Pick the single best answer option and justify it briefly."

// BuildPrompt constructs the default prompt for one question. The reply
// format is pinned down so parseReply can find the letter reliably.
func BuildPrompt(q *model.Question) string {
	var sb strings.Builder
	sb.WriteString("Answer this certification exam question.\n\nQuestion:\n")
	sb.WriteString(q.Description)
	sb.WriteString("\n\nOptions:\n")
	for _, letter := range q.SortedOptions() {
		fmt.Fprintf(&sb, "%s. %s\n", letter, q.Options[letter])
	}
	sb.WriteString("\nReply in exactly this format:\nAnswer: <letter>\nReasoning: <2-4 sentences>")
	return sb.String()
}

var (
	answerLine      = regexp.MustCompile(`(?im)^\s*\**answer\**\s*:?\s*\**\s*([A-F])\b`)
	answerPhrase    = regexp.MustCompile(`(?i)answer\s+is\s+\**([A-F])\b`)
	reasoningMarker = regexp.MustCompile(`(?is)(?:reasoning|explanation)\s*:?\s*(.+)`)
)

const maxReasoningLength = 500

// parseReply pulls the answer letter and reasoning out of a free-form
// provider reply.
func parseReply(reply string) (answer, reasoning string) {
	if m := answerLine.FindStringSubmatch(reply); m != nil {
		answer = strings.ToUpper(m[1])
	} else if m := answerPhrase.FindStringSubmatch(reply); m != nil {
		answer = strings.ToUpper(m[1])
	}

	if m := reasoningMarker.FindStringSubmatch(reply); m != nil {
		reasoning = strings.TrimSpace(m[1])
	} else if answer != "" {
		// no marker: everything after the answer line serves
		if idx := answerLine.FindStringIndex(reply); idx != nil {
			rest := reply[idx[1]:]
			if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
				reasoning = strings.TrimSpace(rest[nl+1:])
			}
		}
	}

	if runes := []rune(reasoning); len(runes) > maxReasoningLength {
		reasoning = string(runes[:maxReasoningLength]) + "..."
	}
	return answer, reasoning
}

var domainTerms = []string{
	"google cloud", "gcp", "aws", "azure", "best practice",
	"documentation", "recommended",
}

// responseConfidence grades how usable a reply is: a findable letter,
// substantial reasoning, substantial overall length, and domain language
// each add weight. This grades the reply shape, not answer correctness.
func responseConfidence(answer, reasoning, reply string) float64 {
	score := 0.0
	if answer != "" {
		score += 0.4
	}

	switch {
	case len(reasoning) >= 100:
		score += 0.35
	case len(reasoning) >= 50:
		score += 0.2
	}

	switch {
	case len(reply) >= 200:
		score += 0.15
	case len(reply) >= 100:
		score += 0.1
	}

	lower := strings.ToLower(reply)
	for _, term := range domainTerms {
		if strings.Contains(lower, term) {
			score += 0.1
			break
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
