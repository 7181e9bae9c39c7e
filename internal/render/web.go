package render

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/examsift/examsift/internal/model"
)

// WebDocument is the export consumed by the review UI. The review server
// loads and persists this document, so the types are exported.
type WebDocument struct {
	Metadata  WebMetadata   `json:"metadata"`
	Filters   WebFilters    `json:"filters"`
	Questions []WebQuestion `json:"questions"`
}

// WebMetadata describes the export itself.
type WebMetadata struct {
	GeneratedAt    string `json:"generated_at"`
	TotalQuestions int    `json:"total_questions"`
	Version        string `json:"version"`
}

// WebFilters lists the distinct values the UI offers as filter choices.
type WebFilters struct {
	Topics        []string `json:"topics"`
	Sources       []string `json:"sources"`
	AnswerOptions []string `json:"answer_options"`
}

// WebQuestion is one question flattened for display.
type WebQuestion struct {
	ID              string            `json:"id"`
	Number          string            `json:"number"`
	Description     string            `json:"description"`
	Options         map[string]string `json:"options"`
	Answers         WebAnswers        `json:"answers"`
	ClaudeReasoning string            `json:"claude_reasoning,omitempty"`
	Metadata        WebQuestionMeta   `json:"metadata"`
}

// WebAnswers groups the answer signals side by side.
type WebAnswers struct {
	Community   string `json:"community"`
	HighlyVoted string `json:"highly_voted"`
	MostRecent  string `json:"most_recent"`
	Claude      string `json:"claude"`
}

// WebQuestionMeta carries provenance and scoring for one question.
type WebQuestionMeta struct {
	Topic      string  `json:"topic"`
	Page       int     `json:"page"`
	Source     string  `json:"source"`
	Date       string  `json:"date"`
	Confidence float64 `json:"confidence"`
}

// BuildWebDocument flattens questions into the review UI document.
func BuildWebDocument(questions []*model.Question) *WebDocument {
	sources := make([]string, 0, len(questions))
	topics := make([]string, 0, len(questions))
	webQuestions := make([]WebQuestion, 0, len(questions))

	for _, q := range questions {
		sources = append(sources, q.SourceFile)
		topics = append(topics, q.Topic)

		number := q.OriginalNumber
		if number == "" {
			number = q.ID
		}

		webQuestions = append(webQuestions, WebQuestion{
			ID:          q.ID,
			Number:      number,
			Description: q.Description,
			Options:     q.Options,
			Answers: WebAnswers{
				Community:   q.CommunityAnswer,
				HighlyVoted: q.HighlyVotedAnswer,
				MostRecent:  q.MostRecentAnswer,
				Claude:      q.ClaudeAnswer,
			},
			ClaudeReasoning: q.ClaudeReasoning,
			Metadata: WebQuestionMeta{
				Topic:      q.Topic,
				Page:       q.PageNumber,
				Source:     q.SourceFile,
				Date:       q.LatestDate,
				Confidence: q.Confidence,
			},
		})
	}

	return &WebDocument{
		Metadata: WebMetadata{
			GeneratedAt:    time.Now().Format(time.RFC3339),
			TotalQuestions: len(questions),
			Version:        "1.0",
		},
		Filters: WebFilters{
			Topics:        distinctSorted(topics),
			Sources:       distinctSorted(sources),
			AnswerOptions: model.OptionLetters,
		},
		Questions: webQuestions,
	}
}

// RenderWebExport writes the review UI document.
func (r *Renderer) RenderWebExport(questions []*model.Question, path string) error {
	data, err := json.MarshalIndent(BuildWebDocument(questions), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal web export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write web export: %w", err)
	}
	return nil
}
