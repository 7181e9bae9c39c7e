package render

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/examsift/examsift/internal/model"
)

// jsonDocument is the machine-readable export envelope.
type jsonDocument struct {
	Metadata  jsonMetadata      `json:"metadata"`
	Questions []*model.Question `json:"questions"`
}

type jsonMetadata struct {
	GeneratedAt     string                `json:"generated_at"`
	TotalQuestions  int                   `json:"total_questions"`
	SourceFiles     []string              `json:"source_files"`
	Topics          []string              `json:"topics"`
	ConfidenceStats model.ConfidenceStats `json:"confidence_stats"`
}

// RenderJSON writes the full question records with an extraction metadata
// envelope.
func (r *Renderer) RenderJSON(questions []*model.Question, path string) error {
	sources := make([]string, 0, len(questions))
	topics := make([]string, 0, len(questions))
	for _, q := range questions {
		sources = append(sources, q.SourceFile)
		topics = append(topics, q.Topic)
	}

	doc := jsonDocument{
		Metadata: jsonMetadata{
			GeneratedAt:     time.Now().Format(time.RFC3339),
			TotalQuestions:  len(questions),
			SourceFiles:     distinctSorted(sources),
			Topics:          distinctSorted(topics),
			ConfidenceStats: model.BuildConfidenceStats(questions),
		},
		Questions: questions,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// RenderComments writes the flat list of community comments kept during
// parsing, for auditing answer attribution.
func (r *Renderer) RenderComments(comments []model.CommunityComment, path string) error {
	data, err := json.MarshalIndent(comments, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal comments: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write comments file: %w", err)
	}
	return nil
}
