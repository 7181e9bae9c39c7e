package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/examsift/examsift/internal/model"
)

func TestBuildWebDocument(t *testing.T) {
	doc := BuildWebDocument(sampleQuestions())

	if doc.Metadata.TotalQuestions != 2 {
		t.Errorf("total = %d, want 2", doc.Metadata.TotalQuestions)
	}
	if doc.Metadata.Version != "1.0" {
		t.Errorf("version = %q, want %q", doc.Metadata.Version, "1.0")
	}

	if len(doc.Filters.Topics) != 2 || doc.Filters.Topics[0] != "Topic 1" {
		t.Errorf("topics = %v, want sorted distinct topics", doc.Filters.Topics)
	}
	if len(doc.Filters.Sources) != 2 || doc.Filters.Sources[0] != "Questions_1.pdf" {
		t.Errorf("sources = %v, want sorted distinct sources", doc.Filters.Sources)
	}
	if len(doc.Filters.AnswerOptions) != 6 || doc.Filters.AnswerOptions[5] != "F" {
		t.Errorf("answer options = %v, want A-F", doc.Filters.AnswerOptions)
	}

	q := doc.Questions[0]
	if q.ID != "Q3_7" || q.Number != "7" {
		t.Errorf("question identity = %q/%q, want Q3_7/7", q.ID, q.Number)
	}
	if q.Answers.Community != "A" || q.Answers.MostRecent != "C" || q.Answers.Claude != "A" {
		t.Errorf("answers = %+v", q.Answers)
	}
	if q.Metadata.Page != 3 || q.Metadata.Confidence != 0.9 {
		t.Errorf("metadata = %+v", q.Metadata)
	}

	if doc.Questions[1].Number != "Q5_2" {
		t.Errorf("number = %q, want ID fallback", doc.Questions[1].Number)
	}
}

func TestRenderWebExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions_web.json")
	r := NewRenderer(model.OutputFormatConfig{})

	if err := r.RenderWebExport(sampleQuestions(), path); err != nil {
		t.Fatalf("RenderWebExport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var doc WebDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(doc.Questions))
	}
	if doc.Questions[0].ClaudeReasoning != "Coldline matches the access pattern." {
		t.Errorf("reasoning = %q", doc.Questions[0].ClaudeReasoning)
	}
}
