package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/examsift/examsift/internal/model"
)

func TestRenderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	r := NewRenderer(model.OutputFormatConfig{})

	if err := r.RenderJSON(sampleQuestions(), path); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if doc.Metadata.TotalQuestions != 2 {
		t.Errorf("total = %d, want 2", doc.Metadata.TotalQuestions)
	}
	if doc.Metadata.GeneratedAt == "" {
		t.Error("generated_at should be set")
	}
	wantSources := []string{"Questions_1.pdf", "Questions_2.pdf"}
	if len(doc.Metadata.SourceFiles) != 2 || doc.Metadata.SourceFiles[0] != wantSources[0] || doc.Metadata.SourceFiles[1] != wantSources[1] {
		t.Errorf("source_files = %v, want %v", doc.Metadata.SourceFiles, wantSources)
	}
	if doc.Metadata.ConfidenceStats.High != 1 {
		t.Errorf("high confidence count = %d, want 1", doc.Metadata.ConfidenceStats.High)
	}

	if len(doc.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(doc.Questions))
	}
	q := doc.Questions[0]
	if q.ID != "Q3_7" || q.CommunityAnswer != "A" || q.Options["C"] != "Stream the logs to BigQuery" {
		t.Errorf("first question did not round-trip: %+v", q)
	}
	if len(q.Comments) != 1 || q.Comments[0].Username != "cloudfan" {
		t.Errorf("comments did not round-trip: %+v", q.Comments)
	}
}

func TestRenderComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.json")
	r := NewRenderer(model.OutputFormatConfig{})

	comments := collectComments(sampleQuestions())
	if err := r.RenderComments(comments, path); err != nil {
		t.Fatalf("RenderComments failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var got []model.CommunityComment
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d comments, want 1", len(got))
	}
	if got[0].QuestionID != "Q3_7" || got[0].VoteCount != 12 {
		t.Errorf("comment did not round-trip: %+v", got[0])
	}
	if got[0].VoteType != model.VoteHighlyVoted {
		t.Errorf("vote type = %q, want %q", got[0].VoteType, model.VoteHighlyVoted)
	}
}
