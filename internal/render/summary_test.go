package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/examsift/examsift/internal/model"
)

func TestWriteSummary(t *testing.T) {
	questions := sampleQuestions()
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	report := &model.RunReport{
		StartedAt:         start,
		FinishedAt:        start.Add(3200 * time.Millisecond),
		SourcesProcessed:  []string{"Questions_1.pdf", "Questions_2.pdf"},
		SourcesFailed:     []string{"Broken.pdf"},
		SpansDetected:     5,
		ParseFailures:     1,
		BelowThreshold:    2,
		QuestionsAccepted: 2,
		CommentCount:      1,
		DuplicatePairs: []model.DuplicatePair{
			{FirstID: "Q3_7", SecondID: "Q5_2", Similarity: 0.86},
		},
		AnswersNotInOptions: 1,
		Annotated:           2,
		AnnotationFailures:  0,
		CacheHits:           1,
		Confidence:          model.BuildConfidenceStats(questions),
	}

	var buf bytes.Buffer
	WriteSummary(&buf, report, questions)
	out := buf.String()

	for _, want := range []string{
		"Extraction Complete",
		"Sources:      2 processed, 1 failed",
		"Spans:        5 detected",
		"Questions:    2 accepted",
		"Rejected:     1 spans failed parsing",
		"Dropped:      2 below confidence threshold",
		"Duplicates:   1 probable pairs flagged",
		"Mismatches:   1 answers not among options",
		"Annotated:    2 (1 from cache, 0 failed)",
		"Questions_1.pdf: 1",
		"Questions_2.pdf: 1",
		"Elapsed:      3.2s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q, got:\n%s", want, out)
		}
	}
}

func TestWriteSummary_Minimal(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, &model.RunReport{}, nil)
	out := buf.String()

	if !strings.Contains(out, "Sources:      0 processed, 0 failed") {
		t.Errorf("missing sources line:\n%s", out)
	}
	for _, absent := range []string{"Fallbacks", "Rejected", "Duplicates", "Annotated", "Elapsed"} {
		if strings.Contains(out, absent) {
			t.Errorf("empty report should omit %q line:\n%s", absent, out)
		}
	}
}
