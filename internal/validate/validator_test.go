package validate

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/examsift/examsift/internal/model"
)

func cleanQuestion() *model.Question {
	return &model.Question{
		ID:          "Q3_7",
		Topic:       "Topic 2",
		Description: "Your company must retain audit logs for three years at the lowest cost. What should you do?",
		Options: map[string]string{
			"A": "Export the logs to a Coldline storage bucket",
			"B": "Keep the logs in Cloud Logging",
			"C": "Stream the logs to BigQuery",
			"D": "Snapshot the logging persistent disks",
		},
		CommunityAnswer: "A",
		PageNumber:      3,
		SourceFile:      "Questions_1.pdf",
		Confidence:      0.9,
	}
}

func issuesOfType(report *model.ValidationReport, t model.IssueType) []model.ValidationIssue {
	var out []model.ValidationIssue
	for _, issue := range report.Issues {
		if issue.Type == t {
			out = append(out, issue)
		}
	}
	return out
}

func TestValidate_CleanQuestion(t *testing.T) {
	v := NewValidator(4)

	report := v.Validate(context.Background(), []*model.Question{cleanQuestion()})

	if len(report.Issues) != 0 {
		t.Errorf("clean question should produce no issues, got %+v", report.Issues)
	}
	if report.TotalQuestions != 1 {
		t.Errorf("total = %d, want 1", report.TotalQuestions)
	}
	for name, score := range map[string]float64{
		"accuracy":     report.Accuracy,
		"completeness": report.Completeness,
		"quality":      report.Quality,
	} {
		if score != 1.0 {
			t.Errorf("%s = %v, want 1.0 for a clean question", name, score)
		}
	}
}

func TestValidate_CommunityPollution(t *testing.T) {
	tests := []struct {
		name        string
		description string
	}{
		{"vote count", "Choose a storage class. upvoted 12 times by the community?"},
		{"highly voted marker", "cloudfan Highly Voted answer is A. What should you do?"},
		{"relative date", "What should you do? Posted 2 years, 3 months ago."},
		{"selected answer line", "What should you do? Selected Answer: B."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := cleanQuestion()
			q.Description = tt.description

			report := NewValidator(1).Validate(context.Background(), []*model.Question{q})

			found := issuesOfType(report, model.IssueCommunityPollution)
			if len(found) == 0 {
				t.Fatalf("expected community pollution issue for %q", tt.description)
			}
			if found[0].Severity != model.SeverityCritical {
				t.Errorf("severity = %q, want critical", found[0].Severity)
			}
			if found[0].QuestionID != "Q3_7" {
				t.Errorf("question id = %q", found[0].QuestionID)
			}
		})
	}
}

func TestValidate_OCRResidue(t *testing.T) {
	q := cleanQuestion()
	q.Description = `ConKgure the load balancer to route traOc. What should you do?`
	q.Options["B"] = `Use a managed solu"on`

	report := NewValidator(1).Validate(context.Background(), []*model.Question{q})

	found := issuesOfType(report, model.IssueOCRResidue)
	if len(found) != 3 {
		t.Fatalf("got %d residue issues, want 3: %+v", len(found), found)
	}
	for _, issue := range found {
		if issue.Severity != model.SeverityInfo {
			t.Errorf("severity = %q, want info", issue.Severity)
		}
	}

	var optionHits int
	for _, issue := range found {
		if strings.Contains(issue.Detail, "option B") {
			optionHits++
		}
	}
	if optionHits != 1 {
		t.Errorf("want exactly one option B residue issue, got %d", optionHits)
	}
}

func TestValidate_TruncatedDescription(t *testing.T) {
	q := cleanQuestion()
	q.Description = "You need to migrate the database to"

	report := NewValidator(1).Validate(context.Background(), []*model.Question{q})

	found := issuesOfType(report, model.IssueTruncatedText)
	if len(found) != 1 {
		t.Fatalf("got %d truncation issues, want 1", len(found))
	}
	if !strings.Contains(found[0].Detail, "migrate the database to") {
		t.Errorf("detail should quote the tail, got %q", found[0].Detail)
	}
}

func TestValidate_TerminalPunctuationAccepted(t *testing.T) {
	for _, ending := range []string{"What should you do?", "Choose the best option.", "Requirements:", "(see diagram)"} {
		q := cleanQuestion()
		q.Description = ending

		report := NewValidator(1).Validate(context.Background(), []*model.Question{q})
		if found := issuesOfType(report, model.IssueTruncatedText); len(found) != 0 {
			t.Errorf("%q should not be flagged as truncated", ending)
		}
	}
}

func TestValidate_OptionCount(t *testing.T) {
	q := cleanQuestion()
	q.Options = map[string]string{"A": "Only choice"}

	report := NewValidator(1).Validate(context.Background(), []*model.Question{q})

	found := issuesOfType(report, model.IssueOptionCount)
	if len(found) != 1 {
		t.Fatalf("got %d option issues, want 1: %+v", len(found), found)
	}
	if found[0].Severity != model.SeverityCritical {
		t.Errorf("severity = %q, want critical for a single option", found[0].Severity)
	}

	q = cleanQuestion()
	q.Options = map[string]string{"A": "First choice", "B": "Second choice", "C": "Third choice"}
	report = NewValidator(1).Validate(context.Background(), []*model.Question{q})
	found = issuesOfType(report, model.IssueOptionCount)
	if len(found) != 1 || found[0].Severity != model.SeverityWarning {
		t.Errorf("three options should warn, got %+v", found)
	}
}

func TestValidate_ShortOptionText(t *testing.T) {
	q := cleanQuestion()
	q.Options["D"] = "x"

	report := NewValidator(1).Validate(context.Background(), []*model.Question{q})

	found := issuesOfType(report, model.IssueOptionCount)
	if len(found) != 1 {
		t.Fatalf("got %d option issues, want 1: %+v", len(found), found)
	}
	if !strings.Contains(found[0].Detail, "option D") {
		t.Errorf("detail = %q, want option D named", found[0].Detail)
	}
}

func TestValidate_AnswerNotInOptions(t *testing.T) {
	q := cleanQuestion()
	q.CommunityAnswer = "E"
	q.ClaudeAnswer = "F"

	report := NewValidator(1).Validate(context.Background(), []*model.Question{q})

	found := issuesOfType(report, model.IssueAnswerNotInOptions)
	if len(found) != 2 {
		t.Fatalf("got %d issues, want 2: %+v", len(found), found)
	}
	if !strings.Contains(found[0].Detail, "community answer E") {
		t.Errorf("first detail = %q", found[0].Detail)
	}
	if !strings.Contains(found[1].Detail, "claude answer F") {
		t.Errorf("second detail = %q", found[1].Detail)
	}
}

func TestValidate_InvalidAnswerLetterIgnored(t *testing.T) {
	q := cleanQuestion()
	q.MostRecentAnswer = "AB"

	report := NewValidator(1).Validate(context.Background(), []*model.Question{q})
	if found := issuesOfType(report, model.IssueAnswerNotInOptions); len(found) != 0 {
		t.Errorf("non-letter answers are parser debris, not membership issues: %+v", found)
	}
}

func TestValidate_Scores(t *testing.T) {
	polluted := cleanQuestion()
	polluted.ID = "Q1_1"
	polluted.Description = "user1 Highly Voted says A. What should you do?"

	truncated := cleanQuestion()
	truncated.ID = "Q1_2"
	truncated.Description = "You need to configure the"

	clean := cleanQuestion()
	clean.ID = "Q1_3"

	questions := []*model.Question{polluted, truncated, clean}
	report := NewValidator(2).Validate(context.Background(), questions)

	// One critical (pollution) and one warning (truncation) across three
	// questions.
	wantQuality := 1 - (0.3+0.1)/3
	if math.Abs(report.Quality-wantQuality) > 1e-9 {
		t.Errorf("quality = %v, want %v", report.Quality, wantQuality)
	}
	wantCompleteness := 1 - 1.0/3
	if math.Abs(report.Completeness-wantCompleteness) > 1e-9 {
		t.Errorf("completeness = %v, want %v", report.Completeness, wantCompleteness)
	}
	if report.Accuracy != 1.0 {
		t.Errorf("accuracy = %v, want 1.0 with no residue", report.Accuracy)
	}

	if report.IssueCounts[model.IssueCommunityPollution] != 1 {
		t.Errorf("issue counts = %+v", report.IssueCounts)
	}
}

func TestValidate_Empty(t *testing.T) {
	report := NewValidator(4).Validate(context.Background(), nil)

	if report.TotalQuestions != 0 || len(report.Issues) != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.Accuracy != 1 || report.Completeness != 1 || report.Quality != 1 {
		t.Errorf("empty run should score 1.0 across the board: %+v", report)
	}
}

func TestValidate_ManyQuestionsBounded(t *testing.T) {
	questions := make([]*model.Question, 50)
	for i := range questions {
		q := cleanQuestion()
		q.ID = q.ID + "_" + string(rune('a'+i%26))
		questions[i] = q
	}

	report := NewValidator(4).Validate(context.Background(), questions)

	if report.TotalQuestions != 50 {
		t.Errorf("total = %d, want 50", report.TotalQuestions)
	}
	if len(report.Issues) != 0 {
		t.Errorf("clean batch produced issues: %+v", report.Issues)
	}
}
