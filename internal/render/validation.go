package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/examsift/examsift/internal/model"
)

// WriteValidationReport renders the post-parse quality audit in the same
// console style as the run summary. Findings are grouped by severity,
// critical first, each line carrying the question ID and the issue type.
func WriteValidationReport(w io.Writer, report *model.ValidationReport) {
	banner := strings.Repeat("═", 59)
	fmt.Fprintf(w, "\n%s\n", banner)
	fmt.Fprintf(w, "  Validation Report\n")
	fmt.Fprintf(w, "%s\n", banner)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "  Questions:    %d audited\n", report.TotalQuestions)
	fmt.Fprintf(w, "  Issues:       %d found\n", len(report.Issues))
	fmt.Fprintf(w, "  Accuracy:     %.2f\n", report.Accuracy)
	fmt.Fprintf(w, "  Completeness: %.2f\n", report.Completeness)
	fmt.Fprintf(w, "  Quality:      %.2f\n", report.Quality)

	if len(report.IssueCounts) > 0 {
		fmt.Fprintf(w, "\n  Issues by type:\n")
		types := make([]string, 0, len(report.IssueCounts))
		for t := range report.IssueCounts {
			types = append(types, string(t))
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Fprintf(w, "    %s: %d\n", t, report.IssueCounts[model.IssueType(t)])
		}
	}

	for _, severity := range []model.Severity{model.SeverityCritical, model.SeverityWarning, model.SeverityInfo} {
		issues := issuesWithSeverity(report.Issues, severity)
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n  %s:\n", severityHeading(severity))
		for _, issue := range issues {
			fmt.Fprintf(w, "    %s [%s] %s\n", issue.QuestionID, issue.Type, issue.Detail)
		}
	}
	fmt.Fprintf(w, "\n")
}

func issuesWithSeverity(issues []model.ValidationIssue, severity model.Severity) []model.ValidationIssue {
	var out []model.ValidationIssue
	for _, issue := range issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

func severityHeading(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "Critical"
	case model.SeverityWarning:
		return "Warnings"
	default:
		return "Info"
	}
}
