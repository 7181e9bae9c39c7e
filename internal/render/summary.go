package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/examsift/examsift/internal/model"
)

// WriteSummary prints the human-readable run summary. The pipeline sends it
// to stdout after the file outputs are written.
func WriteSummary(w io.Writer, report *model.RunReport, questions []*model.Question) {
	banner := strings.Repeat("═", 59)

	fmt.Fprintf(w, "\n%s\n", banner)
	fmt.Fprintf(w, "  Extraction Complete\n")
	fmt.Fprintf(w, "%s\n\n", banner)

	fmt.Fprintf(w, "  Sources:      %d processed, %d failed\n",
		len(report.SourcesProcessed), len(report.SourcesFailed))
	fmt.Fprintf(w, "  Spans:        %d detected\n", report.SpansDetected)
	if report.FallbackDocuments > 0 {
		fmt.Fprintf(w, "  Fallbacks:    %d sources parsed whole\n", report.FallbackDocuments)
	}
	fmt.Fprintf(w, "  Questions:    %d accepted\n", report.QuestionsAccepted)
	if report.ParseFailures > 0 {
		fmt.Fprintf(w, "  Rejected:     %d spans failed parsing\n", report.ParseFailures)
	}
	if report.BelowThreshold > 0 {
		fmt.Fprintf(w, "  Dropped:      %d below confidence threshold\n", report.BelowThreshold)
	}
	fmt.Fprintf(w, "  Comments:     %d lifted\n", report.CommentCount)
	if len(report.DuplicatePairs) > 0 {
		fmt.Fprintf(w, "  Duplicates:   %d probable pairs flagged\n", len(report.DuplicatePairs))
	}
	if report.AnswersNotInOptions > 0 {
		fmt.Fprintf(w, "  Mismatches:   %d answers not among options\n", report.AnswersNotInOptions)
	}
	if report.Annotated > 0 || report.AnnotationFailures > 0 {
		fmt.Fprintf(w, "  Annotated:    %d (%d from cache, %d failed)\n",
			report.Annotated, report.CacheHits, report.AnnotationFailures)
	}
	if report.QuestionsAccepted > 0 {
		fmt.Fprintf(w, "  Confidence:   avg %.2f (high %d / medium %d / low %d)\n",
			report.Confidence.Average, report.Confidence.High,
			report.Confidence.Medium, report.Confidence.Low)
	}

	if len(questions) > 0 {
		bySource := make(map[string]int)
		for _, q := range questions {
			bySource[q.SourceFile]++
		}
		sources := make([]string, 0, len(bySource))
		for s := range bySource {
			sources = append(sources, s)
		}
		sort.Strings(sources)

		fmt.Fprintf(w, "\n  Questions per source:\n")
		for _, s := range sources {
			fmt.Fprintf(w, "    %s: %d\n", s, bySource[s])
		}
	}

	if !report.FinishedAt.IsZero() && !report.StartedAt.IsZero() {
		elapsed := report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)
		fmt.Fprintf(w, "\n  Elapsed:      %s\n", elapsed)
	}
	fmt.Fprintln(w)
}
