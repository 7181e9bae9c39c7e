// Package validate audits parsed questions after extraction. It never
// mutates or drops records; findings go into a ValidationReport for manual
// review.
package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/examsift/examsift/internal/model"
	"github.com/examsift/examsift/internal/textclean"
)

// communityPatterns match discussion-thread text that must never appear in a
// question description. A hit means segmentation leaked comment lines.
var communityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:upvoted|voted)\s+\d+\s+times?`),
	regexp.MustCompile(`(?i)\b\w+\s+(?:Highly\s+Voted|Most\s+Recent)`),
	regexp.MustCompile(`(?i)\b\d+\s+(?:years?|months?|weeks?|days?)(?:,\s*\d+\s+(?:months?|weeks?|days?))?\s+ago`),
	regexp.MustCompile(`(?i)\bSelected\s+Answer\s*:`),
}

// flatFilesResidue is the one corruption the cleaner handles with a regex
// rather than a literal replacement.
var flatFilesResidue = regexp.MustCompile(`\^at\s+Kles`)

// terminalRunes are the characters a complete description ends with.
const terminalRunes = "?.:)"

// Validator audits questions concurrently. Checks are independent per
// question, so results land in a pre-sized slice without locking.
type Validator struct {
	maxWorkers int
	residue    []string
}

// NewValidator creates a validator. The residue list is the cleaner's own
// correction table: anything still matching it survived cleaning.
func NewValidator(maxWorkers int) *Validator {
	if maxWorkers <= 0 {
		maxWorkers = 8
	}

	pairs := textclean.DefaultCorrections()
	residue := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		residue = append(residue, pairs[i])
	}

	return &Validator{maxWorkers: maxWorkers, residue: residue}
}

// Validate audits every question and aggregates the findings. A cancelled
// context stops scheduling; questions already audited stay in the report.
func (v *Validator) Validate(ctx context.Context, questions []*model.Question) *model.ValidationReport {
	report := &model.ValidationReport{
		CheckedAt:      time.Now(),
		TotalQuestions: len(questions),
		IssueCounts:    make(map[model.IssueType]int),
	}
	if len(questions) == 0 {
		report.Accuracy = 1
		report.Completeness = 1
		report.Quality = 1
		return report
	}

	perQuestion := make([][]model.ValidationIssue, len(questions))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, v.maxWorkers)

	for i, q := range questions {
		wg.Add(1)
		go func(idx int, q *model.Question) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			perQuestion[idx] = v.auditQuestion(q)
		}(i, q)
	}
	wg.Wait()

	for _, issues := range perQuestion {
		report.Issues = append(report.Issues, issues...)
		for _, issue := range issues {
			report.IssueCounts[issue.Type]++
		}
	}
	computeScores(report)
	return report
}

func (v *Validator) auditQuestion(q *model.Question) []model.ValidationIssue {
	var issues []model.ValidationIssue
	add := func(t model.IssueType, sev model.Severity, detail string) {
		issues = append(issues, model.ValidationIssue{
			QuestionID: q.ID,
			Type:       t,
			Severity:   sev,
			Detail:     detail,
		})
	}

	// Community pollution: discussion text leaked into the description.
	for _, pattern := range communityPatterns {
		if match := pattern.FindString(q.Description); match != "" {
			add(model.IssueCommunityPollution, model.SeverityCritical,
				fmt.Sprintf("discussion text in description: %q", match))
		}
	}

	// OCR residue in description and option texts.
	v.checkResidue(q.Description, "description", add)
	for _, letter := range q.SortedOptions() {
		v.checkResidue(q.Options[letter], "option "+letter, add)
	}

	// Truncation: a complete question ends with terminal punctuation.
	if desc := strings.TrimSpace(q.Description); desc != "" {
		if !strings.ContainsRune(terminalRunes, rune(desc[len(desc)-1])) {
			add(model.IssueTruncatedText, model.SeverityWarning,
				fmt.Sprintf("description ends mid-sentence: %q", tail(desc, 20)))
		}
	}

	// Option count and degenerate option texts.
	switch n := len(q.Options); {
	case n < 2:
		add(model.IssueOptionCount, model.SeverityCritical,
			fmt.Sprintf("%d options, minimum 2 expected", n))
	case n < 4:
		add(model.IssueOptionCount, model.SeverityWarning,
			fmt.Sprintf("%d options, exams typically offer 4-6", n))
	}
	for _, letter := range q.SortedOptions() {
		if len(strings.TrimSpace(q.Options[letter])) < 3 {
			add(model.IssueOptionCount, model.SeverityWarning,
				fmt.Sprintf("option %s is empty or too short", letter))
		}
	}

	// Answer letters that name options the question does not have.
	for _, signal := range []struct {
		name   string
		letter string
	}{
		{"community", q.CommunityAnswer},
		{"highly voted", q.HighlyVotedAnswer},
		{"most recent", q.MostRecentAnswer},
		{"claude", q.ClaudeAnswer},
	} {
		if signal.letter == "" || !model.IsOptionLetter(signal.letter) {
			continue
		}
		if _, ok := q.Options[signal.letter]; !ok {
			add(model.IssueAnswerNotInOptions, model.SeverityWarning,
				fmt.Sprintf("%s answer %s not among options", signal.name, signal.letter))
		}
	}

	return issues
}

func (v *Validator) checkResidue(text, where string, add func(model.IssueType, model.Severity, string)) {
	for _, needle := range v.residue {
		if strings.Contains(text, needle) {
			add(model.IssueOCRResidue, model.SeverityInfo,
				fmt.Sprintf("corruption in %s survived cleaning: %q", where, needle))
		}
	}
	if match := flatFilesResidue.FindString(text); match != "" {
		add(model.IssueOCRResidue, model.SeverityInfo,
			fmt.Sprintf("corruption in %s survived cleaning: %q", where, match))
	}
}

// computeScores turns issue counts into the three aggregate scores. OCR
// residue drags accuracy, structural gaps drag completeness, and quality is
// the severity-weighted blend.
func computeScores(report *model.ValidationReport) {
	total := float64(report.TotalQuestions)

	var critical, warning, info float64
	for _, issue := range report.Issues {
		switch issue.Severity {
		case model.SeverityCritical:
			critical++
		case model.SeverityWarning:
			warning++
		default:
			info++
		}
	}

	ocr := float64(report.IssueCounts[model.IssueOCRResidue])
	structural := float64(report.IssueCounts[model.IssueOptionCount] +
		report.IssueCounts[model.IssueTruncatedText])

	report.Accuracy = clampScore(1 - ocr*0.1/total)
	report.Completeness = clampScore(1 - structural/total)
	report.Quality = clampScore(1 - (critical*0.3+warning*0.1+info*0.02)/total)
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// tail returns the last n runes of s.
func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
