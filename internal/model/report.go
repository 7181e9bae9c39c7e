package model

import "time"

// RunReport is the run summary emitted after every extraction, successful or
// partial. Operators judge batch quality from this without reading logs.
type RunReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	SourcesProcessed []string `json:"sources_processed"`        // Files that yielded pages
	SourcesFailed    []string `json:"sources_failed,omitempty"` // Files skipped with errors

	SpansDetected     int `json:"spans_detected"`     // Boundary-walk spans across all sources
	FallbackDocuments int `json:"fallback_documents"` // Sources parsed via the whole-document path
	ParseFailures     int `json:"parse_failures"`     // Spans rejected by the validity gate
	BelowThreshold    int `json:"below_threshold"`    // Questions dropped by the confidence policy
	QuestionsAccepted int `json:"questions_accepted"` // Final record count
	CommentCount      int `json:"comment_count"`      // Community comments lifted across the run

	DuplicatePairs      []DuplicatePair `json:"duplicate_pairs,omitempty"` // Probable duplicates, for review
	AnswersNotInOptions int             `json:"answers_not_in_options"`    // Community answers naming absent letters

	Annotated          int `json:"annotated"`           // Questions with an expert answer attached
	AnnotationFailures int `json:"annotation_failures"` // Questions the provider gave up on
	CacheHits          int `json:"cache_hits"`          // Annotations served from cache

	Confidence ConfidenceStats `json:"confidence_stats"`
}

// ConfidenceStats is the confidence distribution over accepted questions
type ConfidenceStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	High    int     `json:"high"`   // Confidence >= 0.8
	Medium  int     `json:"medium"` // 0.5 <= confidence < 0.8
	Low     int     `json:"low"`    // Confidence < 0.5
}

// BuildConfidenceStats computes the distribution for a set of accepted
// questions. An empty set yields the zero value.
func BuildConfidenceStats(questions []*Question) ConfidenceStats {
	if len(questions) == 0 {
		return ConfidenceStats{}
	}
	stats := ConfidenceStats{Min: questions[0].Confidence, Max: questions[0].Confidence}
	var sum float64
	for _, q := range questions {
		c := q.Confidence
		sum += c
		if c < stats.Min {
			stats.Min = c
		}
		if c > stats.Max {
			stats.Max = c
		}
		switch {
		case c >= 0.8:
			stats.High++
		case c >= 0.5:
			stats.Medium++
		default:
			stats.Low++
		}
	}
	stats.Average = sum / float64(len(questions))
	return stats
}

// Severity indicates how much a validation issue degrades a record
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// IssueType classifies a validation finding
type IssueType string

const (
	IssueCommunityPollution IssueType = "community_pollution"   // Discussion text leaked into the description
	IssueOCRResidue         IssueType = "ocr_residue"           // Known corruption patterns survived cleaning
	IssueTruncatedText      IssueType = "truncated_text"        // Description appears cut off
	IssueOptionCount        IssueType = "option_count"          // Fewer than expected or malformed options
	IssueAnswerNotInOptions IssueType = "answer_not_in_options" // Community answer names an absent letter
)

// ValidationIssue is one finding against one question
type ValidationIssue struct {
	QuestionID string    `json:"question_id"`
	Type       IssueType `json:"type"`
	Severity   Severity  `json:"severity"`
	Detail     string    `json:"detail,omitempty"`
}

// ValidationReport is the post-parse quality audit for a run
type ValidationReport struct {
	CheckedAt      time.Time         `json:"checked_at"`
	TotalQuestions int               `json:"total_questions"`
	Issues         []ValidationIssue `json:"issues,omitempty"`
	IssueCounts    map[IssueType]int `json:"issue_counts,omitempty"`

	Accuracy     float64 `json:"accuracy"`     // 1 minus weighted OCR-residue rate
	Completeness float64 `json:"completeness"` // 1 minus option-count and truncation rate
	Quality      float64 `json:"quality"`      // 1 minus severity-weighted issue rate
}
