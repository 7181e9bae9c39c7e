package model

// PageText is a single page of source text after artifact cleaning.
// Immutable once produced; input to boundary detection.
type PageText struct {
	PageNumber int    `json:"page_number"` // 1-based page number within the source
	SourceFile string `json:"source_file"` // File the page was read from
	Text       string `json:"text"`        // Normalized page text, line structure preserved
}

// QuestionSpan is the contiguous text footprint of one candidate question:
// leading context, the boundary marker line, and everything up to the next
// marker or the forward line budget. Created by the boundary detector,
// consumed and discarded by the structural parser.
type QuestionSpan struct {
	StartPage  int      `json:"start_page"`  // Page the marker line appeared on
	SourceFile string   `json:"source_file"` // Origin file
	HeaderLine string   `json:"header_line"` // The matched "Question #N" line
	RawLines   []string `json:"raw_lines"`   // Span lines in source order, header at its position
}

// VoteType classifies a community comment's voting role
type VoteType string

const (
	VoteNone           VoteType = ""                // Plain discussion comment
	VoteHighlyVoted    VoteType = "highly_voted"    // Marked Highly Voted in the thread
	VoteMostRecent     VoteType = "most_recent"     // Marked Most Recent in the thread
	VoteSelectedAnswer VoteType = "selected_answer" // Carries a Selected/Community Answer
)

// CommunityComment is one crowd-sourced discussion entry lifted out of a
// question span. Fields that fail to parse stay empty; the raw line is always
// preserved in Content so nothing is dropped silently.
type CommunityComment struct {
	QuestionID    string   `json:"question_id"`              // Owning question, set after parsing
	Username      string   `json:"username,omitempty"`       // Token preceding the relative timestamp
	TimestampText string   `json:"timestamp_text,omitempty"` // e.g. "2 years, 3 months ago"
	VoteCount     int      `json:"vote_count"`               // From "upvoted N times", 0 if absent
	VoteType      VoteType `json:"vote_type,omitempty"`      // Voting role, VoteNone if plain
	Content       string   `json:"content"`                  // Raw comment line
	PageNumber    int      `json:"page_number"`              // Page of origin
	SourceFile    string   `json:"source_file"`              // File of origin
}

// Question is the central record of the pipeline: one parsed exam question
// with its options and attributed community answers. Created by the
// structural parser, enriched in place by the expert annotator, read-only
// for renderers.
type Question struct {
	ID                string             `json:"id"`                            // Q{page}_{number} or Q{page}_{counter}; unique per run
	OriginalNumber    string             `json:"question_number,omitempty"`     // Number as printed in the source
	Topic             string             `json:"topic"`                         // "Topic N", a service keyword, or "General"
	Description       string             `json:"description"`                   // Cleaned question prose, non-empty when valid
	Options           map[string]string  `json:"options"`                       // Letter A-F -> option text, >= 2 when valid
	CommunityAnswer   string             `json:"community_answer,omitempty"`    // From "Selected Answer: X"
	HighlyVotedAnswer string             `json:"highly_voted_answer,omitempty"` // Letter from the top-voted comment
	MostRecentAnswer  string             `json:"most_recent_answer,omitempty"`  // Letter from the newest comment
	ClaudeAnswer      string             `json:"claude_answer,omitempty"`       // Set only by the annotator
	ClaudeReasoning   string             `json:"claude_reasoning,omitempty"`    // Set only by the annotator
	LatestDate        string             `json:"latest_date,omitempty"`         // Most recent comment timestamp text
	PageNumber        int                `json:"page_number"`                   // Page of the boundary marker
	SourceFile        string             `json:"source_file"`                   // Origin file
	Confidence        float64            `json:"confidence_score"`              // Heuristic [0,1] quality estimate
	Comments          []CommunityComment `json:"comments,omitempty"`            // Comments lifted from this question's span
}

// OptionLetters is the full valid option key set in display order.
var OptionLetters = []string{"A", "B", "C", "D", "E", "F"}

// SortedOptions returns the question's option letters in A-F order,
// skipping absent letters. Map iteration order is not stable, so every
// renderer goes through this.
func (q *Question) SortedOptions() []string {
	letters := make([]string, 0, len(q.Options))
	for _, l := range OptionLetters {
		if _, ok := q.Options[l]; ok {
			letters = append(letters, l)
		}
	}
	return letters
}

// CommunityAnswers returns the distinct valid answer letters among the three
// community-answer fields, filtered to actual option letters A-F.
func (q *Question) CommunityAnswers() []string {
	seen := make(map[string]bool, 3)
	var out []string
	for _, a := range []string{q.CommunityAnswer, q.HighlyVotedAnswer, q.MostRecentAnswer} {
		if a == "" || seen[a] {
			continue
		}
		if !IsOptionLetter(a) {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

// IsOptionLetter reports whether s is a single valid option letter A-F.
func IsOptionLetter(s string) bool {
	if len(s) != 1 {
		return false
	}
	return s[0] >= 'A' && s[0] <= 'F'
}

// DuplicatePair records two accepted questions whose descriptions exceed the
// similarity threshold. Surfaced for review, never auto-merged.
type DuplicatePair struct {
	FirstID    string  `json:"first_id"`
	SecondID   string  `json:"second_id"`
	Similarity float64 `json:"similarity"`
}

// AnnotationResult is the expert provider's proposed answer for one question
type AnnotationResult struct {
	Answer     string  `json:"answer"`     // Single letter A-F, empty if the reply had none
	Reasoning  string  `json:"reasoning"`  // Explanation, truncated to 500 chars
	Confidence float64 `json:"confidence"` // Heuristic [0,1] reply-quality estimate
}
