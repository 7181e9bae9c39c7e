// Package score assigns each parsed question a heuristic confidence score
// and reports probable duplicate pairs. It never drops or merges records;
// threshold policy belongs to the caller.
package score

import (
	"math"
	"strings"

	"github.com/examsift/examsift/internal/model"
)

// Scorer computes the weighted confidence rubric. Weights sum to 1.0 and
// each component is awarded independently.
type Scorer struct {
	minLength int
}

// NewScorer creates a scorer. MinQuestionLength below 1 falls back to the
// documented default of 50.
func NewScorer(cfg model.QuestionParsingConfig) *Scorer {
	if cfg.MinQuestionLength < 1 {
		cfg.MinQuestionLength = 50
	}
	return &Scorer{minLength: cfg.MinQuestionLength}
}

// Calculate returns the composite confidence for one question, capped at
// 1.0. The caller stores it on the record.
func (s *Scorer) Calculate(q *model.Question) float64 {
	total := s.descriptionScore(q) + s.optionScore(q) + s.communityScore(q) + s.identityScore(q)
	return math.Min(total, 1.0)
}

// descriptionScore awards 0.4 for a full-length description, 0.2 for a
// short but usable one.
func (s *Scorer) descriptionScore(q *model.Question) float64 {
	switch {
	case len(q.Description) >= s.minLength:
		return 0.4
	case len(q.Description) >= 20:
		return 0.2
	default:
		return 0
	}
}

// optionScore awards 0.3 for a full option set, 0.15 for a usable pair.
func (s *Scorer) optionScore(q *model.Question) float64 {
	switch {
	case len(q.Options) >= 4:
		return 0.3
	case len(q.Options) >= 2:
		return 0.15
	default:
		return 0
	}
}

// communityScore awards 0.2 when two or more distinct valid letters were
// voted, 0.1 for a single one.
func (s *Scorer) communityScore(q *model.Question) float64 {
	switch n := len(q.CommunityAnswers()); {
	case n >= 2:
		return 0.2
	case n == 1:
		return 0.1
	default:
		return 0
	}
}

// identityScore awards 0.1 when both the printed number and a topic are
// present, 0.05 for exactly one.
func (s *Scorer) identityScore(q *model.Question) float64 {
	have := 0
	if q.OriginalNumber != "" {
		have++
	}
	if q.Topic != "" {
		have++
	}
	switch have {
	case 2:
		return 0.1
	case 1:
		return 0.05
	default:
		return 0
	}
}

// Level buckets a confidence score for display.
func (s *Scorer) Level(score float64) string {
	switch {
	case score >= 0.8:
		return "high"
	case score >= 0.5:
		return "medium"
	default:
		return "low"
	}
}

// Similarity is the word-set Jaccard index of two descriptions: the size
// of the shared lowercase token set over the size of the combined one.
// Symmetric, and 1.0 for identical non-empty text.
func (s *Scorer) Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// FindDuplicates compares every unordered pair of questions and reports
// those whose description similarity exceeds the threshold. Pairs are
// surfaced for manual review, never removed.
func (s *Scorer) FindDuplicates(questions []*model.Question, threshold float64) []model.DuplicatePair {
	var pairs []model.DuplicatePair
	for i := 0; i < len(questions); i++ {
		for j := i + 1; j < len(questions); j++ {
			sim := s.Similarity(questions[i].Description, questions[j].Description)
			if sim > threshold {
				pairs = append(pairs, model.DuplicatePair{
					FirstID:    questions[i].ID,
					SecondID:   questions[j].ID,
					Similarity: sim,
				})
			}
		}
	}
	return pairs
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		set[tok] = struct{}{}
	}
	return set
}
