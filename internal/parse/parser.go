// Package parse turns segmented question content into structured Question
// records: number, topic, description, lettered options, and attributed
// community answers.
package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/examsift/examsift/internal/model"
	"github.com/examsift/examsift/internal/textclean"
)

// ErrInvalidQuestion means the validity gate failed: empty description or
// too few options. Callers drop the span and count the failure.
var ErrInvalidQuestion = errors.New("invalid question: missing description or options")

// Parser builds Question records from clean span lines. One Parser serves
// one run: it owns the monotonic counter that supplies fallback IDs and
// resolves reprinted-number collisions, so IDs stay unique and runs stay
// reproducible.
type Parser struct {
	cleaner *textclean.Cleaner
	cfg     model.QuestionParsingConfig
	counter int
	seen    map[string]bool

	numberPatterns []*regexp.Regexp
	topicNumber    *regexp.Regexp
	marker         *regexp.Regexp
	optionLine     *regexp.Regexp
	voteNoise      *regexp.Regexp
	pathLike       *regexp.Regexp
	topicHeader    *regexp.Regexp
	stampFragment  *regexp.Regexp
	caseStudy      []*regexp.Regexp
	introReject    *regexp.Regexp

	answerAfterPhrase *regexp.Regexp
	standaloneLetter  *regexp.Regexp
	leadingLetter     *regexp.Regexp
	datePatterns      []*regexp.Regexp
}

// NewParser builds a run-scoped Parser. MinOptions below 1 falls back to
// the documented default of 2.
func NewParser(cfg model.QuestionParsingConfig, cleaner *textclean.Cleaner) *Parser {
	if cfg.MinOptions < 1 {
		cfg.MinOptions = 2
	}
	return &Parser{
		cleaner: cleaner,
		cfg:     cfg,
		seen:    make(map[string]bool),

		numberPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Question\s*#(\d+)`),
			regexp.MustCompile(`(?i)Question\s+(\d+)`),
			regexp.MustCompile(`(\d+)\.\s`),
		},
		topicNumber: regexp.MustCompile(`(?i)Topic\s+(\d+)`),
		marker:      regexp.MustCompile(`(?i)question\s*#?\s*\d+`),
		optionLine:  regexp.MustCompile(`(?i)^([A-F])[.)]\s*(.+)`),

		// option text matching these is a community line that slipped
		// through, not an answer option
		voteNoise: regexp.MustCompile(`(?i)is the answer|upvoted|years ago|months ago|weeks ago|days ago|Selected Answer`),

		// short option bodies survive only when they look like a path
		// or carry punctuation, e.g. "~/bin/run.sh" or "8.7"
		pathLike: regexp.MustCompile(`[~/\\.]`),

		topicHeader:   regexp.MustCompile(`(?i)^Topic\s+\d+`),
		stampFragment: regexp.MustCompile(`(?i)\b[A-Za-z][A-Za-z0-9_]*\s+\d+\s+(?:years?|months?|weeks?|days?),?\s*(?:\d+\s+(?:months?|weeks?|days?))?\s+ago\b`),

		caseStudy: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b\w+\s+is\s+a\s+(?:web-based\s+)?(?:company|organization|platform)`),
			regexp.MustCompile(`(?i)For\s+this\s+question,\s+refer\s+to\s+the\s+\w+\s+case\s+study`),
			regexp.MustCompile(`(?i)\w+\s+(?:provides|offers|operates|runs)`),
			regexp.MustCompile(`(?i)case\s+study`),
			regexp.MustCompile(`(?i)scenario`),
			regexp.MustCompile(`(?i)company\s+background`),
		},
		introReject: regexp.MustCompile(`(?i)Question Set|Topic \d+`),

		answerAfterPhrase: regexp.MustCompile(`(?i)answer\s*:?\s*([A-F])\b`),
		standaloneLetter:  regexp.MustCompile(`\b([A-F])\b`),
		leadingLetter:     regexp.MustCompile(`^([A-F])\b`),
		datePatterns: []*regexp.Regexp{
			regexp.MustCompile(`\d{1,2}\s+(?:days?|weeks?|months?|years?)\s+ago`),
			regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`),
			regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
		},
	}
}

// Parse builds one Question from a span's clean lines. The header line is
// tried first for the printed number; a span with no number draws from the
// run counter instead. Confidence is left at zero for the scorer.
func (p *Parser) Parse(cleanLines []string, headerLine string, pageNumber int, sourceFile string) (*model.Question, error) {
	allText := headerLine + "\n" + strings.Join(cleanLines, "\n")

	number := p.extractNumber(headerLine)
	if number == "" {
		number = p.extractNumber(allText)
	}

	id := ""
	if number != "" {
		id = fmt.Sprintf("Q%d_%s", pageNumber, number)
	} else {
		p.counter++
		id = fmt.Sprintf("Q%d_%d", pageNumber, p.counter)
	}
	// A number reprinted on the same page would collide. Draw from the
	// counter until the id is free.
	for p.seen[id] {
		p.counter++
		id = fmt.Sprintf("Q%d_%d", pageNumber, p.counter)
	}
	p.seen[id] = true

	q := &model.Question{
		ID:             id,
		OriginalNumber: number,
		Topic:          p.extractTopic(allText),
		Description:    p.extractDescription(cleanLines),
		Options:        p.extractOptions(cleanLines),
		PageNumber:     pageNumber,
		SourceFile:     sourceFile,
	}

	if q.Description == "" || len(q.Options) < p.cfg.MinOptions {
		return nil, fmt.Errorf("%w: %s (%d options)", ErrInvalidQuestion, id, len(q.Options))
	}
	return q, nil
}

// extractNumber returns the printed question number, or empty when the text
// has none.
func (p *Parser) extractNumber(text string) string {
	for _, re := range p.numberPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// extractTopic prefers the printed "Topic N" label, then the first service
// keyword the text mentions, then "General".
func (p *Parser) extractTopic(text string) string {
	if m := p.topicNumber.FindStringSubmatch(text); m != nil {
		return "Topic " + m[1]
	}
	lower := strings.ToLower(text)
	for _, keyword := range p.cfg.TopicKeywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return keyword
		}
	}
	return "General"
}

// extractDescription assembles the question prose: case-study introduction
// collected before the marker line, then body lines after it up to the
// first answer option. When the lines hold no marker (the whole-document
// strategy), everything before the first option is body.
func (p *Parser) extractDescription(lines []string) string {
	var intro, body []string
	foundMarker := false
	hasMarker := p.containsMarker(lines)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || p.cleaner.IsNoiseLine(line) {
			continue
		}

		if hasMarker && !foundMarker {
			if p.marker.MatchString(line) {
				foundMarker = true
				continue
			}
			p.collectIntro(&intro, line)
			continue
		}

		if p.optionLine.MatchString(line) {
			break
		}
		body = append(body, line)
	}

	// only the last few introduction lines matter; older context is
	// usually another page's scenery
	if len(intro) > 5 {
		intro = intro[len(intro)-5:]
	}
	kept := make([]string, 0, len(intro)+len(body))
	for _, line := range intro {
		if len(line) > 20 && !p.introReject.MatchString(line) {
			kept = append(kept, line)
		}
	}
	kept = append(kept, body...)

	description := strings.Join(kept, " ")
	description = p.stampFragment.ReplaceAllString(description, "")
	description = p.cleaner.FixOCR(description)
	return p.cleaner.Clean(description)
}

// collectIntro keeps a pre-marker line when it reads like scenario
// description: a case-study shape, or simply substantial prose.
func (p *Parser) collectIntro(intro *[]string, line string) {
	if p.topicHeader.MatchString(line) || len(line) <= 20 {
		return
	}
	for _, re := range p.caseStudy {
		if re.MatchString(line) {
			*intro = append(*intro, line)
			return
		}
	}
	if len(line) > 30 {
		*intro = append(*intro, line)
	}
}

func (p *Parser) containsMarker(lines []string) bool {
	for _, line := range lines {
		if p.marker.MatchString(line) {
			return true
		}
	}
	return false
}

// extractOptions scans every line for "A." through "F." options, applying
// the rejection rules. A duplicate letter keeps the longer text on the
// assumption that OCR recovered more on a later pass.
func (p *Parser) extractOptions(lines []string) map[string]string {
	options := make(map[string]string)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := p.optionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		letter := strings.ToUpper(m[1])
		text := strings.TrimSpace(m[2])

		if p.voteNoise.MatchString(text) {
			continue
		}
		if len(text) < 2 || (len(text) < 5 && !p.pathLike.MatchString(text)) {
			continue
		}

		text = p.cleaner.Clean(p.cleaner.FixOCR(text))
		if existing, ok := options[letter]; ok && len(existing) >= len(text) {
			continue
		}
		options[letter] = text
	}
	return options
}

// AttachCommunityAnswers stamps the question ID onto the span's comments,
// stores them on the record, and fills the three community-answer fields
// plus the latest activity date. Letters come only from positions anchored
// to an answer phrase or the leading token of the following comment; a
// bare scan would read the D out of "SELECTED" or "VOTED".
func (p *Parser) AttachCommunityAnswers(q *model.Question, comments []model.CommunityComment) {
	for i := range comments {
		comments[i].QuestionID = q.ID
	}
	q.Comments = comments

	for i, c := range comments {
		lower := strings.ToLower(c.Content)
		next := ""
		if i+1 < len(comments) {
			next = comments[i+1].Content
		}

		switch {
		case strings.Contains(lower, "selected answer") || strings.Contains(lower, "correct answer") || strings.Contains(lower, "community answer"):
			if q.CommunityAnswer == "" {
				q.CommunityAnswer = p.answerLetter(c.Content, next)
			}
		case strings.Contains(lower, "highly voted"):
			if q.HighlyVotedAnswer == "" {
				q.HighlyVotedAnswer = p.answerLetter(c.Content, next)
			}
		case strings.Contains(lower, "most recent"):
			if q.MostRecentAnswer == "" {
				q.MostRecentAnswer = p.answerLetter(c.Content, next)
			}
		}

		for _, re := range p.datePatterns {
			if m := re.FindString(c.Content); m != "" {
				q.LatestDate = m
				break
			}
		}
	}
}

// answerLetter extracts the voted letter from a comment: first anchored
// after an "answer" phrase, then as an uppercase standalone token, then as
// the leading letter of the following comment.
func (p *Parser) answerLetter(content, next string) string {
	if m := p.answerAfterPhrase.FindStringSubmatch(content); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := p.standaloneLetter.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	if next != "" {
		if m := p.leadingLetter.FindStringSubmatch(strings.TrimSpace(next)); m != nil {
			return m[1]
		}
	}
	return ""
}
