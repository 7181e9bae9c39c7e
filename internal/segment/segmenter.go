// Package segment splits a question span into question content and
// community discussion, using an ordered set of line-classification signals.
package segment

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/examsift/examsift/internal/model"
)

// The source layout renders two private-use glyphs in front of every
// community entry: a comment icon and a user icon. Their presence is the
// single most reliable community signal and is checked before anything else.
const (
	sentinelComment = ''
	sentinelUser    = ''
)

// Segmenter classifies span lines as question content or community content.
// Signals are evaluated in priority order; the username allowlist comes
// last because it cannot generalize to new data.
type Segmenter struct {
	usernameStamp *regexp.Regexp
	votePhrase    *regexp.Regexp
	iconPrefix    *regexp.Regexp
	bareURL       *regexp.Regexp
	upvoted       *regexp.Regexp
	voteCount     *regexp.Regexp
	highlyVoted   *regexp.Regexp
	mostRecent    *regexp.Regexp
	selected      *regexp.Regexp
	allowlist     *regexp.Regexp
}

// NewSegmenter builds a Segmenter. The allowlist is the closed set of known
// commenter usernames from config; pass nil to disable that signal.
func NewSegmenter(allowlist []string) *Segmenter {
	return &Segmenter{
		// bare word token of 3+ chars followed by a relative timestamp,
		// e.g. "johndoe123 2 years ago" or "minmin2020 1 year, 2 months ago"
		usernameStamp: regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]{2,})\s+(\d+\s+(?:years?|months?|weeks?|days?),?\s*(?:\d+\s+(?:months?|weeks?|days?))?\s+ago)`),

		votePhrase: regexp.MustCompile(`(?i)highly\s+voted|most\s+recent|selected\s+answer:|community\s+answer:`),

		// icon and quote glyphs that open rendered comment widgets
		iconPrefix: regexp.MustCompile(`^[\x{F0C9}▶▼►◄⬅➡🔘□■📷🖼📸>|]`),

		bareURL: regexp.MustCompile(`https?://\S+`),

		upvoted:   regexp.MustCompile(`(?i)upvoted\s+\d+`),
		voteCount: regexp.MustCompile(`(?i)upvoted\s+(\d+)\s+times?`),

		highlyVoted: regexp.MustCompile(`(?i)highly\s+voted`),
		mostRecent:  regexp.MustCompile(`(?i)most\s+recent`),
		selected:    regexp.MustCompile(`(?i)selected\s+answer|community\s+answer`),

		allowlist: compileAllowlist(allowlist),
	}
}

// compileAllowlist builds a line-prefix alternation over the known
// usernames. Word boundary keeps "SAMBIT" from matching "SAMBITITO".
func compileAllowlist(names []string) *regexp.Regexp {
	if len(names) == 0 {
		return nil
	}
	escaped := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		escaped = append(escaped, regexp.QuoteMeta(n))
	}
	if len(escaped) == 0 {
		return nil
	}
	return regexp.MustCompile(`^(?:` + strings.Join(escaped, "|") + `)\b`)
}

// Segment splits the span's lines into question content and community
// comments. Clean lines keep their original order with community lines
// removed; comments keep their original order among themselves. A community
// line that fails field extraction still yields a comment record carrying
// the raw line, never a silent drop.
func (s *Segmenter) Segment(span model.QuestionSpan) ([]string, []model.CommunityComment) {
	var clean []string
	var comments []model.CommunityComment
	for _, line := range span.RawLines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if s.IsCommunityLine(trimmed) {
			comments = append(comments, s.extractComment(trimmed, span))
			continue
		}
		clean = append(clean, trimmed)
	}
	return clean, comments
}

// IsCommunityLine reports whether a line belongs to the community stream.
// Signal order: sentinel glyphs, username+timestamp shape, vote phrases,
// icon prefixes, bare URLs, upvote counts, and finally the allowlist.
func (s *Segmenter) IsCommunityLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.ContainsRune(line, sentinelComment) || strings.ContainsRune(line, sentinelUser) {
		return true
	}
	if s.usernameStamp.MatchString(line) {
		return true
	}
	if s.votePhrase.MatchString(line) {
		return true
	}
	if s.iconPrefix.MatchString(line) {
		return true
	}
	if s.bareURL.MatchString(line) {
		return true
	}
	if s.upvoted.MatchString(line) {
		return true
	}
	if s.allowlist != nil && s.allowlist.MatchString(line) {
		return true
	}
	return false
}

// extractComment pulls whatever structured fields the line yields. The
// question ID is stamped later by the parser once the ID exists.
func (s *Segmenter) extractComment(line string, span model.QuestionSpan) model.CommunityComment {
	c := model.CommunityComment{
		Content:    line,
		PageNumber: span.StartPage,
		SourceFile: span.SourceFile,
	}
	if m := s.usernameStamp.FindStringSubmatch(line); m != nil {
		c.Username = m[1]
		c.TimestampText = m[2]
	}
	switch {
	case s.highlyVoted.MatchString(line):
		c.VoteType = model.VoteHighlyVoted
	case s.mostRecent.MatchString(line):
		c.VoteType = model.VoteMostRecent
	case s.selected.MatchString(line):
		c.VoteType = model.VoteSelectedAnswer
	}
	if m := s.voteCount.FindStringSubmatch(line); m != nil {
		c.VoteCount, _ = strconv.Atoi(m[1])
	}
	return c
}
