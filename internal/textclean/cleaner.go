// Package textclean normalizes raw OCR page text before boundary detection:
// private-use icon glyphs, running headers and footers, hyphenated line
// wraps, and a fixed table of known OCR letter-substitution errors.
package textclean

import (
	"regexp"
	"strings"
)

// Cleaner holds the precompiled patterns and the OCR correction table.
// All methods are pure functions of their input; the zero-value Cleaner is
// not usable, construct with NewCleaner.
type Cleaner struct {
	puaGlyphs     *regexp.Regexp
	multiSpace    *regexp.Regexp
	anySpaceRun   *regexp.Regexp
	hyphenWrap    *regexp.Regexp
	siteURL       *regexp.Regexp
	noiseLine     *regexp.Regexp
	timestampLine *regexp.Regexp
	bareNumber    *regexp.Regexp
	singleChar    *regexp.Regexp
	flatFiles     *regexp.Regexp
	corrections   *strings.Replacer
}

// DefaultCorrections is the ordered old/new pair list for known OCR
// ligature corruptions. Longer corruptions come before their substrings so
// the replacer resolves them first.
func DefaultCorrections() []string {
	return []string{
		"ReconKgure", "Reconfigure",
		"ConKgure", "Configure",
		"traOc", "traffic",
		`solu"on`, "solution",
		`applica"on`, "application",
		`ques"on`, "question",
		`informa"on`, "information",
		`migra"on`, "migration",
		`opera"ons`, "operations",
		`computa"on`, "computation",
		`authen"cation`, "authentication",
		`Profess"onal`, "Professional",
		`Data"ow`, "Dataflow",
		"Data^ow", "Dataflow",
		"modiKed", "modified",
		"deKne", "define",
		"Knd", "find",
		"KreVox", "Firefox",
	}
}

// NewCleaner returns a Cleaner using the default correction table.
func NewCleaner() *Cleaner {
	return NewCleanerWithCorrections(DefaultCorrections())
}

// NewCleanerWithCorrections returns a Cleaner with a caller-supplied
// correction table, given as ordered old/new pairs.
func NewCleanerWithCorrections(pairs []string) *Cleaner {
	return &Cleaner{
		// Icon glyphs the source PDF renderer injects for bullets and
		// highlights, plus block-drawing characters from scan noise
		puaGlyphs: regexp.MustCompile(`[\x{F000}-\x{F8FF}\x{2588}\x{2590}\x{2591}]`),

		multiSpace:  regexp.MustCompile(`[ \t]{2,}`),
		anySpaceRun: regexp.MustCompile(`\s+`),

		// "infor-\n mation" -> "information"
		hyphenWrap: regexp.MustCompile(`(\w+)-\s*\n\s*(\w+)`),

		siteURL: regexp.MustCompile(`https?://www\.examtopics\.com\S*`),

		// Running header/footer lines from the dump site
		noiseLine: regexp.MustCompile(`(?i)examtopics|profess.{0,2}onal\s+cloud\s+architect|^\s*page\s+\d+\s*$`),

		timestampLine: regexp.MustCompile(`^\s*\d+\s+(?:years?|months?|weeks?|days?),?\s*(?:\d+\s+(?:months?|weeks?|days?)\s+)?ago`),

		bareNumber: regexp.MustCompile(`^\s*\d+\s*$`),
		singleChar: regexp.MustCompile(`^\s*[A-Za-z]\s*$`),

		// "^at Kles" is how OCR renders "flat files"; the ligature table
		// cannot express the two-word form
		flatFiles: regexp.MustCompile(`\^at\s+Kles`),

		corrections: strings.NewReplacer(pairs...),
	}
}

// Clean flattens text to a single normalized line: private-use glyphs
// removed, whitespace runs collapsed to one space, ends trimmed. It never
// alters alphanumeric content and is idempotent. Empty input yields empty
// output.
func (c *Cleaner) Clean(text string) string {
	if text == "" {
		return ""
	}
	text = c.puaGlyphs.ReplaceAllString(text, "")
	text = c.anySpaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CleanPage normalizes one page of text while preserving line structure:
// dump-site URLs and header/footer lines go away, hyphenated line wraps are
// rejoined, standalone page numbers and stray single characters are
// dropped, and doubled spaces collapse. Icon glyphs are deliberately kept:
// the community segmenter needs the sentinel codepoints, and the parser
// strips the rest from final text.
func (c *Cleaner) CleanPage(text string) string {
	if text == "" {
		return ""
	}
	text = c.siteURL.ReplaceAllString(text, "")
	text = c.hyphenWrap.ReplaceAllString(text, "$1$2")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = c.multiSpace.ReplaceAllString(line, " ")
		line = strings.TrimRight(line, " \t")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if c.noiseLine.MatchString(trimmed) || c.bareNumber.MatchString(trimmed) || c.singleChar.MatchString(trimmed) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// FixOCR applies the literal correction table plus the multi-word "flat
// files" repair. Safe to run repeatedly; corrected text contains no
// correction keys.
func (c *Cleaner) FixOCR(text string) string {
	if text == "" {
		return ""
	}
	text = c.corrections.Replace(text)
	return c.flatFiles.ReplaceAllString(text, "flat files")
}

// IsNoiseLine reports whether a line is running header/footer noise, a
// bare page number, or a relative-timestamp fragment. Shared with the
// boundary detector's context walk, which must not pull noise into spans.
func (c *Cleaner) IsNoiseLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	return c.noiseLine.MatchString(trimmed) ||
		c.bareNumber.MatchString(trimmed) ||
		c.timestampLine.MatchString(trimmed)
}
