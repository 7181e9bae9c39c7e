// Package boundary finds question-start markers in normalized page text and
// assigns each question its text span.
package boundary

import (
	"errors"
	"regexp"
	"strings"

	"github.com/examsift/examsift/internal/model"
	"github.com/examsift/examsift/internal/textclean"
)

// ErrNoBoundaries means a document contained no question-start markers.
// Callers decide policy; the whole-document fallback lives a layer up.
var ErrNoBoundaries = errors.New("no question boundaries found")

// Detector walks the concatenated page lines of one document, opening a span
// at every "Question #N" marker. Spans own their lines exclusively: the
// leading-context walk never revisits lines an earlier span consumed, so no
// span contains another question's content. Context before the first marker
// (case-study preambles) is fair game.
type Detector struct {
	marker       *regexp.Regexp
	contextNoise *regexp.Regexp
	cleaner      *textclean.Cleaner
	back         int
	forward      int
	minContext   int
}

// NewDetector builds a Detector from the processing config. Non-positive
// window values fall back to the documented defaults.
func NewDetector(cfg model.PDFProcessingConfig, cleaner *textclean.Cleaner) *Detector {
	back := cfg.BackWindow
	if back <= 0 {
		back = 20
	}
	forward := cfg.ForwardWindow
	if forward <= 0 {
		forward = 50
	}
	minContext := cfg.MinContextLength
	if minContext <= 0 {
		minContext = 15
	}
	return &Detector{
		// "#" is optional: some dumps print "Question 12" without it
		marker:       regexp.MustCompile(`(?i)question\s*#?\s*\d+`),
		contextNoise: regexp.MustCompile(`(?i)selected answer:|community answer:`),
		cleaner:      cleaner,
		back:         back,
		forward:      forward,
		minContext:   minContext,
	}
}

// docLine is one source line with its page provenance
type docLine struct {
	text   string
	page   int
	source string
}

// DetectBoundaries returns the question spans of a document in source order.
// Zero markers is a hard failure reported as ErrNoBoundaries.
func (d *Detector) DetectBoundaries(pages []model.PageText) ([]model.QuestionSpan, error) {
	lines := d.flatten(pages)

	var spans []model.QuestionSpan
	var cur model.QuestionSpan
	open := false
	budget := 0
	consumedUntil := -1

	for i := 0; i < len(lines); i++ {
		ln := lines[i]
		if ln.text != "" && d.marker.MatchString(ln.text) {
			if open {
				spans = append(spans, cur)
			}
			// the marker line rides along in RawLines at its position so
			// the parser can split leading context from the question body
			cur = model.QuestionSpan{
				StartPage:  ln.page,
				SourceFile: ln.source,
				HeaderLine: ln.text,
				RawLines:   append(d.leadingContext(lines, i, consumedUntil+1), ln.text),
			}
			open = true
			budget = d.forward
			consumedUntil = i
			continue
		}
		if open && budget > 0 {
			budget--
			consumedUntil = i
			if ln.text != "" {
				cur.RawLines = append(cur.RawLines, ln.text)
			}
		}
	}
	if open {
		spans = append(spans, cur)
	}

	if len(spans) == 0 {
		return nil, ErrNoBoundaries
	}
	return spans, nil
}

// flatten concatenates all pages into one line sequence, keeping page and
// file provenance per line. A line holding more than one marker is split at
// each later match so the boundary sits at the match position, not the line.
func (d *Detector) flatten(pages []model.PageText) []docLine {
	var lines []docLine
	for _, p := range pages {
		for _, raw := range strings.Split(p.Text, "\n") {
			trimmed := strings.TrimSpace(raw)
			for _, part := range d.splitMarkers(trimmed) {
				lines = append(lines, docLine{text: part, page: p.PageNumber, source: p.SourceFile})
			}
		}
	}
	return lines
}

// splitMarkers breaks a line holding two or more markers into virtual lines,
// one per marker, with any text before the first marker kept as an ordinary
// line. The common single-marker case returns the line untouched.
func (d *Detector) splitMarkers(line string) []string {
	if line == "" {
		return []string{""}
	}
	matches := d.marker.FindAllStringIndex(line, -1)
	if len(matches) < 2 {
		return []string{line}
	}
	var parts []string
	if head := strings.TrimSpace(line[:matches[0][0]]); head != "" {
		parts = append(parts, head)
	}
	for m := 0; m < len(matches); m++ {
		end := len(line)
		if m+1 < len(matches) {
			end = matches[m+1][0]
		}
		parts = append(parts, strings.TrimSpace(line[matches[m][0]:end]))
	}
	return parts
}

// leadingContext walks backward from the marker at index i, collecting up to
// back-window lines of substantial, non-noise context in source order. The
// walk floor is the first line no earlier span consumed, so context only
// ever comes from unowned text such as a case-study preamble.
func (d *Detector) leadingContext(lines []docLine, i, floor int) []string {
	stop := i - d.back
	if stop < floor {
		stop = floor
	}
	if stop < 0 {
		stop = 0
	}
	var ctx []string
	for j := i - 1; j >= stop; j-- {
		text := lines[j].text
		if text == "" {
			continue
		}
		if d.marker.MatchString(text) {
			break
		}
		if len(text) <= d.minContext {
			continue
		}
		if d.cleaner.IsNoiseLine(text) || d.contextNoise.MatchString(text) {
			continue
		}
		ctx = append(ctx, text)
	}
	// collected walking backward; restore source order
	for l, r := 0, len(ctx)-1; l < r; l, r = l+1, r-1 {
		ctx[l], ctx[r] = ctx[r], ctx[l]
	}
	return ctx
}
