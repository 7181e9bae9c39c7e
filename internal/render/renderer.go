// Package render writes accepted questions to the configured output
// formats. Renderers never modify questions; every tabular output uses the
// same fixed column order so downstream spreadsheets line up across formats.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/examsift/examsift/internal/model"
)

// tableColumns is the fixed column order shared by CSV and Markdown.
var tableColumns = []string{
	"Question No", "Question Description", "Answer Options",
	"Community Answer", "Highly Voted Answer", "Most Recent Answer",
	"Claude Answer", "Latest Date", "Topic", "Page Number", "Source",
}

// Renderer writes question records in the configured formats.
type Renderer struct {
	cfg model.OutputFormatConfig
}

// NewRenderer creates a renderer. Zero truncation limits fall back to the
// documented defaults.
func NewRenderer(cfg model.OutputFormatConfig) *Renderer {
	if cfg.MaxDescriptionLength <= 0 {
		cfg.MaxDescriptionLength = 200
	}
	if cfg.MaxOptionsLength <= 0 {
		cfg.MaxOptionsLength = 300
	}
	return &Renderer{cfg: cfg}
}

// RenderAll writes every configured format into the output directory and
// returns the paths written. The json format also writes the flat community
// comment list when any comments were lifted.
func (r *Renderer) RenderAll(questions []*model.Question) ([]string, error) {
	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	for _, format := range r.cfg.Formats {
		var paths []string
		var err error

		switch strings.ToLower(format) {
		case "csv":
			path := filepath.Join(r.cfg.OutputDir, "questions.csv")
			err = r.RenderCSV(questions, path)
			paths = []string{path}
		case "markdown", "md":
			path := filepath.Join(r.cfg.OutputDir, "questions.md")
			err = r.RenderMarkdown(questions, path)
			paths = []string{path}
		case "json":
			path := filepath.Join(r.cfg.OutputDir, "questions.json")
			err = r.RenderJSON(questions, path)
			paths = []string{path}
			if err == nil {
				if comments := collectComments(questions); len(comments) > 0 {
					commentsPath := filepath.Join(r.cfg.OutputDir, "comments.json")
					if err = r.RenderComments(comments, commentsPath); err == nil {
						paths = append(paths, commentsPath)
					}
				}
			}
		case "web":
			path := filepath.Join(r.cfg.OutputDir, "questions_web.json")
			err = r.RenderWebExport(questions, path)
			paths = []string{path}
		default:
			return written, fmt.Errorf("unknown output format: %s", format)
		}

		if err != nil {
			return written, fmt.Errorf("render %s: %w", format, err)
		}
		written = append(written, paths...)
	}

	return written, nil
}

// tabularRow formats one question in the fixed column order.
func (r *Renderer) tabularRow(q *model.Question) []string {
	number := q.OriginalNumber
	if number == "" {
		number = q.ID
	}

	return []string{
		number,
		truncate(q.Description, r.cfg.MaxDescriptionLength),
		truncate(joinOptions(q), r.cfg.MaxOptionsLength),
		q.CommunityAnswer,
		q.HighlyVotedAnswer,
		q.MostRecentAnswer,
		q.ClaudeAnswer,
		q.LatestDate,
		q.Topic,
		strconv.Itoa(q.PageNumber),
		q.SourceFile,
	}
}

// joinOptions flattens the option map as "A: text; B: text" in letter order.
func joinOptions(q *model.Question) string {
	parts := make([]string, 0, len(q.Options))
	for _, letter := range q.SortedOptions() {
		parts = append(parts, letter+": "+q.Options[letter])
	}
	return strings.Join(parts, "; ")
}

// truncate cuts text to max runes, ellipsis included in the budget.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func collectComments(questions []*model.Question) []model.CommunityComment {
	var comments []model.CommunityComment
	for _, q := range questions {
		comments = append(comments, q.Comments...)
	}
	return comments
}

// distinctSorted returns the unique non-empty values in sorted order.
func distinctSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
