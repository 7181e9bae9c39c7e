package render

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/examsift/examsift/internal/model"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"#", `\#`,
)

// RenderMarkdown writes the question table as a Markdown document. The
// statistics footer is appended when the renderer is configured for it.
func (r *Renderer) RenderMarkdown(questions []*model.Question, path string) error {
	var b strings.Builder

	b.WriteString("# Certification Exam Questions\n\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total Questions: %d\n\n", len(questions))

	b.WriteString("| " + strings.Join(tableColumns, " | ") + " |\n")
	sep := make([]string, len(tableColumns))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")

	for _, q := range questions {
		row := r.tabularRow(q)
		for i, cell := range row {
			row[i] = markdownEscaper.Replace(cell)
		}
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}

	if r.cfg.IncludeFooter {
		writeStatistics(&b, questions)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown file: %w", err)
	}
	return nil
}

func writeStatistics(b *strings.Builder, questions []*model.Question) {
	b.WriteString("\n## Statistics\n\n")
	fmt.Fprintf(b, "- Total questions: %d\n", len(questions))

	bySource := make(map[string]int)
	byTopic := make(map[string]int)
	withCommunity := 0
	withClaude := 0
	highConfidence := 0
	confidenceSum := 0.0

	for _, q := range questions {
		bySource[q.SourceFile]++
		if q.Topic != "" {
			byTopic[q.Topic]++
		}
		if q.CommunityAnswer != "" {
			withCommunity++
		}
		if q.ClaudeAnswer != "" {
			withClaude++
		}
		if q.Confidence >= 0.8 {
			highConfidence++
		}
		confidenceSum += q.Confidence
	}

	if len(bySource) > 0 {
		b.WriteString("\n### Questions per Source\n\n")
		sources := make([]string, 0, len(bySource))
		for s := range bySource {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		for _, s := range sources {
			fmt.Fprintf(b, "- %s: %d\n", s, bySource[s])
		}
	}

	if len(byTopic) > 0 {
		b.WriteString("\n### Questions per Topic\n\n")
		topics := make([]string, 0, len(byTopic))
		for t := range byTopic {
			topics = append(topics, t)
		}
		sort.Slice(topics, func(i, j int) bool {
			if byTopic[topics[i]] != byTopic[topics[j]] {
				return byTopic[topics[i]] > byTopic[topics[j]]
			}
			return topics[i] < topics[j]
		})
		for _, t := range topics {
			fmt.Fprintf(b, "- %s: %d\n", t, byTopic[t])
		}
	}

	if len(questions) > 0 {
		total := float64(len(questions))
		b.WriteString("\n### Coverage\n\n")
		fmt.Fprintf(b, "- Community answers: %d (%.1f%%)\n", withCommunity, 100*float64(withCommunity)/total)
		fmt.Fprintf(b, "- Claude answers: %d (%.1f%%)\n", withClaude, 100*float64(withClaude)/total)
		fmt.Fprintf(b, "- Average confidence: %.2f\n", confidenceSum/total)
		fmt.Fprintf(b, "- High confidence (>= 0.8): %d\n", highConfidence)
	}
}
