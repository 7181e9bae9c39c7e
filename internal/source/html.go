package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/examsift/examsift/internal/model"
)

// readHTML loads a saved exam-dump page and extracts its visible text as a
// single page. Block elements become line breaks so the boundary walk sees
// the same structure a PDF would give it.
func readHTML(path string) ([]model.PageText, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read html source: %w", err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse html source: %w", err)
	}

	var sb strings.Builder
	collectText(doc, &sb)
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no extractable text in %s", filepath.Base(path))
	}

	return []model.PageText{{
		PageNumber: 1,
		SourceFile: filepath.Base(path),
		Text:       text,
	}}, nil
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "ul": true, "ol": true, "table": true,
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "head":
			return
		}
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
	if n.Type == html.ElementNode && blockElements[n.Data] {
		sb.WriteString("\n")
	}
}
