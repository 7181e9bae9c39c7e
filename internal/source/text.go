package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/examsift/examsift/internal/model"
)

// readText loads a plain-text dump. Form feeds separate pages; a file
// without any is a single page.
func readText(path string) ([]model.PageText, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text source: %w", err)
	}

	name := filepath.Base(path)
	content := strings.ReplaceAll(string(raw), "\r\n", "\n")

	var pages []model.PageText
	for i, chunk := range strings.Split(content, "\f") {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		pages = append(pages, model.PageText{
			PageNumber: i + 1,
			SourceFile: name,
			Text:       chunk,
		})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", name)
	}
	return pages, nil
}
