package source

import (
	"fmt"
	"path/filepath"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/examsift/examsift/internal/model"
)

// readPDF extracts one PageText per PDF page. Row-grouped extraction keeps
// the line structure the boundary walk depends on; pages where it fails
// fall back to plain text, and pages with no extractable text are skipped.
func readPDF(path string) ([]model.PageText, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	var pages []model.PageText
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text := pageText(page)
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, model.PageText{
			PageNumber: i,
			SourceFile: name,
			Text:       text,
		})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", name)
	}
	return pages, nil
}

func pageText(page pdflib.Page) string {
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		var sb strings.Builder
		for _, row := range rows {
			for _, fragment := range row.Content {
				sb.WriteString(fragment.S)
			}
			sb.WriteString("\n")
		}
		return sb.String()
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
