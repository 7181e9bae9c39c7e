package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/examsift/examsift/internal/model"
)

// RenderCSV writes the question table with a header row.
func (r *Renderer) RenderCSV(questions []*model.Question, path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(tableColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, q := range questions {
		if err := w.Write(r.tabularRow(q)); err != nil {
			return fmt.Errorf("write csv row %s: %w", q.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write csv file: %w", err)
	}
	return nil
}
