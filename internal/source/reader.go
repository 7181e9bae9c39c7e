// Package source reads exam-dump documents into per-page text. PDF, plain
// text, and saved HTML inputs all come out as the same PageText slices, so
// the rest of the pipeline never cares where a page came from.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/examsift/examsift/internal/model"
)

// ErrNoSources means the input glob matched no files.
var ErrNoSources = errors.New("no input sources matched")

// List returns the files under dir matching pattern, in sorted order so
// runs are deterministic.
func List(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("bad input pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s under %s", ErrNoSources, pattern, dir)
	}
	sort.Strings(matches)
	return matches, nil
}

// Read extracts the pages of one document, dispatching on file extension.
func Read(path string) ([]model.PageText, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return readPDF(path)
	case ".txt", ".text", ".md":
		return readText(path)
	case ".html", ".htm":
		return readHTML(path)
	default:
		return nil, fmt.Errorf("unsupported source type %q", filepath.Ext(path))
	}
}
