package common

import (
	"context"
	"regexp"
	"strings"
)

var cellSeparator = regexp.MustCompile(`\t+| {2,}`)

// TextSource serves statement text that was already extracted from a PDF.
// Pages are separated by form feeds and table cells by tabs or runs of two
// or more spaces.
type TextSource struct {
	pages []string
}

// NewTextSource splits text into pages.
func NewTextSource(text string) *TextSource {
	return &TextSource{pages: strings.Split(text, "\f")}
}

// Pages returns the page texts.
func (s *TextSource) Pages(ctx context.Context) ([]string, error) {
	return s.pages, nil
}

// Tables treats every line with at least two cells as a table row.
func (s *TextSource) Tables(ctx context.Context) ([]Table, error) {
	var tables []Table
	for i, page := range s.pages {
		var grid [][]string
		for _, line := range strings.Split(page, "\n") {
			var cells []string
			for _, c := range cellSeparator.Split(strings.TrimSpace(line), -1) {
				if c = strings.TrimSpace(c); c != "" {
					cells = append(cells, c)
				}
			}
			if len(cells) > 1 {
				grid = append(grid, cells)
			}
		}
		if len(grid) > 0 {
			tables = append(tables, Table{Page: i + 1, Rows: grid})
		}
	}
	return tables, nil
}
