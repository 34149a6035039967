package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/aqlanhadi/ledgr/logger"
	"github.com/dslipak/pdf"
	"github.com/unidoc/unipdf/v3/common/license"
	unipdf "github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// SetLicenseKey enables unipdf table detection with a metered API key. An
// empty key leaves unipdf unlicensed, in which case tables come from row
// geometry alone.
func SetLicenseKey(key string) error {
	if key == "" {
		return nil
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("unipdf license: %w", err)
	}
	return nil
}

// PDFSource reads page text with dslipak/pdf and table grids with unipdf,
// falling back to grids rebuilt from text row geometry.
type PDFSource struct {
	data   []byte
	reader *pdf.Reader
}

// NewPDFSource parses data as a PDF document.
func NewPDFSource(ctx context.Context, data []byte) (src *PDFSource, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &PDFSource{data: data, reader: r}, nil
}

// Pages returns the text of every page, one line per text row.
func (s *PDFSource) Pages(ctx context.Context) ([]string, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}

	pages := make([]string, len(rows))
	for i, pageRows := range rows {
		lines := make([]string, 0, len(pageRows))
		for _, row := range pageRows {
			if line := joinRow(row); line != "" {
				lines = append(lines, line)
			}
		}
		pages[i] = strings.Join(lines, "\n")
	}
	return pages, nil
}

// Tables returns the table grids unipdf detects. When unipdf finds nothing,
// or cannot run without a license, rows are split into cells on wide
// horizontal gaps instead.
func (s *PDFSource) Tables(ctx context.Context) ([]Table, error) {
	log := logger.FromContext(ctx)

	tables, err := unipdfTables(ctx, s.data)
	if err != nil {
		log.Debug().Err(err).Msg("table detection unavailable, using row geometry")
	}
	if len(tables) > 0 {
		return tables, nil
	}

	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	for i, pageRows := range rows {
		grid := make([][]string, 0, len(pageRows))
		for _, row := range pageRows {
			if cells := splitCells(row); len(cells) > 0 {
				grid = append(grid, cells)
			}
		}
		if len(grid) > 0 {
			tables = append(tables, Table{Page: i + 1, Rows: grid})
		}
	}
	return tables, nil
}

// rows collects the text rows of each page. A page that fails to decode is
// logged and left empty.
func (s *PDFSource) rows(ctx context.Context) (out [][]*pdf.Row, err error) {
	log := logger.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF content: %v", r)
		}
	}()

	numPages := s.reader.NumPage()
	out = make([][]*pdf.Row, 0, numPages)
	for no := 1; no <= numPages; no++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := s.reader.Page(no)
		if page.V.IsNull() {
			out = append(out, nil)
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			log.Warn().Err(err).Int("page", no).Msg("error getting text from page")
			out = append(out, nil)
			continue
		}
		out = append(out, rows)
	}
	return out, nil
}

func joinRow(row *pdf.Row) string {
	var builder strings.Builder
	builder.Grow(len(row.Content) * 20)

	for i, text := range row.Content {
		builder.WriteString(text.S)
		if i < len(row.Content)-1 {
			builder.WriteByte(' ')
		}
	}
	return strings.TrimSpace(builder.String())
}

// splitCells groups the fragments of a row into cells. A gap wider than one
// and a half times the font size starts a new cell.
func splitCells(row *pdf.Row) []string {
	var cells []string
	var current strings.Builder
	var prevEnd float64

	for i, text := range row.Content {
		size := text.FontSize
		if size <= 0 {
			size = 10
		}
		if i > 0 {
			gap := text.X - prevEnd
			switch {
			case gap > 1.5*size:
				if s := strings.TrimSpace(current.String()); s != "" {
					cells = append(cells, s)
				}
				current.Reset()
			case gap > 0.15*size:
				current.WriteByte(' ')
			}
		}
		current.WriteString(text.S)
		prevEnd = math.Max(prevEnd, text.X+text.W)
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		cells = append(cells, s)
	}
	return cells
}

func unipdfTables(ctx context.Context, data []byte) (tables []Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("table detection failed: %v", r)
		}
	}()

	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, err
	}

	for no := 1; no <= numPages; no++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := reader.GetPage(no)
		if err != nil {
			return nil, err
		}
		ex, err := unipdf.New(page)
		if err != nil {
			return nil, err
		}
		pageText, _, _, err := ex.ExtractPageText()
		if err != nil {
			return nil, err
		}

		for _, tt := range pageText.Tables() {
			grid := make([][]string, 0, len(tt.Cells))
			for _, row := range tt.Cells {
				cells := make([]string, len(row))
				for x, cell := range row {
					cells[x] = strings.TrimSpace(cell.Text)
				}
				grid = append(grid, cells)
			}
			tables = append(tables, Table{Page: no, Rows: grid})
		}
	}
	return tables, nil
}

// ExtractRowsFromPDFReader returns every non-empty text row of a PDF.
func ExtractRowsFromPDFReader(ctx context.Context, reader io.Reader) ([]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	src, err := NewPDFSource(ctx, data)
	if err != nil {
		return nil, err
	}
	pages, err := src.Pages(ctx)
	if err != nil {
		return nil, err
	}

	var rows []string
	for _, p := range pages {
		if p != "" {
			rows = append(rows, strings.Split(p, "\n")...)
		}
	}
	if len(rows) == 0 {
		return nil, errors.New("no text found in PDF")
	}
	return rows, nil
}
