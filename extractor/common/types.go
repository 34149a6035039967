package common

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SourceKind tags how a document's bytes should be read.
type SourceKind string

const (
	KindPDF     SourceKind = "pdf"
	KindText    SourceKind = "pdf-text"
	KindTabular SourceKind = "tabular"
)

// Document is one uploaded statement. It is discarded after extraction.
type Document struct {
	ID   string
	Name string
	Kind SourceKind
	Data []byte
}

// NewDocument tags data with a fresh identifier.
func NewDocument(name string, kind SourceKind, data []byte) Document {
	return Document{
		ID:   uuid.NewString(),
		Name: name,
		Kind: kind,
		Data: data,
	}
}

// KindFromName guesses the source kind from a file extension. Unknown
// extensions are treated as PDFs.
func KindFromName(name string) SourceKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return KindTabular
	case ".txt", ".text":
		return KindText
	default:
		return KindPDF
	}
}

// Line is a single line, or a reconstructed table row, of document text.
type Line struct {
	Document string
	Number   int
	Text     string
}

// Table is one grid of cells found on a page.
type Table struct {
	Page int
	Rows [][]string
}

// Source gives access to a document's text and table structure.
type Source interface {
	Pages(ctx context.Context) ([]string, error)
	Tables(ctx context.Context) ([]Table, error)
}

// Opener turns a document into a Source.
type Opener func(ctx context.Context, doc Document) (Source, error)

// Open is the default Opener.
func Open(ctx context.Context, doc Document) (Source, error) {
	switch doc.Kind {
	case KindPDF:
		return NewPDFSource(ctx, doc.Data)
	case KindText:
		return NewTextSource(string(doc.Data)), nil
	default:
		return nil, fmt.Errorf("cannot extract text from %s document %q", doc.Kind, doc.Name)
	}
}
