package texttopdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

// DefaultDocumentDate is stamped as creation and modification date so equal
// input renders to equal bytes.
var DefaultDocumentDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Renderer serializes a Document to PDF bytes
type Renderer struct {
	compress bool
	date     time.Time
}

// RendererOption configures a Renderer
type RendererOption func(*Renderer)

// WithCompression toggles stream compression in the output
func WithCompression(compress bool) RendererOption {
	return func(r *Renderer) {
		r.compress = compress
	}
}

// WithDocumentDate overrides the creation and modification date
func WithDocumentDate(t time.Time) RendererOption {
	return func(r *Renderer) {
		r.date = t
	}
}

// NewRenderer creates a Renderer with compression enabled
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		compress: true,
		date:     DefaultDocumentDate,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes every page of doc with one cell per row in the fixed font.
// Rows are transcoded to ISO-8859-1 for the core font; any rune outside that
// set fails the whole render.
func (r *Renderer) Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(LeftMargin, TopMargin, LeftMargin)
	// Pages are broken by Layout, not by fpdf.
	pdf.SetAutoPageBreak(false, BottomMargin)
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(r.date)
	pdf.SetModificationDate(r.date)
	pdf.SetCatalogSort(true)

	encoder := charmap.ISO8859_1.NewEncoder()
	for pageNo, page := range doc.Pages {
		pdf.AddPage()
		pdf.SetFont(FontFamily, "", FontSize)
		for rowNo, row := range page.Rows {
			text, err := encoder.String(row)
			if err != nil {
				return nil, fmt.Errorf("page %d row %d: unsupported character: %w", pageNo+1, rowNo+1, err)
			}
			pdf.CellFormat(CellWidth, RowHeight, text, "", 1, "", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
