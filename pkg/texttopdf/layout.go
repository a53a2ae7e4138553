package texttopdf

// Page geometry in millimetres. The values match an A4 portrait page with
// fpdf's default margins, so the layout computed here is exactly what the
// renderer draws.
const (
	PageWidth    = 210
	PageHeight   = 297
	LeftMargin   = 10
	TopMargin    = 10
	BottomMargin = 20
	RowHeight    = 10
	CellWidth    = 200

	// RowsPerPage is the number of rows that fit between the margins.
	RowsPerPage = (PageHeight - TopMargin - BottomMargin) / RowHeight

	FontFamily = "Arial"
	FontSize   = 12
)

// Layout places each line on its own row, starting a new page every
// RowsPerPage rows. Lines are never wrapped or truncated. Zero lines yield a
// single empty page.
func Layout(lines []string) Document {
	doc := Document{Pages: []Page{{}}}
	for _, line := range lines {
		last := &doc.Pages[len(doc.Pages)-1]
		if len(last.Rows) == RowsPerPage {
			doc.Pages = append(doc.Pages, Page{})
			last = &doc.Pages[len(doc.Pages)-1]
		}
		last.Rows = append(last.Rows, line)
	}
	return doc
}
