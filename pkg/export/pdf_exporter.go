package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const unicodeFamily = "report"

// PDFExporter renders report tables into an A4 document, one table per page.
// Hangul needs a TrueType font; without fontPath the core Arial font is used.
type PDFExporter struct {
	fontPath string
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter(fontPath string) *PDFExporter {
	return &PDFExporter{fontPath: fontPath}
}

// Render creates a PDF document with a cover title followed by one page per table.
func (e *PDFExporter) Render(title string, tables []Table) ([]byte, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("pdf requires at least one table")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)

	family := "Arial"
	if e.fontPath != "" {
		pdf.AddUTF8Font(unicodeFamily, "", e.fontPath)
		family = unicodeFamily
	}

	for i, table := range tables {
		if len(table.Headers) == 0 {
			return nil, fmt.Errorf("pdf table %q has no headers", table.Title)
		}
		pdf.AddPage()
		if i == 0 && title != "" {
			pdf.SetFont(family, "", 16)
			pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
			pdf.Ln(4)
		}
		if table.Title != "" {
			pdf.SetFont(family, "", 13)
			pdf.CellFormat(0, 9, table.Title, "B", 1, "C", false, 0, "")
			pdf.Ln(3)
		}

		colWidth := 190.0 / float64(len(table.Headers))
		pdf.SetFont(family, "", 10)
		pdf.SetFillColor(235, 235, 235)
		for _, header := range table.Headers {
			pdf.CellFormat(colWidth, 8, header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont(family, "", 9)
		for _, row := range table.Rows {
			for j := range table.Headers {
				pdf.CellFormat(colWidth, 12, cell(row, j), "1", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
