package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	return e.RenderWorkbook(Workbook{Title: title, Sheets: []Sheet{{Dataset: data}}})
}

// RenderWorkbook writes each sheet on its own page headed by the sheet name.
func (e *PDFExporter) RenderWorkbook(book Workbook) ([]byte, error) {
	if len(book.Sheets) == 0 {
		return nil, fmt.Errorf("pdf requires at least one sheet")
	}
	for _, sheet := range book.Sheets {
		if len(sheet.Headers) == 0 {
			return nil, fmt.Errorf("pdf requires at least one header")
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, sheet := range book.Sheets {
		pdf.AddPage()
		if book.Title != "" {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 10, tr(strings.ToUpper(book.Title)), "", 1, "C", false, 0, "")
		}
		if sheet.Name != "" {
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(0, 8, tr(sheet.Name), "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)

		pdf.SetFont("Arial", "B", 10)
		colWidth := 190.0 / float64(len(sheet.Headers))
		for _, header := range sheet.Headers {
			pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range sheet.Rows {
			for _, header := range sheet.Headers {
				pdf.CellFormat(colWidth, 7, tr(row[header]), "1", 0, "", false, 0, "")
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
