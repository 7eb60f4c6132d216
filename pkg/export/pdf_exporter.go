package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pageContentWidth = 190.0

// PDFExporter renders a dataset as a key/value sheet: one block per row, one line per header.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType reports the MIME type of rendered output.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension reports the file extension of rendered output.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render creates an A4 portrait document.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetTitle(data.Title, true)
	pdf.SetFillColor(235, 235, 235)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	labelWidth := pageContentWidth * 0.35
	valueWidth := pageContentWidth - labelWidth
	for i, row := range data.Rows {
		if i > 0 {
			pdf.Ln(6)
		}
		for j, header := range data.Headers {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(labelWidth, 8, tr(header), "1", 0, "L", true, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(valueWidth, 8, tr(row[j]), "1", 1, "L", false, 0, "")
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
