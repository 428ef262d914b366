package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const pdfTitle = "Product List"

var columnWidths = []float64{15, 55, 30, 30, 20, 30}

// PDFTable encodes the rows as a page-paginated PDF table with a title.
// Text runs through the cp1254 codepage translator so the catalog's Turkish
// names keep their diacritics. The header row repeats on every page; a
// zero-row input yields a valid title-and-header-only document.
func PDFTable(rows []Row) ([]byte, string, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1254")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(pdfTitle), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	writeHeader(pdf, tr)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			writeHeader(pdf, tr)
			pdf.SetFont("Helvetica", "", 9)
		}

		cells := []string{
			fmt.Sprintf("%d", row.ID),
			row.Name,
			row.Brand,
			row.Category,
			fmt.Sprintf("%d", row.Quantity),
			row.Created,
		}
		for i, cell := range cells {
			pdf.CellFormat(columnWidths[i], 7, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to encode pdf: %w", err)
	}

	return buf.Bytes(), timestampedFilename("products", "pdf"), nil
}

func writeHeader(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range headers {
		pdf.CellFormat(columnWidths[i], 7, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}
