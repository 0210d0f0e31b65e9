package export

import (
	"fmt"
	"io"

	"attendance/tracker/internal/entity"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/pkg/errors"
)

// MonthlyPDF writes a one user month report: a title, the summary lines and
// the record table.
func MonthlyPDF(w io.Writer, title string, summary []string, records []entity.Attendance) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range summary {
		pdf.CellFormat(0, 7, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	widths := []float64{45, 35, 35, 45}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range monthlyHeader {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, r := range records {
		for i, value := range monthlyRow(r) {
			pdf.CellFormat(widths[i], 7, tr(value), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(records) == 0 {
		pdf.CellFormat(0, 8, "No records for this month.", "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 10, fmt.Sprintf("%d record(s)", len(records)), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "writing pdf")
	}

	return nil
}
