package export

import (
	"fmt"
	"io"

	"attendance/tracker/internal/entity"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const sheet = "Attendance"

// AllXLSX writes the admin listing as a single sheet workbook.
func AllXLSX(w io.Writer, records []entity.AttendanceWithUser) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	for i, header := range allHeader {
		cell := fmt.Sprintf("%c1", 'A'+i)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return errors.Wrap(err, "writing header")
		}
	}

	rowNum := 2
	for _, r := range records {
		for i, value := range allRow(r) {
			cell := fmt.Sprintf("%c%d", 'A'+i, rowNum)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return errors.Wrapf(err, "writing row %d", rowNum)
			}
		}
		rowNum++
	}

	if err := f.SetColWidth(sheet, "A", "B", 28); err != nil {
		return errors.Wrap(err, "sizing columns")
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "saving workbook")
	}

	return nil
}
