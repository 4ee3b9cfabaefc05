package ledger

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteReportXLSX renders a course report as a spreadsheet for download.
func WriteReportXLSX(w io.Writer, courseID string, rows []StudentReport) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Attendance"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	_ = f.SetCellValue(sheet, "A1", "Course")
	_ = f.SetCellValue(sheet, "B1", courseID)

	headers := []string{"Student", "Attended", "Total Sessions", "Percentage"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return err
		}
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		values := []any{row.StudentID, row.AttendedSessions, row.TotalSessions, row.Percentage}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+3)
			if err != nil {
				return err
			}
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	return f.Write(w)
}
