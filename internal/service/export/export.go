// Package export renders attendance listings as files.
package export

import (
	"encoding/csv"
	"io"

	"attendance/tracker/internal/entity"

	"github.com/pkg/errors"
)

// Absent is printed for a check-in or check-out that is not set.
const Absent = "—"

var (
	allHeader     = []string{"Name", "Email", "Date", "Check-In", "Check-Out"}
	monthlyHeader = []string{"Date", "Check-In", "Check-Out", "Worked Hours"}
)

func allRow(r entity.AttendanceWithUser) []string {
	return []string{r.User.Name, r.User.Email, r.WorkDay.String(), timeOrAbsent(r.CheckIn), timeOrAbsent(r.CheckOut)}
}

func monthlyRow(r entity.Attendance) []string {
	worked := Absent
	if r.FullDay() {
		worked = entity.FormatWorked(r.WorkedMinutes())
	}

	return []string{r.WorkDay.String(), timeOrAbsent(r.CheckIn), timeOrAbsent(r.CheckOut), worked}
}

func timeOrAbsent(t *entity.TimeOfDay) string {
	if t == nil {
		return Absent
	}
	return t.String()
}

// AllCSV writes the admin listing as Name,Email,Date,Check-In,Check-Out.
func AllCSV(w io.Writer, records []entity.AttendanceWithUser) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, allHeader)
	for _, r := range records {
		rows = append(rows, allRow(r))
	}

	return writeCSV(w, rows)
}

// MonthlyCSV writes one user's month as Date,Check-In,Check-Out,Worked Hours.
func MonthlyCSV(w io.Writer, records []entity.Attendance) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, monthlyHeader)
	for _, r := range records {
		rows = append(rows, monthlyRow(r))
	}

	return writeCSV(w, rows)
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, "writing csv")
	}
	return nil
}
