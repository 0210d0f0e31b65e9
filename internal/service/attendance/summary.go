package attendance

import (
	"attendance/tracker/internal/entity"
)

// Summary aggregates the records of one month.
type Summary struct {
	Total        int    `json:"total"`
	FullDays     int    `json:"fullDays"`
	HalfDays     int    `json:"halfDays"`
	TotalMinutes int    `json:"totalMinutes"`
	TotalHours   string `json:"totalHours"`
}

// FilterMonth keeps the records whose day falls in month, in input order.
func FilterMonth(records []entity.Attendance, month entity.Month) []entity.Attendance {
	out := make([]entity.Attendance, 0, len(records))
	for _, r := range records {
		if month.Contains(r.WorkDay) {
			out = append(out, r)
		}
	}

	return out
}

// SummarizeMonth counts the records of month. It only reads its input.
func SummarizeMonth(records []entity.Attendance, month entity.Month) Summary {
	var s Summary

	for _, r := range records {
		if !month.Contains(r.WorkDay) {
			continue
		}

		s.Total++
		switch {
		case r.FullDay():
			s.FullDays++
			s.TotalMinutes += r.WorkedMinutes()
		case r.HalfDay():
			s.HalfDays++
		}
	}

	s.TotalHours = entity.FormatWorked(s.TotalMinutes)

	return s
}
