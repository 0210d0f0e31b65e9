package entity

import (
	"fmt"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

// Month is a calendar month, written "YYYY-MM".
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a strict "YYYY-MM" value.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, errors.Errorf("month %q must be in YYYY-MM form", s)
	}

	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing d.
func MonthOf(d date.Date) Month {
	return Month{Year: d.Year(), Month: d.Month()}
}

// Contains reports whether d falls inside m.
func (m Month) Contains(d date.Date) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
