package attendance

import (
	"testing"

	"attendance/tracker/internal/entity"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, day, in, out string) entity.Attendance {
	t.Helper()

	d, err := date.ParseDate(day)
	require.NoError(t, err)

	a := entity.Attendance{WorkDay: d}
	if in != "" {
		v, err := entity.ParseTimeOfDay(in)
		require.NoError(t, err)
		a.CheckIn = &v
	}
	if out != "" {
		v, err := entity.ParseTimeOfDay(out)
		require.NoError(t, err)
		a.CheckOut = &v
	}
	return a
}

func TestSummarizeMonth(t *testing.T) {
	june := entity.Month{Year: 2025, Month: 6}

	records := []entity.Attendance{
		record(t, "2025-06-17", "09:01", "17:05"),
		record(t, "2025-06-18", "09:00", "17:00"),
		record(t, "2025-06-19", "09:00", ""),
		record(t, "2025-06-20", "18:00", "09:00"),
		record(t, "2025-07-01", "09:00", "17:00"),
		record(t, "2024-06-18", "09:00", "17:00"),
	}
	before := append([]entity.Attendance(nil), records...)

	got := SummarizeMonth(records, june)

	assert.Equal(t, Summary{
		Total:        4,
		FullDays:     3,
		HalfDays:     1,
		TotalMinutes: 484 + 480 - 540,
		TotalHours:   "7h 4m",
	}, got)
	assert.Equal(t, before, records)
}

func TestSummarizeMonth_BackwardsSpanSubtracts(t *testing.T) {
	june := entity.Month{Year: 2025, Month: 6}

	got := SummarizeMonth([]entity.Attendance{
		record(t, "2025-06-17", "17:00", "09:00"),
		record(t, "2025-06-18", "09:00", "17:00"),
	}, june)

	assert.Equal(t, 2, got.FullDays)
	assert.Equal(t, 0, got.TotalMinutes)
	assert.Equal(t, "0h 0m", got.TotalHours)
}

func TestSummarizeMonth_Empty(t *testing.T) {
	got := SummarizeMonth(nil, entity.Month{Year: 2025, Month: 6})
	assert.Equal(t, Summary{TotalHours: "0h 0m"}, got)
}

func TestFilterMonth(t *testing.T) {
	records := []entity.Attendance{
		record(t, "2025-06-18", "09:00", ""),
		record(t, "2025-05-31", "09:00", ""),
		record(t, "2025-06-01", "09:00", ""),
	}

	got := FilterMonth(records, entity.Month{Year: 2025, Month: 6})
	require.Len(t, got, 2)
	assert.Equal(t, "2025-06-18", got[0].WorkDay.String())
	assert.Equal(t, "2025-06-01", got[1].WorkDay.String())
}
