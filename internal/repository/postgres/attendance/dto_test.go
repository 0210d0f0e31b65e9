package attendance

import (
	"testing"
	"time"

	"attendance/tracker/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkDay_Scan(t *testing.T) {
	var d workDay

	require.NoError(t, d.Scan("2025-06-18"))
	assert.Equal(t, "2025-06-18", d.String())

	require.NoError(t, d.Scan([]byte("2025-06-19T00:00:00Z")))
	assert.Equal(t, "2025-06-19", d.String())

	require.NoError(t, d.Scan(time.Date(2025, 6, 20, 0, 0, 0, 0, time.FixedZone("x", -5*60*60))))
	assert.Equal(t, "2025-06-20", d.String())

	assert.Error(t, d.Scan("18/06/2025"))
	assert.Error(t, d.Scan(20250618))

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-06-20", v)
}

func TestRecord_Entity(t *testing.T) {
	var d workDay
	require.NoError(t, d.Scan("2025-06-18"))

	in := entity.TimeOfDay{Hour: 9, Minute: 15}
	row := recordWithUser{ID: 4, UserID: 2, WorkDay: d, CheckIn: &in, UserName: "Alice", UserEmail: "alice@example.com"}

	got := row.entity()
	assert.Equal(t, 4, got.ID)
	assert.Equal(t, entity.Owner{ID: 2, Name: "Alice", Email: "alice@example.com"}, got.User)
	assert.True(t, got.HalfDay())

	back := newRecord(got.Attendance).entity()
	assert.Equal(t, got.Attendance, back)
}
