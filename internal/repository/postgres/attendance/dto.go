package attendance

import (
	"database/sql/driver"
	"time"

	"attendance/tracker/internal/entity"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type record struct {
	bun.BaseModel `bun:"table:attendance,alias:a"`

	ID        int               `bun:"id,pk,autoincrement"`
	UserID    int               `bun:"user_id,notnull"`
	WorkDay   workDay           `bun:"work_day,notnull"`
	CheckIn   *entity.TimeOfDay `bun:"check_in"`
	CheckOut  *entity.TimeOfDay `bun:"check_out"`
	CreatedAt time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt bun.NullTime      `bun:"updated_at"`
}

type recordWithUser struct {
	ID        int               `bun:"id"`
	UserID    int               `bun:"user_id"`
	WorkDay   workDay           `bun:"work_day"`
	CheckIn   *entity.TimeOfDay `bun:"check_in"`
	CheckOut  *entity.TimeOfDay `bun:"check_out"`
	UserName  string            `bun:"user_name"`
	UserEmail string            `bun:"user_email"`
}

func newRecord(a entity.Attendance) record {
	return record{
		ID:       a.ID,
		UserID:   a.UserID,
		WorkDay:  workDay{a.WorkDay},
		CheckIn:  a.CheckIn,
		CheckOut: a.CheckOut,
	}
}

func (r record) entity() entity.Attendance {
	return entity.Attendance{
		ID:       r.ID,
		UserID:   r.UserID,
		WorkDay:  r.WorkDay.Date,
		CheckIn:  r.CheckIn,
		CheckOut: r.CheckOut,
	}
}

func (r recordWithUser) entity() entity.AttendanceWithUser {
	return entity.AttendanceWithUser{
		Attendance: entity.Attendance{
			ID:       r.ID,
			UserID:   r.UserID,
			WorkDay:  r.WorkDay.Date,
			CheckIn:  r.CheckIn,
			CheckOut: r.CheckOut,
		},
		User: entity.Owner{
			ID:    r.UserID,
			Name:  r.UserName,
			Email: r.UserEmail,
		},
	}
}

// workDay maps a date.Date onto a postgres DATE column. It is written as
// "YYYY-MM-DD" so the session time zone never shifts the day.
type workDay struct {
	date.Date
}

func (d workDay) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *workDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		d.Date = entity.Today(v)
		return nil
	case string:
		if len(v) > len("2006-01-02") {
			v = v[:len("2006-01-02")]
		}
		parsed, err := date.ParseDate(v)
		if err != nil {
			return errors.Wrap(err, "converting work_day to date.Date")
		}
		d.Date = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	}

	return errors.Errorf("cannot scan %T into work_day", src)
}
