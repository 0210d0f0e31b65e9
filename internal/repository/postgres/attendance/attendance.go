package attendance

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/pkg/repository/postgresql"
	"attendance/tracker/internal/repository/postgres"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

// likeEscaper makes user input match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Repository is the record store. The (user_id, work_day) unique index is
// what keeps concurrent check-ins from producing two rows.
type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// Create inserts a new record. It returns postgres.ErrDuplicate when the
// user already has a record for that day.
func (r Repository) Create(ctx context.Context, a entity.Attendance) (entity.Attendance, error) {
	row := newRecord(a)
	row.CreatedAt = time.Now()

	err := r.NewInsert().
		Model(&row).
		ExcludeColumn("id", "updated_at").
		On("CONFLICT (user_id, work_day) DO NOTHING").
		Returning("*").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Attendance{}, postgres.ErrDuplicate
	}
	if err != nil {
		return entity.Attendance{}, errors.Wrap(err, "creating attendance")
	}

	return row.entity(), nil
}

// SetCheckOut sets check_out on the user's record for day, but only while it
// is still unset. postgres.ErrNotFound means there is no record,
// postgres.ErrConflict means check_out was already set.
func (r Repository) SetCheckOut(ctx context.Context, userID int, day date.Date, at entity.TimeOfDay) (entity.Attendance, error) {
	var row record

	err := r.NewUpdate().
		Model(&row).
		Set("check_out = ?", at).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ? AND work_day = ? AND check_in IS NOT NULL AND check_out IS NULL", userID, day.String()).
		Returning("*").
		Scan(ctx)
	if err == nil {
		return row.entity(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return entity.Attendance{}, errors.Wrap(err, "updating attendance check_out")
	}

	exists, err := r.NewSelect().
		Model((*record)(nil)).
		Where("user_id = ? AND work_day = ?", userID, day.String()).
		Exists(ctx)
	if err != nil {
		return entity.Attendance{}, errors.Wrap(err, "selecting attendance")
	}
	if !exists {
		return entity.Attendance{}, postgres.ErrNotFound
	}

	return entity.Attendance{}, postgres.ErrConflict
}

// ListByUser returns the user's records, most recent day first.
func (r Repository) ListByUser(ctx context.Context, userID int) ([]entity.Attendance, error) {
	var rows []record

	err := r.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("work_day DESC", "id DESC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(err, "selecting attendance")
	}

	list := make([]entity.Attendance, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.entity())
	}

	return list, nil
}

// ListAll returns every record joined with its owner that matches filter,
// most recent day first.
func (r Repository) ListAll(ctx context.Context, filter entity.AttendanceFilter) ([]entity.AttendanceWithUser, error) {
	var (
		rows  []recordWithUser
		where string
		args  []interface{}
	)

	if filter.Search != nil {
		if search := strings.TrimSpace(*filter.Search); search != "" {
			pattern := "%" + likeEscaper.Replace(search) + "%"
			where = "WHERE u.name ILIKE ? OR u.email ILIKE ? OR a.work_day::text ILIKE ?"
			args = append(args, pattern, pattern, pattern)
		}
	}

	query := `
		SELECT
			a.id,
			a.user_id,
			a.work_day,
			a.check_in,
			a.check_out,
			u.name  AS user_name,
			u.email AS user_email
		FROM attendance AS a
		JOIN users u ON u.id = a.user_id
		` + where + `
		ORDER BY a.work_day DESC, a.id DESC
	`

	if err := r.NewRaw(query, args...).Scan(ctx, &rows); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(err, "selecting attendance list")
	}

	list := make([]entity.AttendanceWithUser, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.entity())
	}

	return list, nil
}
