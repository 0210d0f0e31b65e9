package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"attendance/tracker/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
)

type Scheme struct {
	Index       int
	Description string
	Query       string
}

var scheme = []Scheme{
	{
		Index:       1,
		Description: "CREATE TYPE \"user_role\" AS ENUM",
		Query: `
		DO $$ BEGIN
			CREATE TYPE "user_role" AS ENUM ('employee', 'admin');
		EXCEPTION
			WHEN duplicate_object THEN NULL;
		END $$;`,
	},
	{
		Index:       2,
		Description: "Create table: users.",
		Query: `
		CREATE TABLE IF NOT EXISTS users (
			id serial primary key,
			name text not null,
			email text not null,
			password text not null,
			role user_role not null default 'employee',
			created_at timestamp not null default now()
		);`,
	},
	{
		Index:       3,
		Description: "Unique index: users.email",
		Query: `
		CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email);`,
	},
	{
		Index:       4,
		Description: "Create table: attendance.",
		Query: `
		CREATE TABLE IF NOT EXISTS attendance (
			id serial primary key,
			user_id int not null references users(id),
			work_day date not null,
			check_in time,
			check_out time,
			created_at timestamp not null default now(),
			updated_at timestamp,
			CONSTRAINT attendance_check_out_after_check_in CHECK (check_out IS NULL OR check_in IS NOT NULL)
		);`,
	},
	{
		Index:       5,
		Description: "Unique index: one attendance row per user and day",
		Query: `
		CREATE UNIQUE INDEX IF NOT EXISTS attendance_user_id_work_day_key ON attendance (user_id, work_day);`,
	},
	{
		Index:       6,
		Description: "Index: attendance.work_day for the admin listing",
		Query: `
		CREATE INDEX IF NOT EXISTS attendance_work_day_idx ON attendance (work_day DESC);`,
	},
}

// MigrateUP applies every scheme step newer than the recorded version. A
// step that fails leaves the version marked dirty with the error; the next
// run retries it first.
func MigrateUP(ctx context.Context, db *postgresql.Database, log *slog.Logger) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (version int not null, dirty bool not null, error text);
	`); err != nil {
		return errors.Wrap(err, "creating schema_migrations")
	}

	var (
		version int
		dirty   bool
		er      sql.NullString
	)
	err := db.QueryRowContext(ctx, "SELECT version, dirty, error FROM schema_migrations").Scan(&version, &dirty, &er)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err = db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (0, false)`); err != nil {
			return errors.Wrap(err, "initialising schema_migrations")
		}
		version, dirty = 0, false
	} else if err != nil {
		return errors.Wrap(err, "reading schema_migrations")
	}

	if dirty {
		log.Warn("retrying dirty migration", "version", version, "error", er.String)
		for _, s := range scheme {
			if s.Index == version {
				if err := apply(ctx, db, s); err != nil {
					return err
				}
			}
		}
	}

	for _, s := range scheme {
		if s.Index <= version {
			continue
		}
		if err := apply(ctx, db, s); err != nil {
			return err
		}
		log.Info("migration applied", "version", s.Index, "description", s.Description)
	}

	return nil
}

func apply(ctx context.Context, db *postgresql.Database, s Scheme) error {
	if _, err := db.ExecContext(ctx, s.Query); err != nil {
		if _, uerr := db.ExecContext(ctx, `UPDATE schema_migrations SET error = ?, version = ?, dirty = true`, err.Error(), s.Index); uerr != nil {
			return errors.Wrap(uerr, "recording migration error")
		}
		return errors.Wrap(err, fmt.Sprintf("migrate error version: %d", s.Index))
	}

	if _, err := db.ExecContext(ctx, `UPDATE schema_migrations SET version = ?, dirty = false, error = null`, s.Index); err != nil {
		return errors.Wrap(err, "recording migration version")
	}

	return nil
}
