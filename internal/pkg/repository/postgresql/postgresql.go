// Package postgresql opens the bun database used by every repository.
package postgresql

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// Config is the required properties to use the database.
type Config struct {
	User       string
	Password   string
	Host       string
	Name       string
	DisableTLS bool
	Debug      bool
}

// Database is embedded by the repositories.
type Database struct {
	*bun.DB
}

// New opens a connection pool. It does not wait for the server; use
// StatusCheck for that.
func New(cfg Config) (*Database, error) {
	if cfg.Host == "" || cfg.Name == "" {
		return nil, errors.New("missing required database configuration")
	}

	connector := pgdriver.NewConnector(
		pgdriver.WithAddr(cfg.Host),
		pgdriver.WithUser(cfg.User),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithDatabase(cfg.Name),
		pgdriver.WithInsecure(cfg.DisableTLS),
		pgdriver.WithApplicationName("attendance-api"),
	)

	sqldb := sql.OpenDB(connector)
	sqldb.SetMaxOpenConns(25)
	sqldb.SetConnMaxIdleTime(5 * time.Minute)

	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	return &Database{DB: db}, nil
}

// StatusCheck returns nil if it can successfully talk to the database.
func (d *Database) StatusCheck(ctx context.Context) error {
	var one int
	if err := d.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return errors.Wrap(err, "database status check")
	}
	return nil
}
