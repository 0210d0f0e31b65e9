package user

import (
	"context"
	"database/sql"
	"strings"

	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/pkg/repository/postgresql"
	"attendance/tracker/internal/repository/postgres"

	"github.com/pkg/errors"
)

// Repository is the user directory.
type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// Create inserts a user. The email must be unique; postgres.ErrDuplicate is
// returned otherwise.
func (r Repository) Create(ctx context.Context, u entity.User) (entity.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	err := r.NewInsert().
		Model(&u).
		ExcludeColumn("id", "created_at").
		On("CONFLICT (email) DO NOTHING").
		Returning("*").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, postgres.ErrDuplicate
	}
	if err != nil {
		return entity.User{}, errors.Wrap(err, "creating user")
	}

	return u, nil
}

// GetByEmail returns postgres.ErrNotFound when no user has that email.
func (r Repository) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	var detail entity.User

	err := r.NewSelect().
		Model(&detail).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, postgres.ErrNotFound
	}
	if err != nil {
		return entity.User{}, errors.Wrap(err, "selecting user by email")
	}

	return detail, nil
}

// List returns the whole directory ordered by name.
func (r Repository) List(ctx context.Context) ([]entity.User, error) {
	list := []entity.User{}

	err := r.NewSelect().
		Model(&list).
		Order("name ASC", "id ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(err, "selecting users")
	}

	return list, nil
}
