// Package postgres holds the errors shared by the postgres repositories.
package postgres

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate")

	// ErrConflict is returned when a conditional update finds the row in a
	// state that does not allow the change.
	ErrConflict = errors.New("conflict")
)
