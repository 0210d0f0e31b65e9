package auth

import (
	"context"

	"attendance/tracker/internal/entity"
)

type User interface {
	Create(ctx context.Context, u entity.User) (entity.User, error)
	GetByEmail(ctx context.Context, email string) (entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
}

type Tokens interface {
	GenerateToken(userID int, role string) (string, error)
}
