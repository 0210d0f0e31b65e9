package entity

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int       `json:"id"        bun:"id,pk,autoincrement"`
	Name      string    `json:"name"      bun:"name"`
	Email     string    `json:"email"     bun:"email"`
	Password  string    `json:"-"         bun:"password"`
	Role      string    `json:"role"      bun:"role"`
	CreatedAt time.Time `json:"createdAt" bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
