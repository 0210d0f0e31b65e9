// Package auth issues and validates bearer tokens and decides whether a
// caller may use a given scope.
package auth

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// These are the roles a user can hold.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// ctxKey represents the type of value for the context key.
type ctxKey int

// Key is used to store/retrieve a Claims value from a context.Context.
const Key ctxKey = 1

// targetKey stores the user id an admin reads on behalf of.
const targetKey ctxKey = 2

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	UserId int    `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// Authorized returns true if the claims has at least one of the provided roles.
func (c Claims) Authorized(roles ...string) bool {
	for _, role := range roles {
		if c.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for Authorized(RoleAdmin).
func (c Claims) IsAdmin() bool {
	return c.Authorized(RoleAdmin)
}

// Auth is used to authenticate clients. It can generate a token for a
// set of user claims and recreate the claims by parsing the token.
type Auth struct {
	key    []byte
	ttl    time.Duration
	method jwt.SigningMethod
	now    func() time.Time
}

// New creates an Auth signing HS256 tokens with key.
func New(key string, ttl time.Duration) (*Auth, error) {
	if key == "" {
		return nil, errors.New("jwt key is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	return &Auth{
		key:    []byte(key),
		ttl:    ttl,
		method: jwt.SigningMethodHS256,
		now:    time.Now,
	}, nil
}

// GenerateToken generates a signed JWT token string for the user.
func (a *Auth) GenerateToken(userID int, role string) (string, error) {
	now := a.now()

	claims := Claims{
		UserId: userID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(a.ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(a.method, claims)

	str, err := token.SignedString(a.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}

	return str, nil
}

// ValidateToken recreates the Claims that were used to generate a token. It
// verifies that the token was signed using our key and is not expired.
func (a *Auth) ValidateToken(tokenStr string) (Claims, error) {
	var claims Claims

	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != a.method.Alg() {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return a.key, nil
	}

	token, err := jwt.ParseWithClaims(tokenStr, &claims, keyFunc)
	if err != nil {
		return Claims{}, errors.Wrap(err, "parsing token")
	}

	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}

	if claims.UserId <= 0 || !ValidRole(claims.Role) {
		return Claims{}, errors.New("token carries no usable identity")
	}

	return claims, nil
}

// SetClaims returns a copy of ctx carrying claims.
func SetClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, Key, claims)
}

// GetClaims returns the claims stored by the authentication middleware.
func GetClaims(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(Key).(Claims)
	return claims, ok
}

// SetTarget returns a copy of ctx carrying the delegated user id.
func SetTarget(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, targetKey, userID)
}

// GetTarget returns the delegated user id, nil when none was requested.
func GetTarget(ctx context.Context) *int {
	if id, ok := ctx.Value(targetKey).(int); ok {
		return &id
	}
	return nil
}
