package middleware

import (
	"net/http"
	"reflect"
	"strings"

	"attendance/tracker/foundation/web"
	"attendance/tracker/internal/auth"

	"github.com/pkg/errors"
)

// Authenticate resolves the bearer token into claims and authorizes the
// claims against scope once, before the handler runs. A missing or invalid
// token is 401, a forbidden scope is 403.
func Authenticate(a *auth.Auth, scope auth.Scope) web.Middleware {
	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(c *web.Context) error {

			// Expecting: Bearer <token>
			authStr := c.Request.Header.Get("Authorization")

			parts := strings.Split(authStr, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				err := errors.New("expected authorization header format: Bearer <token>")
				return c.RespondError(web.NewCodedError(err, http.StatusUnauthorized, web.CodeUnauthorized))
			}

			// Validate the token is signed by us.
			claims, err := a.ValidateToken(parts[1])
			if err != nil {
				return c.RespondError(web.NewCodedError(errors.New("invalid or expired token"), http.StatusUnauthorized, web.CodeUnauthorized))
			}

			if auth.Authorize(claims, scope) == auth.Forbidden {
				return c.RespondError(web.NewCodedError(errors.New("access denied"), http.StatusForbidden, web.CodeForbidden))
			}

			// Add claims to the context so that they can be retrieved later.
			c.Ctx = auth.SetClaims(c.Ctx, claims)

			// Call the next handler.
			return handler(c)
		}

		return h
	}

	return m
}

// Delegated reads the optional user id query parameter named key and
// decides whether the authenticated caller may read that user's records.
// It must run after Authenticate.
func Delegated(key string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(c *web.Context) error {
			claims, ok := auth.GetClaims(c.Ctx)
			if !ok {
				return c.RespondError(web.NewCodedError(errors.New("missing credentials"), http.StatusUnauthorized, web.CodeUnauthorized))
			}

			target, _ := c.GetQueryFunc(reflect.Int, key).(*int)
			if err := c.ValidQuery(); err != nil {
				return c.RespondError(err)
			}

			if auth.AuthorizeTarget(claims, target) == auth.Forbidden {
				return c.RespondError(web.NewCodedError(errors.New("access denied"), http.StatusForbidden, web.CodeForbidden))
			}

			if target != nil {
				c.Ctx = auth.SetTarget(c.Ctx, *target)
			}

			return handler(c)
		}

		return h
	}

	return m
}
