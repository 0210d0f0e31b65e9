package auth

import (
	"net/http"
	"strings"

	"attendance/tracker/foundation/web"
	"attendance/tracker/internal/auth"
	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/repository/postgres"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Name     string `json:"name"     form:"name"`
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role"     form:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

type Controller struct {
	user   User
	tokens Tokens
}

func NewController(user User, tokens Tokens) *Controller {
	return &Controller{user: user, tokens: tokens}
}

func (uc Controller) Register(c *web.Context) error {
	var data RegisterRequest

	err := c.BindFunc(&data, "Name", "Email", "Password")
	if err != nil {
		return c.RespondError(err)
	}

	if data.Role == "" {
		data.Role = auth.RoleEmployee
	}
	if !auth.ValidRole(data.Role) {
		return c.RespondError(web.NewRequestError(errors.Errorf("unknown role %q", data.Role), http.StatusBadRequest))
	}
	if !strings.Contains(data.Email, "@") {
		return c.RespondError(web.NewRequestError(errors.New("email is invalid"), http.StatusBadRequest))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.RespondError(errors.Wrap(err, "hashing password"))
	}

	detail, err := uc.user.Create(c.Ctx, entity.User{
		Name:     strings.TrimSpace(data.Name),
		Email:    data.Email,
		Password: string(hash),
		Role:     data.Role,
	})
	if errors.Is(err, postgres.ErrDuplicate) {
		return c.RespondError(web.NewRequestError(errors.New("email already registered"), http.StatusBadRequest))
	}
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":    detail,
		"message": "User registered successfully",
		"status":  true,
	}, http.StatusOK)
}

func (uc Controller) Login(c *web.Context) error {
	var data LoginRequest

	err := c.BindFunc(&data, "Email", "Password")
	if err != nil {
		return c.RespondError(err)
	}

	// Unknown email and wrong password are reported the same way.
	invalid := web.NewCodedError(errors.New("invalid credentials"), http.StatusUnauthorized, web.CodeUnauthorized)

	detail, err := uc.user.GetByEmail(c.Ctx, data.Email)
	if errors.Is(err, postgres.ErrNotFound) {
		return c.RespondError(invalid)
	}
	if err != nil {
		return c.RespondError(err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(detail.Password), []byte(data.Password)); err != nil {
		return c.RespondError(invalid)
	}

	token, err := uc.tokens.GenerateToken(detail.ID, detail.Role)
	if err != nil {
		return c.RespondError(errors.Wrap(err, "generating token"))
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"user":  detail,
			"token": token,
		},
		"status": true,
	}, http.StatusOK)
}

// Users lists the directory for admins.
func (uc Controller) Users(c *web.Context) error {
	list, err := uc.user.List(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   len(list),
		},
		"status": true,
	}, http.StatusOK)
}
