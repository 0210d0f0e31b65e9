package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Context carries the gin context plus the request scoped context.Context
// that middleware enriches (claims, delegated target).
type Context struct {
	*gin.Context
	Ctx context.Context

	log         *slog.Logger
	queryErrors []string
}

// Respond sends data to the client as JSON.
func (c *Context) Respond(data interface{}, status int) error {
	if status == http.StatusNoContent {
		c.Status(status)
		return nil
	}

	c.JSON(status, data)
	return nil
}

// RespondError sends an error response back to the client. Errors that are
// not *Error are logged and reported without detail.
func (c *Context) RespondError(err error) error {
	var webErr *Error
	if errors.As(err, &webErr) {
		return c.Respond(ErrorResponse{
			Status: false,
			Error:  webErr.Error(),
			Code:   webErr.ErrorCode(),
		}, webErr.Status)
	}

	if c.log != nil {
		c.log.Error("unexpected error",
			"path", c.Request.URL.Path,
			"error", err,
		)
	}

	return c.Respond(ErrorResponse{
		Status: false,
		Error:  http.StatusText(http.StatusInternalServerError),
		Code:   CodeInternal,
	}, http.StatusInternalServerError)
}

// BindFunc decodes the request body into data and checks that the named
// fields are set.
func (c *Context) BindFunc(data interface{}, requiredFields ...string) error {
	if err := c.ShouldBind(data); err != nil {
		return NewRequestError(errors.Wrap(err, "binding request"), http.StatusBadRequest)
	}

	return ValidateStruct(data, requiredFields...)
}

// GetQueryFunc reads an optional query parameter and converts it to the
// requested kind. It returns *int, *bool, *string or nil. Conversion
// failures are collected and reported by ValidQuery.
func (c *Context) GetQueryFunc(kind reflect.Kind, key string) interface{} {
	raw, ok := c.GetQuery(key)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return nil
	}

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.queryErrors = append(c.queryErrors, fmt.Sprintf("%s must be an integer", key))
			return nil
		}
		return &v
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.queryErrors = append(c.queryErrors, fmt.Sprintf("%s must be a boolean", key))
			return nil
		}
		return &v
	case reflect.String:
		return &raw
	}

	c.queryErrors = append(c.queryErrors, fmt.Sprintf("%s has unsupported type %s", key, kind))
	return nil
}

// ValidQuery reports the conversion errors collected by GetQueryFunc.
func (c *Context) ValidQuery() error {
	if len(c.queryErrors) == 0 {
		return nil
	}

	return NewRequestError(errors.New("invalid query: "+strings.Join(c.queryErrors, "; ")), http.StatusBadRequest)
}

// ValidateStruct checks that every named field of the struct pointed to by
// data holds a non zero value.
func ValidateStruct(data interface{}, requiredFields ...string) error {
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return NewRequestError(errors.New("request is empty"), http.StatusBadRequest)
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil
	}

	var missing []string
	for _, name := range requiredFields {
		field, ok := v.Type().FieldByName(name)
		if !ok {
			continue
		}

		fv := v.FieldByName(name)
		if fv.IsZero() {
			missing = append(missing, fieldLabel(field))
			continue
		}
		if fv.Kind() == reflect.String && strings.TrimSpace(fv.String()) == "" {
			missing = append(missing, fieldLabel(field))
		}
	}

	if len(missing) > 0 {
		return NewRequestError(errors.New(strings.Join(missing, ", ")+" is required"), http.StatusBadRequest)
	}

	return nil
}

func fieldLabel(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if name := strings.Split(tag, ",")[0]; name != "" && name != "-" {
			return name
		}
	}

	return f.Name
}
