package attendance

import (
	"net/http"

	"attendance/tracker/foundation/web"

	"github.com/pkg/errors"
)

// Error codes of the check-in/check-out lifecycle.
const (
	CodeAlreadyCheckedIn  = "ALREADY_CHECKED_IN"
	CodeNoCheckInFound    = "NO_CHECK_IN_FOUND"
	CodeAlreadyCheckedOut = "ALREADY_CHECKED_OUT"
)

var (
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrNoCheckInFound    = errors.New("check-in record not found")
	ErrAlreadyCheckedOut = errors.New("already checked out")
	ErrForbidden         = errors.New("access denied")
	ErrInternal          = errors.New("server error")
)

func alreadyCheckedIn() error {
	return web.NewCodedError(ErrAlreadyCheckedIn, http.StatusBadRequest, CodeAlreadyCheckedIn)
}

func noCheckInFound() error {
	return web.NewCodedError(ErrNoCheckInFound, http.StatusNotFound, CodeNoCheckInFound)
}

func alreadyCheckedOut() error {
	return web.NewCodedError(ErrAlreadyCheckedOut, http.StatusBadRequest, CodeAlreadyCheckedOut)
}

func forbidden() error {
	return web.NewCodedError(ErrForbidden, http.StatusForbidden, web.CodeForbidden)
}

func internal() error {
	return web.NewCodedError(ErrInternal, http.StatusInternalServerError, web.CodeInternal)
}
