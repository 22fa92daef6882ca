package apperr

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Status maps an error kind to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ToHuma converts err into a huma status error. Server errors never expose
// the underlying cause.
func ToHuma(err error) error {
	if err == nil {
		return nil
	}
	var se huma.StatusError
	if errors.As(err, &se) {
		return err
	}
	status := Status(err)
	if status == http.StatusInternalServerError {
		var appErr *Error
		if errors.As(err, &appErr) {
			return huma.Error500InternalServerError(appErr.Message)
		}
		return huma.Error500InternalServerError("internal server error")
	}
	return huma.NewError(status, Message(err))
}
