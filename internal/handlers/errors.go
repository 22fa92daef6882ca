package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/trip-planner-api/internal/apperr"
	"go.uber.org/zap"
)

var defaultNewError = huma.NewError

// Request validation failures are reported as 400 like every other
// validation error.
func init() {
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		return defaultNewError(status, msg, errs...)
	}
}

// toHTTP converts a service error for the client and logs server-side failures.
func toHTTP(logger *zap.Logger, op string, err error) error {
	if apperr.Status(err) >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("operation", op), zap.Error(err))
	}
	return apperr.ToHuma(err)
}
