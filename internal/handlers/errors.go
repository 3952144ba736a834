package handlers

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/click-tracker/internal/tracking"
	"go.uber.org/zap"
)

// Request bodies that fail schema checks (wrong types, malformed timestamps
// or JSON) are invalid input, reported as 400 like every other validation
// failure instead of huma's default 422.
func init() {
	newError := huma.NewError
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		return newError(status, msg, errs...)
	}
}

// toHTTPError maps domain errors to HTTP errors. Anything unknown is logged
// and reported as a generic 500 so causes never reach the client.
func toHTTPError(logger *zap.Logger, op string, err error) error {
	switch {
	case errors.Is(err, tracking.ErrValidation):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, tracking.ErrNotFound):
		return huma.Error404NotFound("Link not found")
	case errors.Is(err, tracking.ErrExpired):
		return huma.NewError(http.StatusGone, "Link expired")
	default:
		logger.Error("request failed", zap.String("op", op), zap.Error(err))

		return huma.Error500InternalServerError("internal server error")
	}
}
