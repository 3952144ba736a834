package tracking

import "errors"

var (
	// ErrValidation marks requests with missing or malformed fields.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a token does not exist.
	ErrNotFound = errors.New("token not found")
	// ErrExpired is returned when a token's expiry lies in the past.
	ErrExpired = errors.New("token expired")
)
