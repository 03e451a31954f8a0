package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("duplicate key value violates unique constraint on username")
	ErrInvalidUser        = errors.New("user rejected by storage constraints")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrPoolExhausted      = errors.New("timed out waiting for a database connection")
	ErrMalformedRequest   = errors.New("malformed request")
)
