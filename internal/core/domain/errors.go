package domain

import "errors"

var (
	// ErrAuthentication is returned for an unknown username and for a wrong
	// password alike, so callers cannot tell which part was wrong.
	ErrAuthentication = errors.New("invalid username or password")
	// ErrConfiguration marks a missing, unreadable or corrupted credential store.
	ErrConfiguration = errors.New("configuration error")
	// ErrSerialization marks a fatal audit log persistence failure.
	ErrSerialization = errors.New("serialization error")

	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrTooManyAttempts = errors.New("too many failed login attempts")
	ErrValidation      = errors.New("validation failed")
	ErrProtectedUser   = errors.New("the primary administrator cannot be deleted")
	ErrUserExists      = errors.New("user already exists")
)
