package domain

import "errors"

// Error kinds returned by core operations. All of them are expected,
// recoverable outcomes; callers branch with errors.Is.
var (
	ErrInvalidMealType = errors.New("invalid meal type")
	ErrInvalidDate     = errors.New("invalid date")
	ErrWindowClosed    = errors.New("opt-in window closed")
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrStorage         = errors.New("storage error")
)
