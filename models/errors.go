package models

import "errors"

// Error kinds shared by stores and services. Callers wrap them with context
// using fmt.Errorf("%w: ...") and match with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnavailable   = errors.New("unavailable")
	// ErrForbidden marks an attempt to change public content owned by someone else.
	ErrForbidden = errors.New("forbidden")
)
