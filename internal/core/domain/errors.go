package domain

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthenticated      = errors.New("not authorized to access this route")
	ErrForbidden            = errors.New("access forbidden")
	ErrTokenInvalid         = errors.New("token invalid")
	ErrTokenExpired         = errors.New("token expired")
	ErrMissingSigningSecret = errors.New("token signing secret is not configured")
)

// ValidationError describes rejected input. Message is safe to show to clients.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }
