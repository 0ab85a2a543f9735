package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
)

// Sentinels for errors.Is checks across package boundaries.
var (
	ErrMissingCredential = errors.New("credential not configured")
	ErrUpstreamStatus    = errors.New("upstream returned non-success status")
	ErrNotFound          = errors.New("not found")
	ErrInvalidValue      = errors.New("invalid value")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 500 when err is not an AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// MissingCredential reports an unset credential variable. It is raised before any
// network call is attempted.
func MissingCredential(name string) *AppError {
	return New(ErrMissingCredential, http.StatusInternalServerError,
		fmt.Sprintf("%s not set in environment variables", name))
}

// NotFound reports a well-formed upstream response that holds no matching record.
func NotFound(format string, args ...any) *AppError {
	return New(ErrNotFound, http.StatusNotFound, fmt.Sprintf(format, args...))
}

// InvalidValue reports a primary field that could not be parsed to a finite number.
func InvalidValue(format string, args ...any) *AppError {
	return New(ErrInvalidValue, http.StatusBadGateway, fmt.Sprintf(format, args...))
}

// InvalidArgument reports tool input that violates its declared schema.
func InvalidArgument(format string, args ...any) *AppError {
	return New(ErrInvalidArgument, http.StatusBadRequest, fmt.Sprintf(format, args...))
}
