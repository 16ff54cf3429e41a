// Package errors defines the application error model: sentinel errors for
// errors.Is checks at the repository boundary, and AppError for errors that
// carry their own HTTP status and wire code.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrStorageFailure = errors.New("storage failure")
)

// AppError is a structured application error. Code is the machine-readable
// identifier written to the response body; Status is the HTTP status it maps
// to; Err is the wrapped cause, reachable through errors.Is/As.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(code string, status int, cause error, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: cause}
}

// NotFound reports that no resource with the given id exists.
func NotFound(resource, id string) *AppError {
	return newAppError("NOT_FOUND", http.StatusNotFound, ErrNotFound,
		fmt.Sprintf("%s with id %s not found", resource, id))
}

// AlreadyExists reports a uniqueness conflict on an arbitrary field.
func AlreadyExists(resource, field, value string) *AppError {
	return newAppError("ALREADY_EXISTS", http.StatusConflict, ErrAlreadyExists,
		fmt.Sprintf("%s with %s %q already exists", resource, field, value))
}

// DuplicateName reports a name-uniqueness conflict. Callers can tell it
// apart from a slug conflict by its code.
func DuplicateName(resource, name string) *AppError {
	return newAppError("DUPLICATE_NAME", http.StatusConflict, ErrAlreadyExists,
		fmt.Sprintf("%s named %q already exists", resource, name))
}

// DuplicateSlug reports a slug-uniqueness conflict.
func DuplicateSlug(resource, slug string) *AppError {
	return newAppError("DUPLICATE_SLUG", http.StatusConflict, ErrAlreadyExists,
		fmt.Sprintf("%s with slug %q already exists", resource, slug))
}

// InvalidInput reports a request the caller can fix.
func InvalidInput(message string) *AppError {
	return newAppError("INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput, message)
}

// Unauthorized reports a missing or invalid identity.
func Unauthorized(message string) *AppError {
	return newAppError("UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized, message)
}

// Forbidden reports an identity that lacks permission.
func Forbidden(message string) *AppError {
	return newAppError("FORBIDDEN", http.StatusForbidden, ErrForbidden, message)
}

// Internal wraps an unexpected failure. The cause stays reachable via
// Unwrap but is never written to the response.
func Internal(err error) *AppError {
	return newAppError("INTERNAL_ERROR", http.StatusInternalServerError, err,
		"an internal error occurred")
}

// StorageFailure reports a file-storage problem (image save or delete),
// keeping the underlying cause available via Unwrap.
func StorageFailure(operation string, err error) *AppError {
	return newAppError("STORAGE_FAILURE", http.StatusInternalServerError,
		fmt.Errorf("%w: %w", ErrStorageFailure, err),
		fmt.Sprintf("file storage %s failed", operation))
}

// Wrap adds context to err while preserving it for errors.Is/As.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus maps err to an HTTP status code, defaulting to 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
