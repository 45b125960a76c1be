// Package errors provides custom error types for the budget tracker.
// All service-layer errors should use AppError so that handlers can render
// consistent responses without leaking internal details to clients.
package errors

import (
	"errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
	StatusCode int      `json:"-"`
	Internal   error    `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so that
// wrapped copies of a sentinel still match it.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithDetails creates a new AppError carrying a list of field-level problems,
// typically the output of a validator.
func WithDetails(sentinel *AppError, details []string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    details,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account temporarily locked after repeated failed logins", StatusCode: http.StatusTooManyRequests}
	ErrRateLimited        = &AppError{Code: "RATE_LIMITED", Message: "Too many requests, slow down", StatusCode: http.StatusTooManyRequests}
)

// General errors.
var (
	ErrInvalidInput     = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrValidationFailed = &AppError{Code: "VALIDATION_FAILED", Message: "Validation failed", StatusCode: http.StatusUnprocessableEntity}
	ErrNotFound         = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer   = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Budget period errors.
var (
	ErrPeriodNotFound  = &AppError{Code: "PERIOD_NOT_FOUND", Message: "Budget period not found", StatusCode: http.StatusNotFound}
	ErrPeriodArchived  = &AppError{Code: "PERIOD_ARCHIVED", Message: "Archived budget periods are read-only", StatusCode: http.StatusConflict}
	ErrDuplicatePeriod = &AppError{Code: "DUPLICATE_PERIOD", Message: "A budget period for this year already exists", StatusCode: http.StatusConflict}
	ErrNoActivePeriod  = &AppError{Code: "NO_ACTIVE_PERIOD", Message: "There is no active budget period", StatusCode: http.StatusNotFound}
)

// Expense errors.
var (
	ErrExpenseNotFound = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
)

// Sync and cloud storage errors.
var (
	ErrDataIntegrity      = &AppError{Code: "DATA_INTEGRITY", Message: "Local data looks incomplete, upload skipped", StatusCode: http.StatusConflict}
	ErrInvalidPayload     = &AppError{Code: "INVALID_PAYLOAD", Message: "Remote budget data is malformed", StatusCode: http.StatusBadGateway}
	ErrCloudAuth          = &AppError{Code: "CLOUD_AUTH", Message: "Cloud storage credentials were rejected", StatusCode: http.StatusBadGateway}
	ErrCloudUnavailable   = &AppError{Code: "CLOUD_UNAVAILABLE", Message: "Cloud storage is temporarily unavailable", StatusCode: http.StatusServiceUnavailable}
	ErrCloudNotConfigured = &AppError{Code: "CLOUD_NOT_CONFIGURED", Message: "Cloud sync is not configured", StatusCode: http.StatusServiceUnavailable}
	ErrBackupNotFound     = &AppError{Code: "BACKUP_NOT_FOUND", Message: "Backup not found", StatusCode: http.StatusNotFound}
)
