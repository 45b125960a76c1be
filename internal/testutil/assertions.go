package testutil

import (
	"errors"
	"strings"
	"testing"

	apperrors "budgettracker/internal/errors"
)

// AssertAppError checks that err is, or wraps, an *AppError with the given
// code and returns it for further checks.
func AssertAppError(t *testing.T, err error, expectedCode string) *apperrors.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected an AppError with code %s, got %T: %v", expectedCode, err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %s, got %s (%s)", expectedCode, appErr.Code, appErr.Message)
	}
	return appErr
}

// AssertErrorDetail checks that err carries validation details and that one
// of them contains fragment.
func AssertErrorDetail(t *testing.T, err error, fragment string) {
	t.Helper()

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected an AppError with details, got %T: %v", err, err)
	}
	for _, d := range appErr.Details {
		if strings.Contains(d, fragment) {
			return
		}
	}
	t.Errorf("no detail contains %q: %v", fragment, appErr.Details)
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
