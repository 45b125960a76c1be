package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/middleware"
)

const maxIDLength = 64

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString("userID")
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID reads an opaque ID path parameter.
// Returns ErrInvalidInput if the parameter is empty or too long.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id := strings.TrimSpace(c.Param(param))
	if id == "" || len(id) > maxIDLength {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.RenderError(c, err)
}

// syncFailure returns the AppError of err when it is a cloud upload failure
// that followed a successful local change, and nil otherwise.
func syncFailure(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return nil
	}
	switch appErr.Code {
	case apperrors.ErrCloudUnavailable.Code,
		apperrors.ErrCloudAuth.Code,
		apperrors.ErrCloudNotConfigured.Code,
		apperrors.ErrDataIntegrity.Code,
		apperrors.ErrInvalidPayload.Code:
		return appErr
	}
	return nil
}

// respondDeleted answers a delete whose local part succeeded. An upload
// failure is reported alongside the result so clients can retry the sync.
func respondDeleted(c *gin.Context, body gin.H, uploadErr error) {
	if appErr := syncFailure(uploadErr); appErr != nil {
		body["sync_error"] = ErrorDetail{Code: appErr.Code, Message: appErr.Message}
	}
	c.JSON(http.StatusOK, body)
}
