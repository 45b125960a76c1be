package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"budgettracker/internal/services"
)

// SyncHandler exposes cloud synchronization and backups.
type SyncHandler struct {
	syncService services.SyncServicer
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncService services.SyncServicer) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// GetStatus reports the user's sync state.
// @Summary     Sync status
// @Tags        sync
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.SyncStatus "Sync status"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sync/status [get]
func (h *SyncHandler) GetStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.syncService.Status(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// CheckForUpdates reports whether the cloud copy changed since the last sync.
// @Summary     Check for remote changes
// @Tags        sync
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]bool "Whether the cloud copy changed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Cloud credentials rejected"
// @Failure     503 {object} ErrorResponse "Cloud unavailable or not configured"
// @Router      /sync/check [get]
func (h *SyncHandler) CheckForUpdates(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changed, err := h.syncService.CheckForUpdates(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"has_updates": changed})
}

// Sync reconciles the local and cloud copies.
// @Summary     Synchronize
// @Description Push or pull depending on which side changed since the last sync. When both changed, the newer one wins.
// @Tags        sync
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.SyncResult "What the sync did"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Local data looks incomplete"
// @Failure     502 {object} ErrorResponse "Cloud credentials rejected or remote data malformed"
// @Failure     503 {object} ErrorResponse "Cloud unavailable or not configured"
// @Router      /sync [post]
func (h *SyncHandler) Sync(c *gin.Context) {
	h.run(c, h.syncService.Sync)
}

// Push uploads the local budget.
// @Summary     Push local data
// @Description Replace the cloud copy with the local budget
// @Tags        sync
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.SyncResult "Upload result"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Local data looks incomplete"
// @Failure     502 {object} ErrorResponse "Cloud credentials rejected"
// @Failure     503 {object} ErrorResponse "Cloud unavailable or not configured"
// @Router      /sync/push [post]
func (h *SyncHandler) Push(c *gin.Context) {
	h.run(c, h.syncService.Push)
}

// Pull downloads the cloud copy.
// @Summary     Pull remote data
// @Description Replace the local budget with the cloud copy
// @Tags        sync
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.SyncResult "Download result"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Cloud credentials rejected or remote data malformed"
// @Failure     503 {object} ErrorResponse "Cloud unavailable or not configured"
// @Router      /sync/pull [post]
func (h *SyncHandler) Pull(c *gin.Context) {
	h.run(c, h.syncService.Pull)
}

func (h *SyncHandler) run(c *gin.Context, op func(ctx context.Context, userID string) (*services.SyncResult, error)) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := op(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ListBackups lists the user's backups.
// @Summary     List backups
// @Description List backups, newest first
// @Tags        backups
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]cloud.File "Backups"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Cloud unavailable or not configured"
// @Router      /sync/backups [get]
func (h *SyncHandler) ListBackups(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	backups, err := h.syncService.ListBackups(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"backups": backups})
}

// CreateBackup stores a snapshot of the local budget.
// @Summary     Create a backup
// @Description Store a snapshot of the local budget and delete the oldest backups beyond the retention count
// @Tags        backups
// @Produce     json
// @Security    BearerAuth
// @Success     201 {object} cloud.File "Backup created"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Cloud unavailable or not configured"
// @Router      /sync/backups [post]
func (h *SyncHandler) CreateBackup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	backup, err := h.syncService.CreateBackup(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"backup": backup})
}

// RotateBackups deletes all but the newest backups.
// @Summary     Rotate backups
// @Tags        backups
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} cloud.RotationResult "Rotation result"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Cloud unavailable or not configured"
// @Router      /sync/backups/rotate [post]
func (h *SyncHandler) RotateBackups(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.syncService.RotateBackups(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rotation": result})
}

// RestoreBackup replaces the local budget with a backup.
// @Summary     Restore a backup
// @Description Replace the local budget with a backup and upload it. A failed upload is reported as a warning.
// @Tags        backups
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Backup file ID"
// @Success     200 {object} services.SyncResult "Restore result"
// @Failure     400 {object} ErrorResponse "Invalid backup ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Backup not found"
// @Failure     502 {object} ErrorResponse "Backup is malformed"
// @Failure     503 {object} ErrorResponse "Cloud unavailable or not configured"
// @Router      /sync/backups/{id}/restore [post]
func (h *SyncHandler) RestoreBackup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	backupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.syncService.RestoreBackup(c.Request.Context(), userID, backupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
