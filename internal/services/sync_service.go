package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"budgettracker/internal/cloud"
	"budgettracker/internal/coordinator"
	"budgettracker/internal/dataset"
	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/logger"
	"budgettracker/internal/models"
	"budgettracker/internal/validator"
)

// SyncOptions configures the sync service.
type SyncOptions struct {
	// BackupKeep is the number of backups kept by rotation.
	BackupKeep int
	// BackupOnSync backs up the local budget before a pull or restore
	// overwrites it.
	BackupOnSync bool
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// syncService keeps the local database and cloud storage in step. Every
// write to the budget document goes through the coordinator.
type syncService struct {
	db       *gorm.DB
	registry *cloud.Registry
	coord    *coordinator.Coordinator
	audit    AuditServicer
	opts     SyncOptions
	log      *zap.SugaredLogger
}

// NewSyncService creates a new SyncServicer. A nil registry disables cloud
// sync: changes are still tracked, and cloud operations fail with
// ErrCloudNotConfigured.
func NewSyncService(db *gorm.DB, registry *cloud.Registry, coord *coordinator.Coordinator, audit AuditServicer, opts SyncOptions) SyncServicer {
	if coord == nil {
		coord = coordinator.New(coordinator.Options{})
	}
	if audit == nil {
		audit = NewAuditService(db)
	}
	if opts.BackupKeep < 1 {
		opts.BackupKeep = 7
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &syncService{
		db:       db,
		registry: registry,
		coord:    coord,
		audit:    audit,
		opts:     opts,
		log:      logger.Named("sync"),
	}
}

// MarkDirty records a local change and schedules a debounced upload.
func (s *syncService) MarkDirty(userID string) {
	if err := s.touch(userID); err != nil {
		s.log.Warnw("Failed to record local change", "user_id", userID, "error", err)
	}
	if s.registry == nil {
		return
	}
	s.coord.Enqueue(coordinator.Operation{
		Key: uploadKey(userID),
		Run: func(ctx context.Context) error {
			_, err := s.push(ctx, userID)
			return err
		},
	})
}

// MarkDirtyNow records a local change and uploads it right away.
func (s *syncService) MarkDirtyNow(ctx context.Context, userID string) error {
	if err := s.touch(userID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if s.registry == nil {
		return nil
	}
	return s.coord.Immediate(ctx, coordinator.Operation{
		Key: uploadKey(userID),
		Run: func(ctx context.Context) error {
			_, err := s.push(ctx, userID)
			return err
		},
	})
}

// Push uploads the local budget, replacing the cloud copy.
func (s *syncService) Push(ctx context.Context, userID string) (*SyncResult, error) {
	return s.exclusive(ctx, userID, s.push)
}

// Pull replaces the local budget with the cloud copy.
func (s *syncService) Pull(ctx context.Context, userID string) (*SyncResult, error) {
	return s.exclusive(ctx, userID, s.pull)
}

// Sync reconciles the local and cloud copies with last-write-wins. When
// only one side changed since the last sync that side wins; when both
// changed, the newer modification wins.
func (s *syncService) Sync(ctx context.Context, userID string) (*SyncResult, error) {
	return s.exclusive(ctx, userID, func(ctx context.Context, userID string) (*SyncResult, error) {
		state, err := s.state(userID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		meta, err := s.registry.For(userID).RemoteMetadata(ctx)
		if err != nil {
			s.recordError(userID, err)
			return nil, err
		}

		if meta == nil {
			var periods int64
			if err := s.db.Model(&models.BudgetPeriod{}).Where("user_id = ?", userID).Count(&periods).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if state.Dirty || periods > 0 {
				return s.push(ctx, userID)
			}
			return &SyncResult{Action: SyncActionNone}, nil
		}

		remote := millis(meta.ModifiedTime)
		remoteChanged := state.RemoteModifiedAt == nil || remote.After(millis(*state.RemoteModifiedAt))

		switch {
		case remoteChanged && state.Dirty:
			if state.LocalModifiedAt != nil && !remote.After(millis(*state.LocalModifiedAt)) {
				s.log.Infow("Both copies changed, local is newer", "user_id", userID, "remote", remote)
				return s.push(ctx, userID)
			}
			s.log.Infow("Both copies changed, remote is newer", "user_id", userID, "remote", remote)
			return s.pull(ctx, userID)
		case remoteChanged:
			return s.pull(ctx, userID)
		case state.Dirty:
			return s.push(ctx, userID)
		default:
			return &SyncResult{Action: SyncActionNone, FileID: meta.ID, ModifiedTime: &remote}, nil
		}
	})
}

// Status reports the sync state of the user.
func (s *syncService) Status(_ context.Context, userID string) (*SyncStatus, error) {
	var state models.SyncState
	err := s.db.Where("user_id = ?", userID).First(&state).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	status := &SyncStatus{
		Enabled:          s.registry != nil,
		Dirty:            state.Dirty,
		RemoteFileID:     state.RemoteFileID,
		RemoteModifiedAt: state.RemoteModifiedAt,
		LocalModifiedAt:  state.LocalModifiedAt,
		LastPushedAt:     state.LastPushedAt,
		LastPulledAt:     state.LastPulledAt,
		LastError:        state.LastError,
		Queue:            s.coord.Stats(),
	}
	if s.registry != nil {
		status.FolderState = s.registry.For(userID).FolderState().String()
	}
	return status, nil
}

// CheckForUpdates reports whether the cloud copy changed since the last
// push or pull.
func (s *syncService) CheckForUpdates(ctx context.Context, userID string) (bool, error) {
	if s.registry == nil {
		return false, apperrors.ErrCloudNotConfigured
	}
	state, err := s.state(userID)
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.registry.For(userID).CheckForUpdates(ctx, state.RemoteModifiedAt)
}

// CreateBackup stores a snapshot of the local budget and rotates old
// backups.
func (s *syncService) CreateBackup(ctx context.Context, userID string) (*cloud.File, error) {
	if s.registry == nil {
		return nil, apperrors.ErrCloudNotConfigured
	}
	d, err := buildDataset(s.db, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	storage := s.registry.For(userID)
	f, err := storage.CreateBackup(ctx, d)
	if err != nil {
		return nil, err
	}
	s.rotate(ctx, userID, storage)
	return &f, nil
}

// ListBackups returns the user's backups, newest first.
func (s *syncService) ListBackups(ctx context.Context, userID string) ([]cloud.File, error) {
	if s.registry == nil {
		return nil, apperrors.ErrCloudNotConfigured
	}
	files, err := s.registry.For(userID).ListBackups(ctx)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []cloud.File{}
	}
	return files, nil
}

// RestoreBackup replaces the local budget with a backup and uploads the
// result. A failed upload leaves the restored data marked for the next
// sync and is reported as a warning.
func (s *syncService) RestoreBackup(ctx context.Context, userID, fileID string) (*SyncResult, error) {
	return s.exclusive(ctx, userID, func(ctx context.Context, userID string) (*SyncResult, error) {
		storage := s.registry.For(userID)
		backup, err := storage.DownloadBackup(ctx, fileID)
		if err != nil {
			return nil, err
		}

		check := validator.ValidateDownloadedData(&backup.Dataset)
		if !check.Valid {
			return nil, apperrors.WithDetails(apperrors.ErrInvalidPayload, check.Errors)
		}

		result := &SyncResult{Action: SyncActionRestore, Warnings: check.Warnings}
		if s.opts.BackupOnSync {
			if result.BackupID, err = s.backupLocal(ctx, userID, storage); err != nil {
				return nil, err
			}
		}

		now := millis(s.opts.Now())
		stats, err := s.apply(userID, check.Data, func(st *models.SyncState) {
			st.LocalModifiedAt = &now
			st.Dirty = true
		})
		if err != nil {
			return nil, err
		}
		result.Periods, result.Expenses = stats.periods, stats.expenses
		result.Warnings = append(result.Warnings, stats.warnings...)

		s.audit.Log(userID, models.AuditActionRestore, models.AuditResourceBudget, fileID, "", map[string]any{
			"backup":   fileID,
			"periods":  stats.periods,
			"expenses": stats.expenses,
		})

		pushed, err := s.push(ctx, userID)
		if err != nil {
			s.log.Warnw("Restored backup was not uploaded", "user_id", userID, "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("restored locally, upload pending: %v", err))
			return result, nil
		}
		result.FileID = pushed.FileID
		result.ModifiedTime = pushed.ModifiedTime
		return result, nil
	})
}

// RotateBackups deletes all but the newest backups.
func (s *syncService) RotateBackups(ctx context.Context, userID string) (*cloud.RotationResult, error) {
	if s.registry == nil {
		return nil, apperrors.ErrCloudNotConfigured
	}
	res, err := s.registry.For(userID).DeleteOldBackups(ctx, s.opts.BackupKeep)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// exclusive runs fn through the coordinator so it never overlaps another
// write to cloud storage.
func (s *syncService) exclusive(ctx context.Context, userID string, fn func(context.Context, string) (*SyncResult, error)) (*SyncResult, error) {
	if s.registry == nil {
		return nil, apperrors.ErrCloudNotConfigured
	}
	var result *SyncResult
	err := s.coord.Immediate(ctx, coordinator.Operation{
		Key: uploadKey(userID),
		Run: func(ctx context.Context) error {
			var err error
			result, err = fn(ctx, userID)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *syncService) push(ctx context.Context, userID string) (*SyncResult, error) {
	state, err := s.state(userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	marker := state.LocalModifiedAt

	d, err := buildDataset(s.db, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	up, err := s.registry.For(userID).UploadBudgetData(ctx, d)
	if err != nil {
		s.recordError(userID, err)
		return nil, err
	}

	now := millis(s.opts.Now())
	modified := millis(up.ModifiedTime)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var st models.SyncState
		if err := tx.Where("user_id = ?", userID).First(&st).Error; err != nil {
			return err
		}
		st.RemoteFileID = up.FileID
		st.RemoteModifiedAt = &modified
		st.LastPushedAt = &now
		st.LastError = ""
		if sameTime(st.LocalModifiedAt, marker) {
			st.Dirty = false
		}
		return tx.Save(&st).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.audit.Log(userID, models.AuditActionPush, models.AuditResourceBudget, up.FileID, "", map[string]any{
		"periods":  len(d.BudgetPeriods),
		"expenses": len(d.Expenses),
	})

	return &SyncResult{
		Action:       SyncActionPush,
		FileID:       up.FileID,
		ModifiedTime: &modified,
		Periods:      len(d.BudgetPeriods),
		Expenses:     len(d.Expenses),
	}, nil
}

func (s *syncService) pull(ctx context.Context, userID string) (*SyncResult, error) {
	storage := s.registry.For(userID)
	snap, err := storage.DownloadBudgetData(ctx)
	if err != nil {
		s.recordError(userID, err)
		return nil, err
	}
	if snap == nil {
		return &SyncResult{Action: SyncActionNone, Warnings: []string{"no budget data in cloud storage yet"}}, nil
	}

	result := &SyncResult{Action: SyncActionPull, FileID: snap.FileID, Warnings: snap.Warnings}
	if s.opts.BackupOnSync {
		if result.BackupID, err = s.backupLocal(ctx, userID, storage); err != nil {
			s.recordError(userID, err)
			return nil, err
		}
	}

	modified := millis(snap.ModifiedTime)
	now := millis(s.opts.Now())
	stats, err := s.apply(userID, snap.Data, func(st *models.SyncState) {
		st.RemoteFileID = snap.FileID
		st.RemoteModifiedAt = &modified
		st.LocalModifiedAt = &modified
		st.LastPulledAt = &now
		st.Dirty = false
		st.LastError = ""
	})
	if err != nil {
		return nil, err
	}
	result.ModifiedTime = &modified
	result.Periods, result.Expenses = stats.periods, stats.expenses
	result.Warnings = append(result.Warnings, stats.warnings...)

	s.audit.Log(userID, models.AuditActionPull, models.AuditResourceBudget, snap.FileID, "", map[string]any{
		"periods":  stats.periods,
		"expenses": stats.expenses,
		"backup":   result.BackupID,
	})
	return result, nil
}

// apply replaces the local budget with d and updates the sync state in one
// transaction.
func (s *syncService) apply(userID string, d *dataset.Dataset, update func(*models.SyncState)) (replaceStats, error) {
	var stats replaceStats
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if stats, err = replaceLocal(tx, userID, d); err != nil {
			return err
		}
		var st models.SyncState
		if err := tx.Where(models.SyncState{UserID: userID}).FirstOrCreate(&st).Error; err != nil {
			return err
		}
		update(&st)
		return tx.Save(&st).Error
	})
	if err != nil {
		return stats, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return stats, nil
}

// backupLocal stores the local budget as a backup before it is overwritten.
// An empty local budget is not backed up.
func (s *syncService) backupLocal(ctx context.Context, userID string, storage *cloud.Storage) (string, error) {
	d, err := buildDataset(s.db, userID)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(d.BudgetPeriods) == 0 && len(d.Expenses) == 0 {
		return "", nil
	}
	f, err := storage.CreateBackup(ctx, d)
	if err != nil {
		return "", err
	}
	s.rotate(ctx, userID, storage)
	return f.ID, nil
}

func (s *syncService) rotate(ctx context.Context, userID string, storage *cloud.Storage) {
	res, err := storage.DeleteOldBackups(ctx, s.opts.BackupKeep)
	if err != nil {
		s.log.Warnw("Backup rotation failed", "user_id", userID, "error", err)
		return
	}
	if res.Failed > 0 {
		s.log.Warnw("Some old backups were not deleted", "user_id", userID, "deleted", res.Deleted, "failed", res.Failed)
	}
}

// state returns the user's sync state, creating it on first use.
func (s *syncService) state(userID string) (*models.SyncState, error) {
	var st models.SyncState
	if err := s.db.Where(models.SyncState{UserID: userID}).FirstOrCreate(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

// touch marks the local budget as changed now.
func (s *syncService) touch(userID string) error {
	st, err := s.state(userID)
	if err != nil {
		return err
	}
	now := millis(s.opts.Now())
	return s.db.Model(st).Updates(map[string]interface{}{
		"dirty":             true,
		"local_modified_at": now,
	}).Error
}

func (s *syncService) recordError(userID string, cause error) {
	err := s.db.Model(&models.SyncState{}).Where("user_id = ?", userID).Update("last_error", cause.Error()).Error
	if err != nil {
		s.log.Warnw("Failed to record sync error", "user_id", userID, "error", err)
	}
}

func uploadKey(userID string) string {
	return "upload:" + userID
}

func millis(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return millis(*a).Equal(millis(*b))
}
