package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"budgettracker/internal/dataset"
	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/validator"
)

const (
	backupPrefix = "backup-"
	backupSuffix = ".json"

	// deleteConcurrency bounds the parallel deletes of a rotation.
	deleteConcurrency = 4
)

var backupNameReplacer = strings.NewReplacer(":", "-", ".", "-")

// BackupFileName returns the file name of a backup taken at ts, e.g.
// backup-2025-03-01T10-20-30-123Z.json.
func BackupFileName(ts dataset.Timestamp) string {
	return backupPrefix + backupNameReplacer.Replace(ts.String()) + backupSuffix
}

// RotationResult counts the outcome of DeleteOldBackups.
type RotationResult struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// CreateBackup writes an immutable snapshot of d to the backup folder.
func (s *Storage) CreateBackup(ctx context.Context, d *dataset.Dataset) (File, error) {
	if d == nil {
		return File{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "nothing to back up")
	}

	folderID, err := s.EnsureBackupFolder(ctx)
	if err != nil {
		return File{}, err
	}

	ts := s.stamp()
	b := dataset.Backup{Dataset: *d, Timestamp: ts}
	b.Version = dataset.SchemaVersion
	if b.LastModified.IsZero() {
		b.LastModified = ts
	}
	if b.Expenses == nil {
		b.Expenses = []dataset.Expense{}
	}
	if b.BudgetPeriods == nil {
		b.BudgetPeriods = []dataset.BudgetPeriod{}
	}

	body, err := json.Marshal(b)
	if err != nil {
		return File{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	f, err := s.store.CreateFile(ctx, folderID, BackupFileName(ts), body)
	if err != nil {
		return File{}, err
	}
	s.log.Infow("Created backup", "file_id", f.ID, "name", f.Name)
	return f, nil
}

// ListBackups returns the backups, newest first.
func (s *Storage) ListBackups(ctx context.Context) ([]File, error) {
	folderID, err := s.EnsureBackupFolder(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.store.FindFiles(ctx, "", folderID)
	if err != nil {
		return nil, err
	}

	backups := make([]File, 0, len(files))
	for _, f := range files {
		if strings.HasPrefix(f.Name, backupPrefix) && strings.HasSuffix(f.Name, backupSuffix) {
			backups = append(backups, f)
		}
	}
	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].ModifiedTime.Equal(backups[j].ModifiedTime) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].ModifiedTime.After(backups[j].ModifiedTime)
	})
	return backups, nil
}

// DownloadBackup reads and cleans a backup.
func (s *Storage) DownloadBackup(ctx context.Context, fileID string) (*dataset.Backup, error) {
	body, err := s.store.Download(ctx, fileID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrBackupNotFound, err)
		}
		return nil, err
	}

	b, err := dataset.DecodeBackup(body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidPayload, err)
	}

	check := validator.ValidateDownloadedData(&b.Dataset)
	if !check.Valid {
		return nil, apperrors.WithDetails(apperrors.ErrInvalidPayload, check.Errors)
	}
	if len(check.Warnings) > 0 {
		s.log.Warnw("Cleaned backup data", "file_id", fileID, "warnings", check.Warnings)
	}
	b.Dataset = *check.Data
	return b, nil
}

// DeleteOldBackups keeps the newest keep backups and deletes the rest in
// parallel. Individual failures are logged and counted without stopping the
// rotation.
func (s *Storage) DeleteOldBackups(ctx context.Context, keep int) (RotationResult, error) {
	if keep < 0 {
		return RotationResult{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "keep count must not be negative")
	}

	backups, err := s.ListBackups(ctx)
	if err != nil {
		return RotationResult{}, err
	}
	if len(backups) <= keep {
		return RotationResult{}, nil
	}

	var deleted, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(deleteConcurrency)
	for _, f := range backups[keep:] {
		g.Go(func() error {
			if err := s.store.Delete(ctx, f.ID); err != nil {
				failed.Add(1)
				s.log.Warnw("Failed to delete old backup", "file_id", f.ID, "name", f.Name, "error", err)
				return nil
			}
			deleted.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	res := RotationResult{Deleted: int(deleted.Load()), Failed: int(failed.Load())}
	s.log.Infow("Rotated backups", "kept", keep, "deleted", res.Deleted, "failed", res.Failed)
	return res, nil
}
