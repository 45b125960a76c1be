package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"budgettracker/internal/dataset"
	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/logger"
	"budgettracker/internal/validator"
)

// Default names used when Options leaves them empty.
const (
	DefaultFolderName       = "Budget Tracker"
	DefaultFileName         = "budget-data.json"
	DefaultBackupFolderName = "backups"
)

// FolderState tracks the acquisition of a remote folder.
type FolderState int

const (
	NotSearched FolderState = iota
	Searching
	Found
	Creating
	Created
)

func (s FolderState) String() string {
	switch s {
	case NotSearched:
		return "not_searched"
	case Searching:
		return "searching"
	case Found:
		return "found"
	case Creating:
		return "creating"
	case Created:
		return "created"
	}
	return fmt.Sprintf("FolderState(%d)", int(s))
}

// Options configures a Storage.
type Options struct {
	FolderName       string
	FileName         string
	BackupFolderName string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// UploadResult identifies the written file and the modification time the
// store assigned to it.
type UploadResult struct {
	FileID       string    `json:"fileId"`
	ModifiedTime time.Time `json:"modifiedTime"`
}

// Snapshot is a downloaded and cleaned budget document.
type Snapshot struct {
	Data         *dataset.Dataset
	Warnings     []string
	FileID       string
	ModifiedTime time.Time
}

type folderSlot struct {
	id    string
	state FolderState
}

// Storage stores one budget document, and its backups, in a folder of an
// ObjectStore. It is safe for concurrent use.
//
// Folder ids are cached for the lifetime of the Storage. ResetCache clears
// them.
type Storage struct {
	store ObjectStore
	opts  Options
	log   *zap.SugaredLogger

	group singleflight.Group

	mu        sync.Mutex
	folder    folderSlot
	backups   folderSlot
	lastStamp time.Time
}

// NewStorage creates a Storage over store.
func NewStorage(store ObjectStore, opts Options) *Storage {
	if opts.FolderName == "" {
		opts.FolderName = DefaultFolderName
	}
	if opts.FileName == "" {
		opts.FileName = DefaultFileName
	}
	if opts.BackupFolderName == "" {
		opts.BackupFolderName = DefaultBackupFolderName
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Storage{
		store: store,
		opts:  opts,
		log:   logger.Named("cloud").With("folder", opts.FolderName),
	}
}

// FolderName returns the name of the main folder.
func (s *Storage) FolderName() string { return s.opts.FolderName }

// FolderState returns the acquisition state of the main folder.
func (s *Storage) FolderState() FolderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folder.state
}

// ResetCache forgets the cached folder ids.
func (s *Storage) ResetCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folder = folderSlot{}
	s.backups = folderSlot{}
}

// EnsureFolder returns the id of the main folder, creating it if needed.
// Concurrent callers share a single lookup and at most one creation.
func (s *Storage) EnsureFolder(ctx context.Context) (string, error) {
	return s.ensure(ctx, "folder", &s.folder, s.opts.FolderName, func(context.Context) (string, error) {
		return "", nil
	})
}

// EnsureBackupFolder returns the id of the backup folder inside the main
// folder, creating either if needed.
func (s *Storage) EnsureBackupFolder(ctx context.Context) (string, error) {
	return s.ensure(ctx, "backups", &s.backups, s.opts.BackupFolderName, s.EnsureFolder)
}

func (s *Storage) ensure(ctx context.Context, key string, slot *folderSlot, name string, parent func(context.Context) (string, error)) (string, error) {
	s.mu.Lock()
	if slot.id != "" {
		id := slot.id
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	// The shared lookup outlives any single caller; each caller stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		s.mu.Lock()
		if slot.id != "" {
			id := slot.id
			s.mu.Unlock()
			return id, nil
		}
		slot.state = Searching
		s.mu.Unlock()

		parentID, err := parent(shared)
		if err != nil {
			s.setState(slot, NotSearched)
			return "", err
		}

		id, created, err := s.findOrCreateFolder(shared, slot, name, parentID)
		if err != nil {
			s.setState(slot, NotSearched)
			return "", err
		}

		s.mu.Lock()
		slot.id = id
		slot.state = Found
		if created {
			slot.state = Created
		}
		s.mu.Unlock()
		return id, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Storage) findOrCreateFolder(ctx context.Context, slot *folderSlot, name, parentID string) (string, bool, error) {
	folders, err := s.store.FindFolders(ctx, name, parentID)
	if err != nil {
		return "", false, err
	}

	switch len(folders) {
	case 0:
		s.setState(slot, Creating)
		f, err := s.store.CreateFolder(ctx, name, parentID)
		if err != nil {
			return "", false, err
		}
		s.log.Infow("Created cloud folder", "name", name, "id", f.ID)
		return f.ID, true, nil
	case 1:
		return folders[0].ID, false, nil
	}

	sort.SliceStable(folders, func(i, j int) bool {
		return folders[i].CreatedTime.Before(folders[j].CreatedTime)
	})
	ids := make([]string, len(folders))
	for i, f := range folders {
		ids[i] = f.ID
	}
	s.log.Warnw("Found duplicate cloud folders, using the oldest",
		"name", name,
		"chosen", folders[0].ID,
		"ids", ids,
	)
	return folders[0].ID, false, nil
}

func (s *Storage) setState(slot *folderSlot, state FolderState) {
	s.mu.Lock()
	slot.state = state
	s.mu.Unlock()
}

// RemoteMetadata returns the metadata of the budget document, or nil when
// none has been uploaded yet.
func (s *Storage) RemoteMetadata(ctx context.Context) (*File, error) {
	folderID, err := s.EnsureFolder(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.store.FindFiles(ctx, s.opts.FileName, folderID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModifiedTime.After(files[j].ModifiedTime)
	})
	if len(files) > 1 {
		s.log.Warnw("Found several budget documents, using the most recent", "name", s.opts.FileName, "chosen", files[0].ID)
	}
	f := files[0]
	return &f, nil
}

// UploadBudgetData writes d as the budget document. The document is checked
// first; an incomplete document is refused with ErrDataIntegrity and the
// remote copy is left alone. The written copy is stamped with the schema
// version and a fresh lastModified; d itself is not modified.
func (s *Storage) UploadBudgetData(ctx context.Context, d *dataset.Dataset) (UploadResult, error) {
	check := validator.ValidateCloudData(d)
	if !check.Valid {
		s.log.Warnw("Refusing to upload incomplete budget data",
			"critical", check.Critical,
			"errors", check.Errors,
		)
		return UploadResult{}, apperrors.WithDetails(apperrors.ErrDataIntegrity, check.Errors)
	}

	doc := *d
	doc.Version = dataset.SchemaVersion
	doc.LastModified = s.stamp()

	body, err := json.Marshal(doc)
	if err != nil {
		return UploadResult{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	existing, err := s.RemoteMetadata(ctx)
	if err != nil {
		return UploadResult{}, err
	}

	var written File
	if existing == nil {
		folderID, err := s.EnsureFolder(ctx)
		if err != nil {
			return UploadResult{}, err
		}
		written, err = s.store.CreateFile(ctx, folderID, s.opts.FileName, body)
		if err != nil {
			return UploadResult{}, err
		}
	} else {
		written, err = s.store.UpdateFile(ctx, existing.ID, body)
		if err != nil {
			return UploadResult{}, err
		}
	}

	meta, err := s.store.GetFile(ctx, written.ID)
	if err != nil {
		return UploadResult{}, err
	}

	s.log.Infow("Uploaded budget data",
		"file_id", meta.ID,
		"expenses", len(doc.Expenses),
		"periods", len(doc.BudgetPeriods),
		"bytes", len(body),
	)
	return UploadResult{FileID: meta.ID, ModifiedTime: meta.ModifiedTime.UTC().Truncate(time.Millisecond)}, nil
}

// DownloadBudgetData reads the budget document. It returns nil when nothing
// has been uploaded yet. A malformed document fails with ErrInvalidPayload;
// a document that only needed cleaning is returned with warnings.
func (s *Storage) DownloadBudgetData(ctx context.Context) (*Snapshot, error) {
	meta, err := s.RemoteMetadata(ctx)
	if err != nil || meta == nil {
		return nil, err
	}

	body, err := s.store.Download(ctx, meta.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	d, err := dataset.Decode(body)
	if err != nil {
		s.log.Errorw("Downloaded budget data is not valid JSON", "file_id", meta.ID, "error", err)
		return nil, apperrors.Wrap(apperrors.ErrInvalidPayload, err)
	}

	check := validator.ValidateDownloadedData(d)
	if !check.Valid {
		s.log.Errorw("Downloaded budget data is malformed", "file_id", meta.ID, "errors", check.Errors)
		return nil, apperrors.WithDetails(apperrors.ErrInvalidPayload, check.Errors)
	}
	if len(check.Warnings) > 0 {
		s.log.Warnw("Cleaned downloaded budget data", "file_id", meta.ID, "warnings", check.Warnings)
	}

	return &Snapshot{
		Data:         check.Data,
		Warnings:     check.Warnings,
		FileID:       meta.ID,
		ModifiedTime: meta.ModifiedTime.UTC().Truncate(time.Millisecond),
	}, nil
}

// CheckForUpdates reports whether the remote document is newer than
// lastKnown. Without a remote document it reports false; without a known
// timestamp it reports true. Times are compared at millisecond resolution
// and equal times are not an update.
func (s *Storage) CheckForUpdates(ctx context.Context, lastKnown *time.Time) (bool, error) {
	meta, err := s.RemoteMetadata(ctx)
	if err != nil {
		return false, err
	}
	if meta == nil {
		return false, nil
	}
	if lastKnown == nil || lastKnown.IsZero() {
		return true, nil
	}
	remote := meta.ModifiedTime.Truncate(time.Millisecond)
	return remote.After(lastKnown.Truncate(time.Millisecond)), nil
}

// stamp returns the current time at millisecond precision, strictly later
// than any stamp returned before.
func (s *Storage) stamp() dataset.Timestamp {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := dataset.NewTimestamp(s.opts.Now())
	if !now.After(s.lastStamp) {
		now = dataset.NewTimestamp(s.lastStamp.Add(time.Millisecond))
	}
	s.lastStamp = now.Time
	return now
}
