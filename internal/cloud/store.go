// Package cloud keeps a user's budget document and its backup snapshots in
// an external object store.
//
// Storage layers the folder, upload, download and backup semantics over an
// ObjectStore, which is the authenticated transport. Google Drive and an
// in-memory store are provided.
package cloud

import (
	"context"
	"time"
)

// File is the metadata of a remote file or folder. Timestamps are assigned
// by the store.
type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	CreatedTime  time.Time `json:"createdTime"`
	ModifiedTime time.Time `json:"modifiedTime"`
}

// ObjectStore is an authenticated folder and file store.
//
// Implementations report a missing file with an error matching
// errors.ErrNotFound, rejected credentials with errors.ErrCloudAuth and
// rate limiting or server failures with errors.ErrCloudUnavailable. They do
// not retry.
type ObjectStore interface {
	// FindFolders returns the folders called name. An empty parentID
	// searches everywhere.
	FindFolders(ctx context.Context, name, parentID string) ([]File, error)
	CreateFolder(ctx context.Context, name, parentID string) (File, error)

	// FindFiles returns the files in folderID called name, or every file in
	// the folder when name is empty.
	FindFiles(ctx context.Context, name, folderID string) ([]File, error)
	CreateFile(ctx context.Context, folderID, name string, content []byte) (File, error)
	UpdateFile(ctx context.Context, fileID string, content []byte) (File, error)
	GetFile(ctx context.Context, fileID string) (File, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
	Delete(ctx context.Context, fileID string) error
}
