package models

import "time"

// SyncState tracks a user's cloud synchronization.
//
// LocalModifiedAt is bumped by every local mutation and Dirty stays set
// until the change has been pushed. RemoteModifiedAt is the modification
// time of the cloud document as last seen by a push or pull.
type SyncState struct {
	Base
	UserID           string     `gorm:"not null;uniqueIndex;type:text" json:"user_id"`
	RemoteFileID     string     `json:"remote_file_id,omitempty"`
	RemoteModifiedAt *time.Time `json:"remote_modified_at,omitempty"`
	LocalModifiedAt  *time.Time `json:"local_modified_at,omitempty"`
	LastPushedAt     *time.Time `json:"last_pushed_at,omitempty"`
	LastPulledAt     *time.Time `json:"last_pulled_at,omitempty"`
	Dirty            bool       `gorm:"not null;default:false" json:"dirty"`
	LastError        string     `json:"last_error,omitempty"`
}
