package models

import (
	"time"

	"gorm.io/gorm"

	"budgettracker/internal/uuid"
)

// Base holds the columns shared by every table. IDs are strings so that
// records restored from cloud storage keep the IDs they were saved with.
type Base struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty" swaggertype:"string"`
}

// BeforeCreate assigns a UUIDv7 to records that arrive without an ID.
func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// OwnedBy scopes a query to the rows of one user.
func OwnedBy(userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
