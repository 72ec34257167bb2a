package models

import "time"

// PendingFile is a user-selected image awaiting upload. The ID is
// client-generated and ephemeral; rows are deleted once the batch is
// consumed by a successful upload or an explicit clear.
type PendingFile struct {
	ID      string `gorm:"primaryKey;size:32"`
	Path    string `gorm:"type:text;not null"`
	Preview string `gorm:"type:text"`
	AddedAt time.Time
}
