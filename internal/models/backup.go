package models

import "time"

// Backup records an encrypted snapshot file written to the backup directory.
type Backup struct {
	ID        uint   `gorm:"primaryKey"`
	FileName  string `gorm:"size:128;uniqueIndex;not null"`
	FilePath  string `gorm:"size:512;not null"`
	Size      int64
	Auto      bool `gorm:"index"` // written by the reminder timer
	CreatedAt time.Time
}
