package models

import "time"

// AuditLog records mutating requests made against the ledger API.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	Method    string `gorm:"size:16;index"`
	PathEnc   string `gorm:"size:1024"` // encrypted path
	ActionEnc string `gorm:"size:4096"` // encrypted method + path + body summary
	Status    int
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time `gorm:"index"`
}
