package models

import "time"

// KVEntry holds one top-level collection of the ledger snapshot, serialized
// as JSON under its key (products, customers, transactions, ...).
type KVEntry struct {
	Key       string `gorm:"primaryKey;column:name;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
