// Package storage provides the key-value store the ledger snapshot is
// mirrored to. Each top-level collection lives under its own key.
package storage

import "errors"

var (
	// ErrQuotaExceeded is returned when a write would push the store past
	// its capacity. Nothing is written in that case.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("storage unavailable")
)

// Store is a get/set/remove/clear key-value store with finite capacity.
type Store interface {
	// Get returns the value under key; ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Remove(key string) error
	Clear() error
}

// fits reports whether replacing old bytes with new bytes under a cap keeps
// the total within capacity. A non-positive capacity means unlimited.
func fits(capacity, used, oldSize, newSize int64) bool {
	if capacity <= 0 {
		return true
	}
	return used-oldSize+newSize <= capacity
}
