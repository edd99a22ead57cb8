package storage

import (
	"fmt"
	"sync"
)

// MemoryStore keeps values in a map. Capacity counts key and value bytes.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	used     int64
	capacity int64
	// FailWrites forces every Set to fail with ErrUnavailable.
	FailWrites bool
}

func NewMemoryStore(capacity int64) *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		capacity: capacity,
	}
}

func (m *MemoryStore) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("set %q: %w", key, ErrUnavailable)
	}

	var oldSize int64
	if old, ok := m.data[key]; ok {
		oldSize = int64(len(key) + len(old))
	}
	newSize := int64(len(key) + len(value))
	if !fits(m.capacity, m.used, oldSize, newSize) {
		return fmt.Errorf("set %q: %w", key, ErrQuotaExceeded)
	}

	buf := make([]byte, len(value))
	copy(buf, value)
	m.data[key] = buf
	m.used += newSize - oldSize
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.data[key]; ok {
		m.used -= int64(len(key) + len(old))
		delete(m.data, key)
	}
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	m.used = 0
	return nil
}

// Used returns the number of bytes currently stored.
func (m *MemoryStore) Used() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used
}
