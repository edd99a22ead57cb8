package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"papelaria-pdv/internal/config"
	"papelaria-pdv/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGormStore(t *testing.T, capacity int64) *GormStore {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "kv.db")})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return NewGormStore(db, capacity)
}

func exerciseStore(t *testing.T, s Store) {
	_, ok, err := s.Get("products")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("products", []byte(`[]`)))
	require.NoError(t, s.Set("products", []byte(`[{"id":1}]`)))
	v, ok, err := s.Get("products")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(v))

	require.NoError(t, s.Set("cashBalance", []byte(`10`)))
	require.NoError(t, s.Remove("products"))
	_, ok, _ = s.Get("products")
	assert.False(t, ok)

	require.NoError(t, s.Clear())
	_, ok, _ = s.Get("cashBalance")
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(0))
}

func TestGormStore(t *testing.T) {
	exerciseStore(t, newGormStore(t, 0))
}

func TestMemoryStoreQuota(t *testing.T) {
	s := NewMemoryStore(20)
	require.NoError(t, s.Set("a", []byte("0123456789")))
	err := s.Set("b", []byte("0123456789"))
	assert.True(t, errors.Is(err, ErrQuotaExceeded))

	// overwriting the same key only counts the difference
	require.NoError(t, s.Set("a", []byte("0123456789abcdefgh")))
	assert.Equal(t, int64(19), s.Used())
}

func TestGormStoreQuota(t *testing.T) {
	s := newGormStore(t, 16)
	require.NoError(t, s.Set("k", []byte("12345678")))
	err := s.Set("other", []byte("12345678"))
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	_, ok, err := s.Get("other")
	require.NoError(t, err)
	assert.False(t, ok, "rejected write must not be stored")
}

func TestMemoryStoreFailWrites(t *testing.T) {
	s := NewMemoryStore(0)
	s.FailWrites = true
	assert.ErrorIs(t, s.Set("k", []byte("v")), ErrUnavailable)
}
