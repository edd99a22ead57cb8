package storage

import (
	"errors"
	"fmt"

	"papelaria-pdv/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists each key as a row of the kv_entries table.
type GormStore struct {
	DB       *gorm.DB
	Capacity int64
}

func NewGormStore(db *gorm.DB, capacity int64) *GormStore {
	return &GormStore{DB: db, Capacity: capacity}
}

func (s *GormStore) Get(key string) ([]byte, bool, error) {
	var e models.KVEntry
	err := s.DB.Where("name = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w: %v", key, ErrUnavailable, err)
	}
	return []byte(e.Value), true, nil
}

func (s *GormStore) Set(key string, value []byte) error {
	if s.Capacity > 0 {
		used, oldSize, err := s.usage(key)
		if err != nil {
			return err
		}
		if !fits(s.Capacity, used, oldSize, int64(len(key)+len(value))) {
			return fmt.Errorf("set %q: %w", key, ErrQuotaExceeded)
		}
	}

	e := models.KVEntry{Key: key, Value: string(value)}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("set %q: %w: %v", key, ErrUnavailable, err)
	}
	return nil
}

func (s *GormStore) Remove(key string) error {
	if err := s.DB.Where("name = ?", key).Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("remove %q: %w: %v", key, ErrUnavailable, err)
	}
	return nil
}

func (s *GormStore) Clear() error {
	if err := s.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("clear: %w: %v", ErrUnavailable, err)
	}
	return nil
}

// usage returns the bytes used by all keys and by key alone.
func (s *GormStore) usage(key string) (total, own int64, err error) {
	var rows []struct {
		Name string
		Size int64
	}
	err = s.DB.Model(&models.KVEntry{}).
		Select("name, LENGTH(name) + LENGTH(CAST(value AS BLOB)) AS size").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, fmt.Errorf("measure store: %w: %v", ErrUnavailable, err)
	}
	for _, r := range rows {
		total += r.Size
		if r.Name == key {
			own = r.Size
		}
	}
	return total, own, nil
}
