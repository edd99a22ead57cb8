package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"papelaria-pdv/internal/ledger"
	"papelaria-pdv/internal/logger"
	"papelaria-pdv/internal/models"
	"papelaria-pdv/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("backup não encontrado")

// Manager writes encrypted ledger snapshots to Dir and records them in the
// backups table.
type Manager struct {
	DB     *gorm.DB
	Ledger *ledger.Ledger
	Key    string
	Dir    string
	Log    logger.Logger
}

func NewManager(db *gorm.DB, l *ledger.Ledger, key, dir string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{DB: db, Ledger: l, Key: key, Dir: dir, Log: log}
}

// Create exports the ledger, encrypts it and stores the file. auto marks
// backups written by the reminder.
func (m *Manager) Create(auto bool) (models.Backup, error) {
	raw, err := json.MarshalIndent(m.Ledger.Export(), "", "  ")
	if err != nil {
		return models.Backup{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	enc, err := util.EncryptAES(m.Key, raw)
	if err != nil {
		return models.Backup{}, fmt.Errorf("encrypt snapshot: %w", err)
	}
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return models.Backup{}, fmt.Errorf("create backup dir: %w", err)
	}

	fileName := fmt.Sprintf("backup-%s.bin", uuid.New().String())
	filePath := filepath.Join(m.Dir, fileName)
	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		return models.Backup{}, fmt.Errorf("write backup: %w", err)
	}

	b := models.Backup{
		FileName: fileName,
		FilePath: filePath,
		Size:     int64(len(enc)),
		Auto:     auto,
	}
	if err := m.DB.Create(&b).Error; err != nil {
		_ = os.Remove(filePath)
		return models.Backup{}, fmt.Errorf("save backup record: %w", err)
	}
	m.Log.Info("backup criado", "file", fileName, "size", b.Size, "auto", auto)
	return b, nil
}

// List returns backups, newest first.
func (m *Manager) List() ([]models.Backup, error) {
	var list []models.Backup
	if err := m.DB.Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return list, nil
}

func (m *Manager) Get(id uint) (models.Backup, error) {
	var b models.Backup
	err := m.DB.First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return b, ErrNotFound
	}
	if err != nil {
		return b, fmt.Errorf("get backup: %w", err)
	}
	return b, nil
}

// Delete removes the file first, then the record.
func (m *Manager) Delete(id uint) error {
	b, err := m.Get(id)
	if err != nil {
		return err
	}
	if err := os.Remove(b.FilePath); err != nil && !os.IsNotExist(err) {
		m.Log.Warn("falha ao remover ficheiro de backup", "file", b.FilePath, "error", err)
	}
	if err := m.DB.Delete(&b).Error; err != nil {
		return fmt.Errorf("delete backup record: %w", err)
	}
	return nil
}

// Read decrypts and parses a stored backup without touching the ledger.
func (m *Manager) Read(id uint) (ledger.Snapshot, error) {
	b, err := m.Get(id)
	if err != nil {
		return ledger.Snapshot{}, err
	}
	enc, err := os.ReadFile(b.FilePath)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("read backup: %w", err)
	}
	raw, err := util.DecryptAES(m.Key, enc)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("%w: %v", ledger.ErrInvalidSnapshot, err)
	}
	return ledger.ParseSnapshot(bytes.NewReader(raw))
}
