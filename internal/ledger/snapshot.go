package ledger

import (
	"encoding/json"
	"fmt"
	"io"
)

// Snapshot is the full export format: every collection plus the theme and
// the export time.
type Snapshot struct {
	State
	BackupDate string `json:"backupDate,omitempty"`
}

// Export returns a deep copy of the persisted state stamped with the current
// UTC time.
func (l *Ledger) Export() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		State:      l.state.clone(),
		BackupDate: l.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

// requiredSnapshotKeys must be present for a file to count as a backup.
var requiredSnapshotKeys = []string{"products", "transactions", "customers"}

// ParseSnapshot decodes an exported backup. Missing optional collections take
// their defaults and legacy customerid keys are migrated.
func ParseSnapshot(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	for _, k := range requiredSnapshotKeys {
		if _, ok := keys[k]; !ok {
			return Snapshot{}, fmt.Errorf("%w: falta %q", ErrInvalidSnapshot, k)
		}
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	normalize(&s.State)
	return s, nil
}

// Restore replaces the whole state with s and persists it.
func (l *Ledger) Restore(s Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.restore(s)
	return l.commit()
}

func (l *Ledger) restore(s Snapshot) {
	st := s.State.clone()
	normalize(&st)
	l.state = st
	l.cart = Cart{}
	l.resetIDs()
	l.log.Warn("dados restaurados a partir de backup", "backupDate", s.BackupDate, "transactions", len(st.Transactions))
}

// Reset wipes the store and returns to the default state.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reset()
}

func (l *Ledger) reset() error {
	l.state = defaultState()
	l.cart = Cart{}
	l.resetIDs()
	l.log.Warn("sistema reiniciado")
	if err := l.store.Clear(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return l.commit()
}
