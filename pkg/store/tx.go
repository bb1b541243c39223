package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cyberarian/rekama-sys/pkg/model"
)

// Tx is the write view handed to a Mutate callback. It is only valid inside
// the callback.
type Tx struct {
	img      *image
	now      time.Time
	newID    func() string
	dirty    bool
	appended []model.AuditLog
}

// Now is the timestamp of this mutation. It is strictly later than the
// timestamp of every earlier mutation.
func (tx *Tx) Now() time.Time {
	return tx.now
}

// AppendLog adds an entry to the audit trail. ID, Timestamp and Severity are
// filled in when empty.
func (tx *Tx) AppendLog(entry model.AuditLog) (model.AuditLog, error) {
	if entry.ID == "" {
		entry.ID = tx.newID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = tx.now
	}
	if entry.Severity == "" {
		entry.Severity = model.SeverityLow
	}
	if err := entry.Validate(); err != nil {
		return model.AuditLog{}, err
	}
	if _, ok := tx.img.logIDs[entry.ID]; ok {
		return model.AuditLog{}, fmt.Errorf("%w: audit entry %q", ErrDuplicateKey, entry.ID)
	}
	entry = entry.Clone()
	tx.img.logs = append(tx.img.logs, entry)
	tx.img.logIDs[entry.ID] = struct{}{}
	tx.appended = append(tx.appended, entry)
	tx.dirty = true
	return entry.Clone(), nil
}

// Logs returns the entries appended so far in this mutation.
func (tx *Tx) Logs() []model.AuditLog {
	out := make([]model.AuditLog, len(tx.appended))
	for i, l := range tx.appended {
		out[i] = l.Clone()
	}
	return out
}

// GetSingleton returns the raw value stored under key.
func (tx *Tx) GetSingleton(key string) (json.RawMessage, bool) {
	v, ok := tx.img.singletons[key]
	return append(json.RawMessage(nil), v...), ok
}

// PutSingleton stores value, encoded as JSON, under key.
func (tx *Tx) PutSingleton(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode singleton %q: %w", key, err)
	}
	tx.img.singletons[key] = data
	tx.dirty = true
	return nil
}

// Settings returns the stored settings or the defaults.
func (tx *Tx) Settings() model.AppSettings {
	return settingsFrom(tx.img)
}

func (tx *Tx) PutSettings(settings model.AppSettings) error {
	return tx.PutSingleton(settingsKey, settings)
}
