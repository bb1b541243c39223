package model

import (
	"encoding/json"
	"time"
)

// AuditLog is one entry of the append-only audit trail.
type AuditLog struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	User      string          `json:"user"`
	Action    Action          `json:"action"`
	Resource  string          `json:"resource"`
	Severity  Severity        `json:"severity"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

func (l *AuditLog) Validate() error {
	if l.ID == "" {
		return invalid("id", `""`)
	}
	if l.Action == "" {
		return invalid("action", `""`)
	}
	if !l.Severity.Valid() {
		return invalid("severity", l.Severity)
	}
	return nil
}

// Clone returns a deep copy.
func (l AuditLog) Clone() AuditLog {
	if l.Metadata != nil {
		l.Metadata = append(json.RawMessage(nil), l.Metadata...)
	}
	return l
}
