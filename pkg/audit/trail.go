package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

// DigestSize is the number of entries summarized by Digest.
const DigestSize = 50

// Append writes the event to the audit trail of the running mutation.
func Append(tx *store.Tx, event Recordable) (model.AuditLog, error) {
	entry, err := tx.AppendLog(event.Entry())
	if err != nil {
		return model.AuditLog{}, fmt.Errorf("append %s: %w", event.Entry().Action, err)
	}
	return entry, nil
}

// Mirror forwards committed entries to the syslog logger and the SQL sink.
// Either may be nil.
type Mirror struct {
	Logger *Logger
	SQL    *SQLSink
}

var _ store.Sink = (*Mirror)(nil)

func (m *Mirror) Publish(ctx context.Context, entries []model.AuditLog) {
	for _, e := range entries {
		if m.Logger != nil {
			m.Logger.Log(Entry{e})
		}
	}
	if m.SQL != nil {
		m.SQL.Publish(ctx, entries)
	}
}

// Digest renders the newest entries as plain text, one per line. entries
// are expected newest first.
func Digest(entries []model.AuditLog) string {
	if len(entries) > DigestSize {
		entries = entries[:DigestSize]
	}
	lines := make([]string, 0, len(entries))
	for _, l := range entries {
		lines = append(lines, fmt.Sprintf("[%s] %s performed %s on %s (Severity: %s)",
			l.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"), l.User, l.Action, l.Resource, l.Severity))
	}
	return strings.Join(lines, "\n")
}
