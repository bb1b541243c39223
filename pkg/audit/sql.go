package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/lib/pq"

	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

// SQLSink copies committed audit entries into the audit_messages table of a
// separate PostgreSQL database.
type SQLSink struct {
	db       *sql.DB
	hostname string
	logger   *slog.Logger
}

var _ store.Sink = (*SQLSink)(nil)

// OpenSQLSink connects to the audit database. An empty URL disables the
// sink and returns nil.
func OpenSQLSink(url string, logger *slog.Logger) (*SQLSink, error) {
	if url == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	return NewSQLSink(db, logger), nil
}

// NewSQLSink creates a sink with an existing database connection
func NewSQLSink(db *sql.DB, logger *slog.Logger) *SQLSink {
	if logger == nil {
		logger = slog.Default()
	}
	hostname, _ := os.Hostname()
	return &SQLSink{db: db, hostname: hostname, logger: logger}
}

// Close closes the database connection
func (s *SQLSink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save persists one entry. Entries already present are ignored.
func (s *SQLSink) Save(ctx context.Context, entry model.AuditLog) error {
	event := Entry{entry}
	sdata, err := json.Marshal(event.StructuredData())
	if err != nil {
		return err
	}
	metadata := entry.Metadata
	if metadata == nil {
		metadata = json.RawMessage(`{}`)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_messages (entry_id, facility, severity, timestamp, hostname, appname, msgid, actor, action, resource, sdata, metadata, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (entry_id) DO NOTHING
	`,
		entry.ID,
		event.Facility(),
		int(event.Severity()),
		entry.Timestamp.UTC(),
		s.hostname,
		"rekama",
		event.MessageID(),
		entry.User,
		string(entry.Action),
		entry.Resource,
		sdata,
		[]byte(metadata),
		event.Message(),
	)
	return err
}

// Publish saves every entry and logs failures. The audit database is a
// mirror; the record store remains the system of record.
func (s *SQLSink) Publish(ctx context.Context, entries []model.AuditLog) {
	for _, e := range entries {
		if err := s.Save(ctx, e); err != nil {
			s.logger.Error("audit mirror save failed", "entry", e.ID, "action", e.Action, "error", err)
		}
	}
}
