// Package audit builds and mirrors entries of the governance audit trail.
//
// The trail itself lives in the record store and is append-only. This
// package provides:
//
//   - typed events (SessionEvent, RecordEvent, LegalHoldEvent, SyncEvent,
//     ...) that render into model.AuditLog entries with consistent
//     resources, severities and metadata
//   - Append, which writes an event inside a store mutation
//   - Logger, an RFC5424 syslog writer for security monitoring
//   - SQLSink, a PostgreSQL mirror of committed entries
//   - Digest, a plain text rendering for external summarizers
//
// # Usage
//
//	err := s.Mutate(ctx, func(tx *store.Tx) error {
//	    rec, err := tx.CreateRecord(rec)
//	    if err != nil {
//	        return err
//	    }
//	    _, err = audit.Append(tx, audit.RecordEvent{
//	        User:   caller.Email,
//	        Action: model.ActionCreateRecord,
//	        Record: rec,
//	    })
//	    return err
//	})
//
// Mirrors only ever see entries whose mutation was saved.
package audit
