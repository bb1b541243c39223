// Package store is the record store: the governance schema and every read
// and write primitive over it.
//
// The store keeps the whole schema as one in-memory image. Writes go through
// Mutate, which serializes callers, applies the change to a private clone of
// the committed image, saves the complete clone through a durability.Backend
// and only then publishes it. Readers load the committed image atomically and
// never block on writers, so they observe either the state before or after a
// mutation, never a partial one.
//
//	err := s.Mutate(ctx, func(tx *store.Tx) error {
//	    rec, err := tx.CreateRecord(model.DocumentRecord{ID: "rec_1", ...})
//	    if err != nil {
//	        return err
//	    }
//	    _, err = tx.AppendLog(model.AuditLog{Action: model.ActionCreateRecord, ...})
//	    return err
//	})
//
// Records never leave the store through a bare delete. Tx.DisposeRecord
// writes a destruction certificate to the audit trail and removes the row in
// the same mutation.
//
// If a snapshot cannot be saved the mutation is discarded, the caller gets
// ErrStorageUnavailable and the store reports itself degraded until a later
// save succeeds.
package store
