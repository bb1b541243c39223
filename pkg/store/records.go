package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cyberarian/rekama-sys/pkg/model"
)

// CreateRecord inserts a new record. The checksum is generated when absent;
// UploadedAt and Version are always assigned here.
func (tx *Tx) CreateRecord(rec model.DocumentRecord) (model.DocumentRecord, error) {
	if _, ok := tx.img.records[rec.ID]; ok {
		return model.DocumentRecord{}, fmt.Errorf("%w: record %q", ErrDuplicateKey, rec.ID)
	}
	if rec.Checksum == "" {
		rec.Checksum = NewChecksum()
	}
	if rec.Status == "" {
		rec.Status = model.StatusActive
	}
	if rec.Custodian == "" {
		rec.Custodian = "System"
	}
	if rec.Format == "" {
		rec.Format = "application/octet-stream"
	}
	rec.UploadedAt = tx.now
	rec.Version = 1
	if err := validateRecord(&rec); err != nil {
		return model.DocumentRecord{}, err
	}
	rec = rec.Clone()
	tx.img.records[rec.ID] = rec
	tx.dirty = true
	return rec.Clone(), nil
}

// UpdateRecord applies patch to the record. Patches touching id, checksum or
// uploadedAt fail with ErrImmutableField. Patches touching the schedule or
// disposal date of a held record, or of one the patch puts on hold, fail
// with ErrLegalHoldBlock. An empty patch changes nothing and does not bump
// the version.
func (tx *Tx) UpdateRecord(id string, patch model.RecordPatch) (model.DocumentRecord, error) {
	rec, ok := tx.img.records[id]
	if !ok {
		return model.DocumentRecord{}, fmt.Errorf("%w: record %q", ErrNotFound, id)
	}
	if fields := patch.ImmutableFields(); len(fields) > 0 {
		return model.DocumentRecord{}, fmt.Errorf("%w: %s", ErrImmutableField, strings.Join(fields, ", "))
	}
	held := rec.LegalHold || (patch.LegalHold != nil && *patch.LegalHold)
	if fields := patch.RetentionFields(); held && len(fields) > 0 {
		return model.DocumentRecord{}, fmt.Errorf("%w: %q: %s", ErrLegalHoldBlock, id, strings.Join(fields, ", "))
	}
	if patch.Empty() {
		return rec.Clone(), nil
	}

	rec = rec.Clone()
	patch.Apply(&rec)
	rec.Version++
	if err := validateRecord(&rec); err != nil {
		return model.DocumentRecord{}, err
	}
	tx.img.records[id] = rec
	tx.dirty = true
	return rec.Clone(), nil
}

// DisposeRecord securely destroys a record. The destruction certificate is
// appended to the audit trail first; the row is removed only if that append
// succeeded.
func (tx *Tx) DisposeRecord(id, authorizedBy string) (model.DestructionCertificate, error) {
	rec, ok := tx.img.records[id]
	if !ok {
		return model.DestructionCertificate{}, fmt.Errorf("%w: record %q", ErrNotFound, id)
	}
	if rec.LegalHold {
		return model.DestructionCertificate{}, fmt.Errorf("%w: %q", ErrLegalHoldBlock, id)
	}

	cert := model.DestructionCertificate{
		RecordID:       rec.ID,
		Title:          rec.Title,
		Checksum:       rec.Checksum,
		Classification: rec.Classification,
		DisposalDate:   tx.now,
		AuthorizedBy:   authorizedBy,
		Method:         model.DestructionMethod,
	}
	metadata, err := json.Marshal(cert)
	if err != nil {
		return model.DestructionCertificate{}, fmt.Errorf("encode certificate: %w", err)
	}
	_, err = tx.AppendLog(model.AuditLog{
		User:     authorizedBy,
		Action:   model.ActionCertificateOfDestruction,
		Resource: rec.Title,
		Severity: model.SeverityMedium,
		Metadata: metadata,
	})
	if err != nil {
		return model.DestructionCertificate{}, fmt.Errorf("record destruction certificate: %w", err)
	}

	delete(tx.img.records, id)
	tx.dirty = true
	return cert, nil
}

// Record returns a record as seen by this mutation.
func (tx *Tx) Record(id string) (model.DocumentRecord, error) {
	rec, ok := tx.img.records[id]
	if !ok {
		return model.DocumentRecord{}, fmt.Errorf("%w: record %q", ErrNotFound, id)
	}
	return rec.Clone(), nil
}

// CountBySource counts records attributed to source.
func (tx *Tx) CountBySource(source string) int {
	n := 0
	for _, r := range tx.img.records {
		if r.Source == source {
			n++
		}
	}
	return n
}

func validateRecord(rec *model.DocumentRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.Status == model.StatusDestroyed {
		return fmt.Errorf("%w: status %s is reached only through disposition", ErrInvalid, rec.Status)
	}
	return nil
}

// Record returns a committed record.
func (s *Store) Record(id string) (model.DocumentRecord, error) {
	rec, ok := s.current.Load().records[id]
	if !ok {
		return model.DocumentRecord{}, fmt.Errorf("%w: record %q", ErrNotFound, id)
	}
	return rec.Clone(), nil
}

// Records lists committed records, newest upload first.
func (s *Store) Records() []model.DocumentRecord {
	return sortedRecords(s.current.Load().records)
}
