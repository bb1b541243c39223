package governance

import (
	"context"
	"fmt"
	"time"

	"github.com/cyberarian/rekama-sys/pkg/audit"
	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

// CreateRecord registers a document. An empty id is replaced with a fresh
// one.
func (s *Service) CreateRecord(ctx context.Context, caller *identity.Identity, rec model.DocumentRecord) (model.DocumentRecord, error) {
	if err := s.require(caller, authz.PermissionRecordCreate); err != nil {
		return model.DocumentRecord{}, err
	}
	if rec.ID == "" {
		rec.ID = store.NewID()
	}
	if rec.LegalHold {
		if err := s.require(caller, authz.PermissionLegalHoldManage); err != nil {
			return model.DocumentRecord{}, err
		}
	}

	var created model.DocumentRecord
	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		r, err := tx.CreateRecord(rec)
		if err != nil {
			return nil, err
		}
		created = r
		return audit.RecordEvent{User: caller.Actor(), Action: model.ActionCreateRecord, Record: r}, nil
	})
	if err != nil {
		return model.DocumentRecord{}, fmt.Errorf("create record: %w", err)
	}
	return created, nil
}

// UpdateRecord applies a metadata patch. Changing the legal hold through a
// patch also needs LEGAL_HOLD_MANAGE. An empty patch is not audited.
func (s *Service) UpdateRecord(ctx context.Context, caller *identity.Identity, id string, patch model.RecordPatch) (model.DocumentRecord, error) {
	perms := []authz.Permission{authz.PermissionRecordEdit}
	if patch.LegalHold != nil {
		perms = append(perms, authz.PermissionLegalHoldManage)
	}
	if err := s.require(caller, perms...); err != nil {
		return model.DocumentRecord{}, err
	}

	var updated model.DocumentRecord
	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		r, err := tx.UpdateRecord(id, patch)
		if err != nil {
			return nil, err
		}
		updated = r
		if patch.Empty() {
			return nil, nil
		}
		return audit.RecordEvent{User: caller.Actor(), Action: model.ActionUpdateRecord, Record: r}, nil
	})
	if err != nil {
		return model.DocumentRecord{}, fmt.Errorf("update record %q: %w", id, err)
	}
	return updated, nil
}

// SetLegalHold applies or releases a legal hold. Setting the current value
// again is a no-op.
func (s *Service) SetLegalHold(ctx context.Context, caller *identity.Identity, id string, hold bool, reason string) (model.DocumentRecord, error) {
	if err := s.require(caller, authz.PermissionLegalHoldManage); err != nil {
		return model.DocumentRecord{}, err
	}

	var updated model.DocumentRecord
	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		r, err := tx.Record(id)
		if err != nil {
			return nil, err
		}
		if r.LegalHold == hold {
			updated = r
			return nil, nil
		}
		r, err = tx.UpdateRecord(id, model.RecordPatch{LegalHold: &hold})
		if err != nil {
			return nil, err
		}
		updated = r
		return audit.LegalHoldEvent{User: caller.Actor(), Record: r, Applied: hold, Reason: reason}, nil
	})
	if err != nil {
		return model.DocumentRecord{}, fmt.Errorf("legal hold %q: %w", id, err)
	}
	return updated, nil
}

// ComputeDisposalDate derives the disposal date from the record's retention
// schedule. A non-empty scheduleID assigns that schedule first. Creation
// counts from the upload time, LastModified from now, and Event triggers
// clear the date because it cannot be known in advance.
func (s *Service) ComputeDisposalDate(ctx context.Context, caller *identity.Identity, id, scheduleID string) (model.DocumentRecord, error) {
	if err := s.require(caller, authz.PermissionRecordEdit); err != nil {
		return model.DocumentRecord{}, err
	}

	var updated model.DocumentRecord
	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		r, err := tx.Record(id)
		if err != nil {
			return nil, err
		}
		if r.LegalHold {
			return nil, fmt.Errorf("%w: %q", ErrLegalHoldBlock, id)
		}
		if scheduleID == "" {
			scheduleID = r.RetentionScheduleID
		}
		if scheduleID == "" {
			return nil, ErrNoSchedule
		}
		sch, err := tx.Schedule(scheduleID)
		if err != nil {
			return nil, err
		}

		patch := model.RecordPatch{}
		if r.RetentionScheduleID != sch.ID {
			patch.RetentionScheduleID = &sch.ID
		}
		date := DisposalDate(r, sch, tx.Now())
		if date == nil {
			patch.ClearDisposalDate = true
		} else {
			patch.DisposalDate = date
		}
		r, err = tx.UpdateRecord(id, patch)
		if err != nil {
			return nil, err
		}
		updated = r
		return audit.DisposalDateEvent{User: caller.Actor(), Record: r, Schedule: sch, DisposalDate: date}, nil
	})
	if err != nil {
		return model.DocumentRecord{}, fmt.Errorf("disposal date %q: %w", id, err)
	}
	return updated, nil
}

// DisposalDate applies a schedule to a record. It returns nil for event
// triggered schedules.
func DisposalDate(r model.DocumentRecord, sch model.RetentionSchedule, now time.Time) *time.Time {
	var from time.Time
	switch sch.Trigger {
	case model.TriggerCreation:
		from = r.UploadedAt
	case model.TriggerLastModified:
		from = now
	default:
		return nil
	}
	d := from.AddDate(sch.RetentionYears, 0, 0).UTC()
	return &d
}

// DisposeRecord runs the secure disposition protocol and returns the
// destruction certificate.
func (s *Service) DisposeRecord(ctx context.Context, caller *identity.Identity, id string) (model.DestructionCertificate, error) {
	if err := s.require(caller, authz.PermissionRecordDelete); err != nil {
		return model.DestructionCertificate{}, err
	}

	var cert model.DestructionCertificate
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		c, err := tx.DisposeRecord(id, caller.Actor())
		if err != nil {
			return err
		}
		cert = c
		return nil
	})
	if err != nil {
		return model.DestructionCertificate{}, fmt.Errorf("dispose record %q: %w", id, err)
	}
	s.logger.Info("record destroyed", "record", id, "authorized_by", cert.AuthorizedBy)
	return cert, nil
}

func (s *Service) Records() []model.DocumentRecord {
	return s.store.Records()
}

func (s *Service) Record(id string) (model.DocumentRecord, error) {
	return s.store.Record(id)
}
