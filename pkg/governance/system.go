package governance

import (
	"context"
	"fmt"

	"github.com/cyberarian/rekama-sys/pkg/audit"
	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

// Logs returns the newest audit entries, capped at store.MaxLogEntries.
func (s *Service) Logs(caller *identity.Identity) ([]model.AuditLog, error) {
	if err := s.require(caller, authz.PermissionLogView); err != nil {
		return nil, err
	}
	return s.store.Logs(), nil
}

// LogDigest renders the newest entries as text for an external summarizer.
func (s *Service) LogDigest(caller *identity.Identity) (string, error) {
	logs, err := s.Logs(caller)
	if err != nil {
		return "", err
	}
	return audit.Digest(logs), nil
}

// Export dumps the whole store. The DATA_EXPORT entry is appended after the
// dump was taken, so it is not part of it.
func (s *Service) Export(ctx context.Context, caller *identity.Identity) (store.Export, error) {
	if err := s.require(caller, authz.PermissionSystemManage); err != nil {
		return store.Export{}, err
	}

	var current *model.UserProfile
	if u, err := s.store.User(caller.UserID); err == nil {
		current = &u
	}
	exp := s.store.Export(current)

	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		return audit.ExportEvent{User: caller.Actor(), Records: len(exp.Records), Logs: len(exp.Logs)}, nil
	})
	if err != nil {
		return store.Export{}, fmt.Errorf("export: %w", err)
	}
	s.logger.Info("store exported", "user", caller.Actor(), "records", len(exp.Records))
	return exp, nil
}

// Import replaces the store contents with an export.
func (s *Service) Import(ctx context.Context, caller *identity.Identity, exp store.Export) error {
	if err := s.require(caller, authz.PermissionSystemManage); err != nil {
		return err
	}
	if err := s.store.Import(ctx, exp); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	s.logger.Warn("store imported", "user", caller.Actor(), "records", len(exp.Records))
	return nil
}

// FactoryReset erases the durable image and reseeds. confirm must equal
// store.ResetConfirmation.
func (s *Service) FactoryReset(ctx context.Context, caller *identity.Identity, confirm string) error {
	if err := s.require(caller, authz.PermissionSystemManage); err != nil {
		return err
	}
	if err := s.store.Reset(ctx, confirm); err != nil {
		return fmt.Errorf("factory reset: %w", err)
	}
	s.logger.Warn("factory reset", "user", caller.Actor())
	return nil
}

func (s *Service) Status() store.Status {
	return s.store.Status()
}
