package governance

import (
	"context"
	"fmt"
	"strings"

	"github.com/cyberarian/rekama-sys/pkg/audit"
	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

func (s *Service) CreateUser(ctx context.Context, caller *identity.Identity, u model.UserProfile) (model.UserProfile, error) {
	if err := s.require(caller, authz.PermissionSystemManage); err != nil {
		return model.UserProfile{}, err
	}
	if u.ID == "" {
		u.ID = store.NewID()
	}
	if u.Avatar == "" {
		u.Avatar = initials(u.Name)
	}

	var created model.UserProfile
	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		u, err := tx.CreateUser(u)
		if err != nil {
			return nil, err
		}
		created = u
		return audit.UserEvent{User: caller.Actor(), Action: model.ActionCreateUser, Subject: u}, nil
	})
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *Service) UpdateUser(ctx context.Context, caller *identity.Identity, u model.UserProfile) (model.UserProfile, error) {
	if err := s.require(caller, authz.PermissionSystemManage); err != nil {
		return model.UserProfile{}, err
	}

	var updated model.UserProfile
	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		u, err := tx.UpdateUser(u)
		if err != nil {
			return nil, err
		}
		updated = u
		return audit.UserEvent{User: caller.Actor(), Action: model.ActionUpdateUser, Subject: u}, nil
	})
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("update user %q: %w", u.ID, err)
	}
	return updated, nil
}

// DeleteUser removes an account other than the caller's own.
func (s *Service) DeleteUser(ctx context.Context, caller *identity.Identity, id string) error {
	if err := s.require(caller, authz.PermissionSystemManage); err != nil {
		return err
	}
	if id == caller.UserID {
		return ErrSelfDelete
	}

	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		u, err := tx.DeleteUser(id)
		if err != nil {
			return nil, err
		}
		return audit.UserEvent{User: caller.Actor(), Action: model.ActionDeleteUser, Subject: u}, nil
	})
	if err != nil {
		return fmt.Errorf("delete user %q: %w", id, err)
	}
	return nil
}

func (s *Service) Users() []model.UserProfile {
	return s.store.Users()
}

// UpdateSettings replaces the organization settings.
func (s *Service) UpdateSettings(ctx context.Context, caller *identity.Identity, settings model.AppSettings) (model.AppSettings, error) {
	if err := s.require(caller, authz.PermissionSystemManage); err != nil {
		return model.AppSettings{}, err
	}
	if settings.RetentionDefault <= 0 {
		return model.AppSettings{}, fmt.Errorf("%w: retentionDefault %d", ErrInvalid, settings.RetentionDefault)
	}

	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		if err := tx.PutSettings(settings); err != nil {
			return nil, err
		}
		return audit.ConfigurationEvent{User: caller.Actor(), Settings: settings}, nil
	})
	if err != nil {
		return model.AppSettings{}, fmt.Errorf("update settings: %w", err)
	}
	return settings, nil
}

func (s *Service) Settings() model.AppSettings {
	return s.store.Settings()
}

func initials(name string) string {
	var out []rune
	start := true
	for _, r := range name {
		switch {
		case r == ' ':
			start = true
		case start && len(out) < 2:
			out = append(out, r)
			start = false
		default:
			start = false
		}
	}
	return strings.ToUpper(string(out))
}
