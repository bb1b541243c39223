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

func (s *Service) CreatePolicy(ctx context.Context, caller *identity.Identity, p model.Policy) (model.Policy, error) {
	if err := s.require(caller, authz.PermissionPolicyManage); err != nil {
		return model.Policy{}, err
	}
	if p.ID == "" {
		p.ID = store.NewID()
	}

	var created model.Policy
	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		p, err := tx.CreatePolicy(p)
		if err != nil {
			return nil, err
		}
		created = p
		return audit.PolicyEvent{User: caller.Actor(), Action: model.ActionCreatePolicy, Policy: p}, nil
	})
	if err != nil {
		return model.Policy{}, fmt.Errorf("create policy: %w", err)
	}
	return created, nil
}

// UpdatePolicy replaces name, description and content of a policy.
func (s *Service) UpdatePolicy(ctx context.Context, caller *identity.Identity, p model.Policy) (model.Policy, error) {
	if err := s.require(caller, authz.PermissionPolicyManage); err != nil {
		return model.Policy{}, err
	}

	var updated model.Policy
	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		p, err := tx.ReplacePolicy(p)
		if err != nil {
			return nil, err
		}
		updated = p
		return audit.PolicyEvent{User: caller.Actor(), Action: model.ActionUpdatePolicy, Policy: p}, nil
	})
	if err != nil {
		return model.Policy{}, fmt.Errorf("update policy %q: %w", p.ID, err)
	}
	return updated, nil
}

// SavePolicy creates the policy or replaces it when the id already exists.
func (s *Service) SavePolicy(ctx context.Context, caller *identity.Identity, p model.Policy) (model.Policy, error) {
	if p.ID != "" {
		if _, err := s.store.Policy(p.ID); err == nil {
			return s.UpdatePolicy(ctx, caller, p)
		}
	}
	return s.CreatePolicy(ctx, caller, p)
}

// DeletePolicy needs both POLICY_MANAGE and SYSTEM_MANAGE.
func (s *Service) DeletePolicy(ctx context.Context, caller *identity.Identity, id string) error {
	if err := s.require(caller, authz.PermissionPolicyManage, authz.PermissionSystemManage); err != nil {
		return err
	}

	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		p, err := tx.DeletePolicy(id)
		if err != nil {
			return nil, err
		}
		return audit.PolicyEvent{User: caller.Actor(), Action: model.ActionDeletePolicy, Policy: p}, nil
	})
	if err != nil {
		return fmt.Errorf("delete policy %q: %w", id, err)
	}
	return nil
}

// PolicyText returns the raw content of a policy for an external reader.
func (s *Service) PolicyText(ctx context.Context, caller *identity.Identity, id string) (string, error) {
	if caller == nil {
		return "", fmt.Errorf("%w: no identity", authz.ErrUnauthorized)
	}
	p, err := s.store.Policy(id)
	if err != nil {
		return "", err
	}
	return p.Content, nil
}

func (s *Service) Policies() []model.Policy {
	return s.store.Policies()
}

func (s *Service) CreateSchedule(ctx context.Context, caller *identity.Identity, sch model.RetentionSchedule) (model.RetentionSchedule, error) {
	if err := s.require(caller, authz.PermissionPolicyManage); err != nil {
		return model.RetentionSchedule{}, err
	}
	if sch.ID == "" {
		sch.ID = store.NewID()
	}

	var created model.RetentionSchedule
	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		sch, err := tx.CreateSchedule(sch)
		if err != nil {
			return nil, err
		}
		created = sch
		return audit.ScheduleEvent{User: caller.Actor(), Action: model.ActionCreateSchedule, Schedule: sch}, nil
	})
	if err != nil {
		return model.RetentionSchedule{}, fmt.Errorf("create schedule: %w", err)
	}
	return created, nil
}

// DeleteSchedule removes a schedule. Records that reference it are left as
// they are.
func (s *Service) DeleteSchedule(ctx context.Context, caller *identity.Identity, id string) error {
	if err := s.require(caller, authz.PermissionPolicyManage); err != nil {
		return err
	}

	err := s.mutate(ctx, func(tx *store.Tx) (audit.Recordable, error) {
		sch, err := tx.DeleteSchedule(id)
		if err != nil {
			return nil, err
		}
		return audit.ScheduleEvent{User: caller.Actor(), Action: model.ActionDeleteSchedule, Schedule: sch}, nil
	})
	if err != nil {
		return fmt.Errorf("delete schedule %q: %w", id, err)
	}
	return nil
}

func (s *Service) Schedules() []model.RetentionSchedule {
	return s.store.Schedules()
}
