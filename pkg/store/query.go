package store

import (
	"fmt"

	"github.com/cyberarian/rekama-sys/pkg/model"
)

// Policies lists committed policies, newest first.
func (s *Store) Policies() []model.Policy {
	return sortedPolicies(s.current.Load().policies)
}

func (s *Store) Policy(id string) (model.Policy, error) {
	p, ok := s.current.Load().policies[id]
	if !ok {
		return model.Policy{}, fmt.Errorf("%w: policy %q", ErrNotFound, id)
	}
	return p, nil
}

// Schedules lists committed schedules by code.
func (s *Store) Schedules() []model.RetentionSchedule {
	return sortedSchedules(s.current.Load().schedules)
}

func (s *Store) Schedule(id string) (model.RetentionSchedule, error) {
	sch, ok := s.current.Load().schedules[id]
	if !ok {
		return model.RetentionSchedule{}, fmt.Errorf("%w: schedule %q", ErrNotFound, id)
	}
	return sch, nil
}

// Connectors lists committed connectors by name.
func (s *Store) Connectors() []model.Connector {
	return sortedConnectors(s.current.Load().connectors)
}

func (s *Store) Connector(id string) (model.Connector, error) {
	c, ok := s.current.Load().connectors[id]
	if !ok {
		return model.Connector{}, fmt.Errorf("%w: connector %q", ErrNotFound, id)
	}
	return c, nil
}

// Users lists committed users by name.
func (s *Store) Users() []model.UserProfile {
	return sortedUsers(s.current.Load().users)
}

func (s *Store) User(id string) (model.UserProfile, error) {
	u, ok := s.current.Load().users[id]
	if !ok {
		return model.UserProfile{}, fmt.Errorf("%w: user %q", ErrNotFound, id)
	}
	return u, nil
}

// Logs returns the most recent MaxLogEntries audit entries, newest first.
func (s *Store) Logs() []model.AuditLog {
	return newestLogs(s.current.Load().logs, MaxLogEntries)
}

// AllLogs returns every audit entry, newest first.
func (s *Store) AllLogs() []model.AuditLog {
	return newestLogs(s.current.Load().logs, 0)
}

// CountBySource counts committed records attributed to source.
func (s *Store) CountBySource(source string) int {
	n := 0
	for _, r := range s.current.Load().records {
		if r.Source == source {
			n++
		}
	}
	return n
}
