package store

import (
	"fmt"

	"github.com/cyberarian/rekama-sys/pkg/model"
)

// CreatePolicy inserts a policy. CreatedAt defaults to now.
func (tx *Tx) CreatePolicy(p model.Policy) (model.Policy, error) {
	if _, ok := tx.img.policies[p.ID]; ok {
		return model.Policy{}, fmt.Errorf("%w: policy %q", ErrDuplicateKey, p.ID)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = tx.now
	}
	if err := p.Validate(); err != nil {
		return model.Policy{}, err
	}
	tx.img.policies[p.ID] = p
	tx.dirty = true
	return p, nil
}

// ReplacePolicy overwrites name, description and content of an existing
// policy. CreatedAt is kept.
func (tx *Tx) ReplacePolicy(p model.Policy) (model.Policy, error) {
	old, ok := tx.img.policies[p.ID]
	if !ok {
		return model.Policy{}, fmt.Errorf("%w: policy %q", ErrNotFound, p.ID)
	}
	p.CreatedAt = old.CreatedAt
	if err := p.Validate(); err != nil {
		return model.Policy{}, err
	}
	tx.img.policies[p.ID] = p
	tx.dirty = true
	return p, nil
}

func (tx *Tx) DeletePolicy(id string) (model.Policy, error) {
	p, ok := tx.img.policies[id]
	if !ok {
		return model.Policy{}, fmt.Errorf("%w: policy %q", ErrNotFound, id)
	}
	delete(tx.img.policies, id)
	tx.dirty = true
	return p, nil
}

func (tx *Tx) Policy(id string) (model.Policy, error) {
	p, ok := tx.img.policies[id]
	if !ok {
		return model.Policy{}, fmt.Errorf("%w: policy %q", ErrNotFound, id)
	}
	return p, nil
}

// CreateSchedule inserts a schedule. Both the id and the code are unique.
func (tx *Tx) CreateSchedule(sch model.RetentionSchedule) (model.RetentionSchedule, error) {
	if _, ok := tx.img.schedules[sch.ID]; ok {
		return model.RetentionSchedule{}, fmt.Errorf("%w: schedule %q", ErrDuplicateKey, sch.ID)
	}
	for _, other := range tx.img.schedules {
		if other.Code == sch.Code {
			return model.RetentionSchedule{}, fmt.Errorf("%w: schedule code %q", ErrDuplicateKey, sch.Code)
		}
	}
	if err := sch.Validate(); err != nil {
		return model.RetentionSchedule{}, err
	}
	tx.img.schedules[sch.ID] = sch
	tx.dirty = true
	return sch, nil
}

// DeleteSchedule removes a schedule. Records still pointing at it keep the
// dangling reference.
func (tx *Tx) DeleteSchedule(id string) (model.RetentionSchedule, error) {
	sch, ok := tx.img.schedules[id]
	if !ok {
		return model.RetentionSchedule{}, fmt.Errorf("%w: schedule %q", ErrNotFound, id)
	}
	delete(tx.img.schedules, id)
	tx.dirty = true
	return sch, nil
}

func (tx *Tx) Schedule(id string) (model.RetentionSchedule, error) {
	sch, ok := tx.img.schedules[id]
	if !ok {
		return model.RetentionSchedule{}, fmt.Errorf("%w: schedule %q", ErrNotFound, id)
	}
	return sch, nil
}

// CreateConnector inserts a connector. Names are unique because records
// attach to connectors by name.
func (tx *Tx) CreateConnector(c model.Connector) (model.Connector, error) {
	if _, ok := tx.img.connectors[c.ID]; ok {
		return model.Connector{}, fmt.Errorf("%w: connector %q", ErrDuplicateKey, c.ID)
	}
	if err := tx.checkConnectorName(c.ID, c.Name); err != nil {
		return model.Connector{}, err
	}
	if c.Status == "" {
		c.Status = model.ConnectorActive
	}
	if c.LastSync.IsZero() {
		c.LastSync = tx.now
	}
	if err := c.Validate(); err != nil {
		return model.Connector{}, err
	}
	tx.img.connectors[c.ID] = c
	tx.dirty = true
	return c, nil
}

// UpdateConnector applies the user-editable fields of patch.
func (tx *Tx) UpdateConnector(id string, patch model.ConnectorPatch) (model.Connector, error) {
	c, ok := tx.img.connectors[id]
	if !ok {
		return model.Connector{}, fmt.Errorf("%w: connector %q", ErrNotFound, id)
	}
	patch.Apply(&c)
	if err := tx.checkConnectorName(id, c.Name); err != nil {
		return model.Connector{}, err
	}
	if err := c.Validate(); err != nil {
		return model.Connector{}, err
	}
	tx.img.connectors[id] = c
	tx.dirty = true
	return c, nil
}

// PutConnector replaces the stored connector state. ItemsIndexed may not go
// down.
func (tx *Tx) PutConnector(c model.Connector) (model.Connector, error) {
	old, ok := tx.img.connectors[c.ID]
	if !ok {
		return model.Connector{}, fmt.Errorf("%w: connector %q", ErrNotFound, c.ID)
	}
	if c.ItemsIndexed < old.ItemsIndexed {
		return model.Connector{}, fmt.Errorf("%w: itemsIndexed decreased from %d to %d", ErrInvalid, old.ItemsIndexed, c.ItemsIndexed)
	}
	if err := tx.checkConnectorName(c.ID, c.Name); err != nil {
		return model.Connector{}, err
	}
	if err := c.Validate(); err != nil {
		return model.Connector{}, err
	}
	tx.img.connectors[c.ID] = c
	tx.dirty = true
	return c, nil
}

func (tx *Tx) DeleteConnector(id string) (model.Connector, error) {
	c, ok := tx.img.connectors[id]
	if !ok {
		return model.Connector{}, fmt.Errorf("%w: connector %q", ErrNotFound, id)
	}
	delete(tx.img.connectors, id)
	tx.dirty = true
	return c, nil
}

func (tx *Tx) Connector(id string) (model.Connector, error) {
	c, ok := tx.img.connectors[id]
	if !ok {
		return model.Connector{}, fmt.Errorf("%w: connector %q", ErrNotFound, id)
	}
	return c, nil
}

func (tx *Tx) checkConnectorName(id, name string) error {
	for _, other := range tx.img.connectors {
		if other.ID != id && other.Name == name {
			return fmt.Errorf("%w: connector name %q", ErrDuplicateKey, name)
		}
	}
	return nil
}

func (tx *Tx) CreateUser(u model.UserProfile) (model.UserProfile, error) {
	if _, ok := tx.img.users[u.ID]; ok {
		return model.UserProfile{}, fmt.Errorf("%w: user %q", ErrDuplicateKey, u.ID)
	}
	if err := u.Validate(); err != nil {
		return model.UserProfile{}, err
	}
	tx.img.users[u.ID] = u
	tx.dirty = true
	return u, nil
}

// UpdateUser replaces a user profile. A zero LastLogin keeps the stored one.
func (tx *Tx) UpdateUser(u model.UserProfile) (model.UserProfile, error) {
	old, ok := tx.img.users[u.ID]
	if !ok {
		return model.UserProfile{}, fmt.Errorf("%w: user %q", ErrNotFound, u.ID)
	}
	if u.LastLogin.IsZero() {
		u.LastLogin = old.LastLogin
	}
	if err := u.Validate(); err != nil {
		return model.UserProfile{}, err
	}
	tx.img.users[u.ID] = u
	tx.dirty = true
	return u, nil
}

func (tx *Tx) DeleteUser(id string) (model.UserProfile, error) {
	u, ok := tx.img.users[id]
	if !ok {
		return model.UserProfile{}, fmt.Errorf("%w: user %q", ErrNotFound, id)
	}
	delete(tx.img.users, id)
	tx.dirty = true
	return u, nil
}

func (tx *Tx) User(id string) (model.UserProfile, error) {
	u, ok := tx.img.users[id]
	if !ok {
		return model.UserProfile{}, fmt.Errorf("%w: user %q", ErrNotFound, id)
	}
	return u, nil
}
