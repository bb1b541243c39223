package authz

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when a role lacks a required permission.
var ErrUnauthorized = errors.New("unauthorized")

// Gate checks permissions in front of every mutation.
type Gate struct {
	// OnDeny, if set, observes rejected checks. It must not write to the store.
	OnDeny func(role Role, permission Permission)
}

// NewGate creates a Gate.
func NewGate() *Gate {
	return &Gate{}
}

// Require returns nil when role holds every listed permission and an error
// wrapping ErrUnauthorized otherwise.
func (g *Gate) Require(role Role, permissions ...Permission) error {
	for _, p := range permissions {
		if HasPermission(role, p) {
			continue
		}
		if g != nil && g.OnDeny != nil {
			g.OnDeny(role, p)
		}
		return fmt.Errorf("%w: role %q lacks %s", ErrUnauthorized, role, p)
	}
	return nil
}
