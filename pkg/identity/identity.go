package identity

import (
	"context"
	"net"
	"time"

	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity is the acting user of a session.
type Identity struct {
	UserID string     `json:"userId"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   authz.Role `json:"role"`

	// Session context
	SessionID string    `json:"sessionId,omitempty"`
	StartedAt time.Time `json:"startedAt,omitempty"`
	RemoteIP  net.IP    `json:"remoteIp,omitempty"`
}

// FromProfile creates an Identity for a stored user.
func FromProfile(u model.UserProfile) *Identity {
	return &Identity{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	}
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// Actor is the name written to the audit trail.
func (i *Identity) Actor() string {
	if i == nil {
		return "system"
	}
	if i.Email != "" {
		return i.Email
	}
	return i.UserID
}

func (i *Identity) remoteAddr() string {
	if i.RemoteIP == nil {
		return ""
	}
	return i.RemoteIP.String()
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
