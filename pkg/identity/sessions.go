package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/cyberarian/rekama-sys/pkg/audit"
	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

// DefaultIdleTimeout ends a session after this long without activity.
const DefaultIdleTimeout = 15 * time.Minute

var (
	// ErrNoSession is returned for unknown or already ended sessions.
	ErrNoSession = errors.New("no such session")
	// ErrSessionExpired is returned by Touch when the idle timeout has passed.
	ErrSessionExpired = errors.New("session expired")
)

type session struct {
	id       *Identity
	lastSeen time.Time
}

type SessionsOption func(*Sessions)

// WithIdleTimeout overrides DefaultIdleTimeout. Zero disables expiry.
func WithIdleTimeout(d time.Duration) SessionsOption {
	return func(s *Sessions) { s.idle = d }
}

func WithSessionClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

// WithSessionGate sets the gate that authorizes identity switches.
func WithSessionGate(gate *authz.Gate) SessionsOption {
	return func(s *Sessions) { s.gate = gate }
}

func WithSessionLogger(logger *slog.Logger) SessionsOption {
	return func(s *Sessions) { s.logger = logger }
}

// Sessions holds the live sessions. Session bookkeeping is in memory; only
// the audit entries and LastLogin updates reach the record store.
type Sessions struct {
	store  *store.Store
	gate   *authz.Gate
	idle   time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessions(st *store.Store, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		store:    st,
		gate:     authz.NewGate(),
		idle:     DefaultIdleTimeout,
		now:      time.Now,
		logger:   slog.Default(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IdleTimeout returns the configured inactivity limit.
func (s *Sessions) IdleTimeout() time.Duration {
	return s.idle
}

// Login starts a session for a stored user, records LastLogin and appends a
// LOGIN entry.
func (s *Sessions) Login(ctx context.Context, userID string, remoteIP net.IP) (*Identity, error) {
	var profile model.UserProfile
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		u, err := touchLastLogin(tx, userID)
		if err != nil {
			return err
		}
		profile = u
		_, err = audit.Append(tx, audit.SessionEvent{
			User:     u.Email,
			Action:   model.ActionLogin,
			ClientIP: ipString(remoteIP),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("login %q: %w", userID, err)
	}

	id := FromProfile(profile).WithRemoteIP(remoteIP)
	id.SessionID = store.NewID()
	id.StartedAt = s.now().UTC()

	s.mu.Lock()
	s.sessions[id.SessionID] = &session{id: id, lastSeen: id.StartedAt}
	s.mu.Unlock()

	s.logger.Info("session started", "user", id.Actor(), "session", id.SessionID)
	return copyIdentity(id), nil
}

// Logout ends a session and appends a LOGOUT entry.
func (s *Sessions) Logout(ctx context.Context, sessionID string) error {
	id, err := s.remove(sessionID)
	if err != nil {
		return err
	}
	err = s.store.Mutate(ctx, func(tx *store.Tx) error {
		_, err := audit.Append(tx, audit.SessionEvent{
			User:     id.Actor(),
			Action:   model.ActionLogout,
			ClientIP: id.remoteAddr(),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info("session ended", "user", id.Actor(), "session", sessionID)
	return nil
}

// Switch makes the session act as another stored user. Only an identity
// holding SYSTEM_MANAGE may switch. The SWITCH_USER entry is attributed to
// the identity being left.
func (s *Sessions) Switch(ctx context.Context, sessionID, userID string) (*Identity, error) {
	current, err := s.Touch(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Require(current.Role, authz.PermissionSystemManage); err != nil {
		return nil, fmt.Errorf("switch to %q: %w", userID, err)
	}

	var profile model.UserProfile
	err = s.store.Mutate(ctx, func(tx *store.Tx) error {
		u, err := touchLastLogin(tx, userID)
		if err != nil {
			return err
		}
		profile = u
		_, err = audit.Append(tx, audit.SessionEvent{
			User:     current.Actor(),
			Action:   model.ActionSwitchUser,
			Target:   u.Email,
			ClientIP: current.remoteAddr(),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("switch to %q: %w", userID, err)
	}

	next := FromProfile(profile).WithRemoteIP(current.RemoteIP)
	next.SessionID = sessionID
	next.StartedAt = current.StartedAt

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNoSession
	}
	sess.id = next
	sess.lastSeen = s.now().UTC()
	return copyIdentity(next), nil
}

// Touch records activity on a session and returns its identity. A session
// idle for longer than the timeout is ended with a TIMEOUT entry and
// ErrSessionExpired is returned.
func (s *Sessions) Touch(ctx context.Context, sessionID string) (*Identity, error) {
	now := s.now().UTC()

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	if s.expired(sess, now) {
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		if err := s.timeout(ctx, sess.id); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}
	sess.lastSeen = now
	id := copyIdentity(sess.id)
	s.mu.Unlock()
	return id, nil
}

// Len returns the number of sessions currently held.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Expire ends every idle session and returns how many were ended.
func (s *Sessions) Expire(ctx context.Context) (int, error) {
	now := s.now().UTC()

	s.mu.Lock()
	var expired []*Identity
	for key, sess := range s.sessions {
		if s.expired(sess, now) {
			expired = append(expired, sess.id)
			delete(s.sessions, key)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, id := range expired {
		if err := s.timeout(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return len(expired), errors.Join(errs...)
}

// Run calls Expire every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	if s.idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Expire(ctx); err != nil {
				s.logger.Error("session expiry failed", "error", err)
			}
		}
	}
}

func (s *Sessions) expired(sess *session, now time.Time) bool {
	return s.idle > 0 && now.Sub(sess.lastSeen) >= s.idle
}

func (s *Sessions) timeout(ctx context.Context, id *Identity) error {
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		_, err := audit.Append(tx, audit.SessionEvent{
			User:     id.Actor(),
			Action:   model.ActionTimeout,
			ClientIP: id.remoteAddr(),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("timeout %s: %w", id.SessionID, err)
	}
	s.logger.Info("session timed out", "user", id.Actor(), "session", id.SessionID)
	return nil
}

func (s *Sessions) remove(sessionID string) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNoSession
	}
	delete(s.sessions, sessionID)
	return sess.id, nil
}

func touchLastLogin(tx *store.Tx, userID string) (model.UserProfile, error) {
	u, err := tx.User(userID)
	if err != nil {
		return model.UserProfile{}, err
	}
	u.LastLogin = tx.Now()
	return tx.UpdateUser(u)
}

func copyIdentity(id *Identity) *Identity {
	c := *id
	return &c
}

func ipString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}
