package governance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cyberarian/rekama-sys/pkg/audit"
	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

var (
	ErrUnauthorized       = authz.ErrUnauthorized
	ErrNotFound           = store.ErrNotFound
	ErrDuplicateKey       = store.ErrDuplicateKey
	ErrImmutableField     = store.ErrImmutableField
	ErrLegalHoldBlock     = store.ErrLegalHoldBlock
	ErrStorageUnavailable = store.ErrStorageUnavailable
	ErrInvalid            = store.ErrInvalid

	// ErrSelfDelete is returned when a caller tries to delete their own
	// account.
	ErrSelfDelete = errors.New("cannot delete the signed-in user")
	// ErrNoSchedule is returned when a disposal date is requested for a
	// record without a retention schedule.
	ErrNoSchedule = errors.New("record has no retention schedule")
)

type Option func(*Service)

func WithGate(gate *authz.Gate) Option {
	return func(s *Service) { s.gate = gate }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// Service mediates all governance operations.
type Service struct {
	store  *store.Store
	gate   *authz.Gate
	logger *slog.Logger
}

func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		gate:   authz.NewGate(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying record store for read-only queries.
func (s *Service) Store() *store.Store {
	return s.store
}

func (s *Service) require(caller *identity.Identity, permissions ...authz.Permission) error {
	if caller == nil {
		return fmt.Errorf("%w: no identity", authz.ErrUnauthorized)
	}
	return s.gate.Require(caller.Role, permissions...)
}

// mutate runs fn in a store mutation and records the event it returns.
func (s *Service) mutate(ctx context.Context, fn func(tx *store.Tx) (audit.Recordable, error)) error {
	return s.store.Mutate(ctx, func(tx *store.Tx) error {
		event, err := fn(tx)
		if err != nil {
			return err
		}
		if event == nil {
			return nil
		}
		_, err = audit.Append(tx, event)
		return err
	})
}
