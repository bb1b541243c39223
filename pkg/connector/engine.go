package connector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cyberarian/rekama-sys/pkg/audit"
	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

var (
	// ErrInvalidTransition is returned for pause or resume requests that do
	// not apply to the connector's current status.
	ErrInvalidTransition = errors.New("invalid connector transition")
	// ErrSyncInProgress is returned when the connector is already syncing.
	ErrSyncInProgress = errors.New("sync already in progress")
)

// Observer is told about every sync that ran discovery.
type Observer interface {
	SyncFinished(c model.Connector, discovered int, elapsed time.Duration, err error)
}

// Result describes one Sync call.
type Result struct {
	Connector  model.Connector
	Discovered []model.DocumentRecord
	// Skipped is set when the connector was paused.
	Skipped bool
}

type Option func(*Engine)

func WithDiscoverer(d Discoverer) Option {
	return func(e *Engine) { e.discoverer = d }
}

func WithGate(gate *authz.Gate) Option {
	return func(e *Engine) { e.gate = gate }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// Engine runs connector commands against the record store.
type Engine struct {
	store      *store.Store
	discoverer Discoverer
	gate       *authz.Gate
	logger     *slog.Logger
	observer   Observer

	mu      sync.Mutex
	running map[string]struct{}
}

func NewEngine(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   st,
		gate:    authz.NewGate(),
		logger:  slog.Default(),
		running: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.discoverer == nil {
		e.discoverer = NewSimulatedFeed(nil)
	}
	return e
}

func (e *Engine) require(caller *identity.Identity) error {
	if caller == nil {
		return fmt.Errorf("%w: no identity", authz.ErrUnauthorized)
	}
	return e.gate.Require(caller.Role, authz.PermissionConnectorManage)
}

// Sync runs one synchronization of connector id. Paused connectors are left
// untouched and reported as skipped. A discovery failure, cancellation
// included, moves the connector to Error and is returned after it has been
// recorded.
func (e *Engine) Sync(ctx context.Context, caller *identity.Identity, id string) (Result, error) {
	if err := e.require(caller); err != nil {
		return Result{}, err
	}
	if !e.claim(id) {
		return Result{}, fmt.Errorf("%w: %q", ErrSyncInProgress, id)
	}
	defer e.release(id)

	var (
		c        model.Connector
		existing int
		skipped  bool
	)
	err := e.store.Mutate(ctx, func(tx *store.Tx) error {
		cur, err := tx.Connector(id)
		if err != nil {
			return err
		}
		if cur.Status == model.ConnectorPaused {
			skipped = true
			c = cur
			return nil
		}
		cur.Status = model.ConnectorSyncing
		c, err = tx.PutConnector(cur)
		existing = tx.CountBySource(c.Name)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("sync %q: %w", id, err)
	}
	if skipped {
		return Result{Connector: c, Skipped: true}, nil
	}

	start := time.Now()
	found, discoverErr := e.discoverer.Discover(ctx, c, existing)

	// The outcome is committed even when ctx was cancelled during
	// discovery, so the connector never stays Syncing.
	res := Result{}
	err = e.store.Mutate(context.WithoutCancel(ctx), func(tx *store.Tx) error {
		res = Result{}
		cur, err := tx.Connector(id)
		if err != nil {
			return err
		}
		if cur.Status == model.ConnectorPaused {
			res.Connector, res.Skipped = cur, true
			return nil
		}

		if discoverErr != nil {
			cur.Status = model.ConnectorError
			cur.LastErrorMessage = discoverErr.Error()
			if cur, err = tx.PutConnector(cur); err != nil {
				return err
			}
			res.Connector = cur
			_, err = audit.Append(tx, audit.SyncEvent{User: caller.Actor(), Connector: cur, Err: discoverErr})
			return err
		}

		room := DiscoveryThreshold - tx.CountBySource(cur.Name)
		for _, rec := range found.Records {
			if len(res.Discovered) >= min(room, MaxDiscoveredPerSync) {
				break
			}
			rec.Source = cur.Name
			created, err := tx.CreateRecord(rec)
			if err != nil {
				return err
			}
			res.Discovered = append(res.Discovered, created)
		}

		cur.ItemsIndexed += len(res.Discovered) + max(found.RemoteDelta, 0)
		cur.LastSync = tx.Now()
		cur.Status = model.ConnectorActive
		cur.LastErrorMessage = ""
		if cur, err = tx.PutConnector(cur); err != nil {
			return err
		}
		res.Connector = cur
		_, err = audit.Append(tx, audit.SyncEvent{User: caller.Actor(), Connector: cur, Discovered: len(res.Discovered)})
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("sync %q: %w", id, err)
	}
	if res.Skipped {
		return res, nil
	}

	if e.observer != nil {
		e.observer.SyncFinished(res.Connector, len(res.Discovered), time.Since(start), discoverErr)
	}
	if discoverErr != nil {
		e.logger.Warn("connector sync failed", "connector", res.Connector.Name, "error", discoverErr)
		return res, fmt.Errorf("sync %q: %w", id, discoverErr)
	}
	e.logger.Info("connector synced",
		"connector", res.Connector.Name,
		"discovered", len(res.Discovered),
		"items_indexed", res.Connector.ItemsIndexed,
	)
	return res, nil
}

func (e *Engine) claim(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.running[id]; ok {
		return false
	}
	e.running[id] = struct{}{}
	return true
}

func (e *Engine) release(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.running, id)
}

// Add registers a connector. An empty id is replaced with a fresh one.
func (e *Engine) Add(ctx context.Context, caller *identity.Identity, c model.Connector) (model.Connector, error) {
	if err := e.require(caller); err != nil {
		return model.Connector{}, err
	}
	if c.ID == "" {
		c.ID = store.NewID()
	}
	c.Status = model.ConnectorActive
	c.LastErrorMessage = ""

	var created model.Connector
	err := e.store.Mutate(ctx, func(tx *store.Tx) error {
		var err error
		if created, err = tx.CreateConnector(c); err != nil {
			return err
		}
		_, err = audit.Append(tx, audit.ConnectorEvent{User: caller.Actor(), Action: model.ActionAddConnector, Connector: created})
		return err
	})
	if err != nil {
		return model.Connector{}, fmt.Errorf("add connector: %w", err)
	}
	return created, nil
}

// Update changes the user-editable fields of a connector.
func (e *Engine) Update(ctx context.Context, caller *identity.Identity, id string, patch model.ConnectorPatch) (model.Connector, error) {
	if err := e.require(caller); err != nil {
		return model.Connector{}, err
	}

	var updated model.Connector
	err := e.store.Mutate(ctx, func(tx *store.Tx) error {
		var err error
		if updated, err = tx.UpdateConnector(id, patch); err != nil {
			return err
		}
		_, err = audit.Append(tx, audit.ConnectorEvent{User: caller.Actor(), Action: model.ActionUpdateConnector, Connector: updated})
		return err
	})
	if err != nil {
		return model.Connector{}, fmt.Errorf("update connector %q: %w", id, err)
	}
	return updated, nil
}

// Delete removes a connector. Records it discovered keep their source label.
func (e *Engine) Delete(ctx context.Context, caller *identity.Identity, id string) error {
	if err := e.require(caller); err != nil {
		return err
	}

	err := e.store.Mutate(ctx, func(tx *store.Tx) error {
		c, err := tx.DeleteConnector(id)
		if err != nil {
			return err
		}
		_, err = audit.Append(tx, audit.ConnectorEvent{User: caller.Actor(), Action: model.ActionDeleteConnector, Connector: c})
		return err
	})
	if err != nil {
		return fmt.Errorf("delete connector %q: %w", id, err)
	}
	return nil
}

// Pause stops a connector from syncing.
func (e *Engine) Pause(ctx context.Context, caller *identity.Identity, id string) (model.Connector, error) {
	return e.transition(ctx, caller, id, model.ActionPauseConnector, func(s model.ConnectorStatus) (model.ConnectorStatus, bool) {
		return model.ConnectorPaused, s != model.ConnectorPaused
	})
}

// Resume reactivates a paused connector.
func (e *Engine) Resume(ctx context.Context, caller *identity.Identity, id string) (model.Connector, error) {
	return e.transition(ctx, caller, id, model.ActionResumeConnector, func(s model.ConnectorStatus) (model.ConnectorStatus, bool) {
		return model.ConnectorActive, s == model.ConnectorPaused
	})
}

func (e *Engine) transition(ctx context.Context, caller *identity.Identity, id string, action model.Action, next func(model.ConnectorStatus) (model.ConnectorStatus, bool)) (model.Connector, error) {
	if err := e.require(caller); err != nil {
		return model.Connector{}, err
	}

	var updated model.Connector
	err := e.store.Mutate(ctx, func(tx *store.Tx) error {
		c, err := tx.Connector(id)
		if err != nil {
			return err
		}
		status, ok := next(c.Status)
		if !ok {
			return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, action, c.Status)
		}
		c.Status = status
		if updated, err = tx.PutConnector(c); err != nil {
			return err
		}
		_, err = audit.Append(tx, audit.ConnectorEvent{User: caller.Actor(), Action: action, Connector: updated})
		return err
	})
	if err != nil {
		return model.Connector{}, fmt.Errorf("%s %q: %w", action, id, err)
	}
	return updated, nil
}

func (e *Engine) Connectors() []model.Connector {
	return e.store.Connectors()
}
