package connector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/model"
)

// maxConcurrentSyncs bounds the connectors synced in parallel by SyncAll.
const maxConcurrentSyncs = 4

// Scheduler periodically syncs every connector that is not paused, acting
// as a fixed identity.
type Scheduler struct {
	engine   *Engine
	caller   *identity.Identity
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(engine *Engine, caller *identity.Identity, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		engine:   engine,
		caller:   caller,
		interval: interval,
		logger:   logger.With("component", "connector_scheduler"),
	}
}

// Start launches the background loop. A zero interval disables it.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("scheduled connector sync disabled")
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		s.logger.Info("scheduled connector sync started", "interval", s.interval.String())
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduled connector sync stopped")
				return
			case <-ticker.C:
				results, err := s.SyncAll(ctx)
				if err != nil {
					s.logger.Error("scheduled connector sync failed", "error", err)
					continue
				}
				s.logger.Debug("scheduled connector sync finished", "synced", len(results))
			}
		}
	}()
}

// Stop ends the background loop and waits for it.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}

// SyncAll syncs every connector that is not paused. Individual failures are
// joined into the returned error; results hold the successful syncs.
func (s *Scheduler) SyncAll(ctx context.Context) ([]Result, error) {
	var targets []string
	for _, c := range s.engine.Connectors() {
		if c.Status != model.ConnectorPaused {
			targets = append(targets, c.ID)
		}
	}

	sem := make(chan struct{}, maxConcurrentSyncs)
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []Result
		errs    []error
	)
	for _, id := range targets {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := s.engine.Sync(ctx, s.caller, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrSyncInProgress):
			case err != nil:
				errs = append(errs, fmt.Errorf("connector %s: %w", id, err))
			case !res.Skipped:
				results = append(results, res)
			}
		}(id)
	}
	wg.Wait()
	return results, errors.Join(errs...)
}
