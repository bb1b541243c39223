package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cyberarian/rekama-sys/pkg/durability"
	"github.com/cyberarian/rekama-sys/pkg/model"
)

// MaxLogEntries caps Logs. Export and AllLogs are not capped.
const MaxLogEntries = 1000

// ResetConfirmation must be passed verbatim to Reset.
const ResetConfirmation = "FACTORY RESET"

// InterruptedSyncMessage is the error recorded on a connector whose sync
// was still running when the snapshot was last written.
const InterruptedSyncMessage = "sync interrupted before completion"

// Sink receives audit entries once the mutation that appended them is
// durable. Publish is called with the store's write lock held, in commit
// order, and must not call back into Mutate.
type Sink interface {
	Publish(ctx context.Context, entries []model.AuditLog)
}

// Observer is told about every snapshot attempt.
type Observer interface {
	SnapshotSaved(size int, elapsed time.Duration)
	SnapshotFailed(err error)
}

// Status describes the health of the durability path.
type Status struct {
	Degraded    bool      `json:"degraded"`
	LastError   string    `json:"lastError,omitempty"`
	LastSavedAt time.Time `json:"lastSavedAt,omitempty"`
	Saves       int       `json:"saves"`
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the uuid v7 generator used for audit entries.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithSink adds a Sink for committed audit entries.
func WithSink(sink Sink) Option {
	return func(s *Store) { s.sinks = append(s.sinks, sink) }
}

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// WithoutSeed bootstraps an empty schema instead of the demo data set.
func WithoutSeed() Option {
	return func(s *Store) { s.seed = false }
}

// Store is the record store. It is safe for concurrent use.
type Store struct {
	backend  durability.Backend
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
	sinks    []Sink
	observer Observer
	seed     bool

	// mu serializes mutations, saves and resets.
	mu       sync.Mutex
	current  atomic.Pointer[image]
	lastTick time.Time
	status   Status
	degraded atomic.Bool
}

// Open loads the snapshot held by backend. When there is none a fresh schema
// is bootstrapped, seeded and saved.
func Open(ctx context.Context, backend durability.Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		now:     time.Now,
		newID:   NewID,
		logger:  slog.Default(),
		seed:    true,
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := backend.Load(ctx)
	switch {
	case errors.Is(err, durability.ErrNoSnapshot):
		s.mu.Lock()
		defer s.mu.Unlock()
		img := s.bootstrap()
		if err := s.save(ctx, img); err != nil {
			return nil, err
		}
		s.current.Store(img)
		s.logger.Info("bootstrapped record store", "seeded", s.seed)
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTick = img.latest()
	if interrupted := img.interruptSyncs(); len(interrupted) > 0 {
		if err := s.save(ctx, img); err != nil {
			return nil, err
		}
		s.logger.Warn("recovered interrupted connector syncs", "connectors", interrupted)
	}
	s.current.Store(img)
	s.logger.Info("loaded record store",
		"records", len(img.records),
		"logs", len(img.logs),
	)
	return s, nil
}

func (s *Store) bootstrap() *image {
	if !s.seed {
		return newImage()
	}
	return seedImage(s.tick())
}

// tick returns a strictly increasing UTC timestamp. Callers hold mu.
func (s *Store) tick() time.Time {
	t := s.now().UTC()
	if !t.After(s.lastTick) {
		t = s.lastTick.Add(time.Microsecond)
	}
	s.lastTick = t
	return t
}

// save writes img durably and updates the status. Callers hold mu.
func (s *Store) save(ctx context.Context, img *image) error {
	data, err := img.encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	start := time.Now()
	if err := s.backend.Save(ctx, data); err != nil {
		s.status.Degraded = true
		s.status.LastError = err.Error()
		s.degraded.Store(true)
		if s.observer != nil {
			s.observer.SnapshotFailed(err)
		}
		s.logger.Error("snapshot save failed", "error", err)
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if s.status.Degraded {
		s.logger.Info("snapshot save recovered")
	}
	s.status.Degraded = false
	s.status.LastError = ""
	s.status.LastSavedAt = s.now().UTC()
	s.status.Saves++
	s.degraded.Store(false)
	if s.observer != nil {
		s.observer.SnapshotSaved(len(data), time.Since(start))
	}
	return nil
}

// Mutate runs fn against a private copy of the schema. If fn succeeds and
// the copy is saved, the copy becomes the committed image. Any error leaves
// the committed image untouched.
func (s *Store) Mutate(ctx context.Context, fn func(*Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &Tx{
		img:   s.current.Load().clone(),
		now:   s.tick(),
		newID: s.newID,
	}
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty && !s.degraded.Load() {
		return nil
	}
	if err := s.save(ctx, tx.img); err != nil {
		return err
	}
	s.current.Store(tx.img)
	s.publish(ctx, tx.appended)
	return nil
}

func (s *Store) publish(ctx context.Context, entries []model.AuditLog) {
	if len(entries) == 0 {
		return
	}
	for _, sink := range s.sinks {
		sink.Publish(ctx, entries)
	}
}

// Flush rewrites the committed image. It clears the degraded status when it
// succeeds.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, s.current.Load())
}

// Status reports the durability health.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Degraded reports whether the last save failed. It never blocks.
func (s *Store) Degraded() bool {
	return s.degraded.Load()
}

// Reset irreversibly discards the durable image and starts over from a
// freshly seeded schema. confirm must equal ResetConfirmation.
func (s *Store) Reset(ctx context.Context, confirm string) error {
	if confirm != ResetConfirmation {
		return ErrResetNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Reset(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	img := s.bootstrap()
	// The old image is gone either way; a failed save leaves the store
	// degraded and the next mutation retries.
	err := s.save(ctx, img)
	s.current.Store(img)
	s.logger.Warn("record store reset")
	return err
}

// NewID returns a fresh time-ordered identifier.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewChecksum returns a fresh random 128-bit fingerprint in hex.
func NewChecksum() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("read random checksum: %v", err))
	}
	return hex.EncodeToString(b)
}
