package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cyberarian/rekama-sys/pkg/durability"
	"github.com/cyberarian/rekama-sys/pkg/model"
)

var errDiskFull = errors.New("disk full")

// flakyBackend wraps a Memory backend and fails saves while failing is set.
type flakyBackend struct {
	*durability.Memory
	mu      sync.Mutex
	failing bool
	loadErr error
}

func newFlakyBackend() *flakyBackend {
	return &flakyBackend{Memory: durability.NewMemory()}
}

func (f *flakyBackend) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *flakyBackend) Load(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	err := f.loadErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Memory.Load(ctx)
}

func (f *flakyBackend) Save(ctx context.Context, image []byte) error {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return errDiskFull
	}
	return f.Memory.Save(ctx, image)
}

// stepClock advances one second per call.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type recordingSink struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (r *recordingSink) Publish(_ context.Context, entries []model.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
}

func (r *recordingSink) actions() []model.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Action
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

func openEmpty(t *testing.T, backend durability.Backend, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithoutSeed(), WithClock(newStepClock().Now)}, opts...)
	s, err := Open(context.Background(), backend, opts...)
	require.NoError(t, err)
	return s
}

func newRecord(id string) model.DocumentRecord {
	return model.DocumentRecord{
		ID:             id,
		Title:          id + ".pdf",
		Type:           model.DocumentPDF,
		Classification: model.ClassificationInternal,
		RiskScore:      20,
		Source:         "Upload",
	}
}

func mustCreate(t *testing.T, s *Store, rec model.DocumentRecord) model.DocumentRecord {
	t.Helper()
	var created model.DocumentRecord
	err := s.Mutate(context.Background(), func(tx *Tx) error {
		var err error
		created, err = tx.CreateRecord(rec)
		return err
	})
	require.NoError(t, err)
	return created
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}
