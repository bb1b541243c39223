package connector

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/durability"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

var (
	manager = &identity.Identity{UserID: "usr_cm", Email: "carol@rekama.sys", Role: authz.RoleComplianceManager}
	officer = &identity.Identity{UserID: store.SeedOfficerID, Email: "sarah@rekama.sys", Role: authz.RoleRecordsOfficer}
)

type stubFeed struct {
	mu    sync.Mutex
	err   error
	calls int
	gate  chan struct{}
}

func (f *stubFeed) Discover(ctx context.Context, c model.Connector, existing int) (Discovery, error) {
	f.mu.Lock()
	f.calls++
	gate, err := f.gate, f.err
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return Discovery{}, err
	}
	return NewSimulatedFeed(rand.NewPCG(1, 2)).Discover(ctx, c, existing)
}

func (f *stubFeed) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// cancellingFeed cancels the sync's context while discovery runs, as a
// client disconnect or shutdown would.
type cancellingFeed struct {
	cancel context.CancelFunc
}

func (f *cancellingFeed) Discover(ctx context.Context, _ model.Connector, _ int) (Discovery, error) {
	f.cancel()
	<-ctx.Done()
	return Discovery{}, ctx.Err()
}

type recordingObserver struct {
	mu   sync.Mutex
	errs []error
}

func (o *recordingObserver) SyncFinished(_ model.Connector, _ int, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs = append(o.errs, err)
}

func newEngine(t *testing.T, opts ...Option) (*Engine, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), durability.NewMemory(), store.WithoutSeed())
	require.NoError(t, err)
	return NewEngine(st, opts...), st
}

func addDrive(t *testing.T, e *Engine) model.Connector {
	t.Helper()
	c, err := e.Add(context.Background(), manager, model.Connector{
		Name:      "Legal Drive",
		Type:      model.ConnectorGoogleDrive,
		TargetURL: "https://drive.google.com/drive/folders/legal",
	})
	require.NoError(t, err)
	return c
}

func countActions(logs []model.AuditLog, action model.Action) int {
	n := 0
	for _, l := range logs {
		if l.Action == action {
			n++
		}
	}
	return n
}

func TestSyncScenario(t *testing.T) {
	e, st := newEngine(t, WithDiscoverer(NewSimulatedFeed(rand.NewPCG(7, 7))))
	ctx := context.Background()

	c := addDrive(t, e)
	assert.Equal(t, 0, c.ItemsIndexed)

	prev := c
	wantCounts := []int{2, 4, 5}
	for i, want := range wantCounts {
		res, err := e.Sync(ctx, manager, c.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ConnectorActive, res.Connector.Status)
		assert.True(t, res.Connector.LastSync.After(prev.LastSync), "sync %d", i+1)
		delta := res.Connector.ItemsIndexed - prev.ItemsIndexed
		assert.GreaterOrEqual(t, delta, 0)
		assert.LessOrEqual(t, delta, MaxDiscoveredPerSync)
		assert.Equal(t, want, st.CountBySource(c.Name))
		prev = res.Connector
	}

	res, err := e.Sync(ctx, manager, c.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Discovered)
	assert.Equal(t, DiscoveryThreshold, st.CountBySource(c.Name))
	assert.True(t, res.Connector.LastSync.After(prev.LastSync))
	assert.GreaterOrEqual(t, res.Connector.ItemsIndexed, prev.ItemsIndexed)
	assert.Equal(t, 4, countActions(st.AllLogs(), model.ActionSyncConnector))

	for _, r := range st.Records() {
		assert.Equal(t, "Google Drive Sync", r.Custodian)
		assert.Equal(t, model.ClassificationInternal, r.Classification)
		assert.Equal(t, 40, r.RiskScore)
		assert.Len(t, r.Checksum, 32)
	}
}

func TestSyncPausedIsNoop(t *testing.T) {
	e, st := newEngine(t)
	ctx := context.Background()
	c := addDrive(t, e)

	paused, err := e.Pause(ctx, manager, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ConnectorPaused, paused.Status)
	logs := len(st.AllLogs())

	res, err := e.Sync(ctx, manager, c.ID)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	after, err := st.Connector(c.ID)
	require.NoError(t, err)
	assert.Equal(t, paused, after)
	assert.Len(t, st.AllLogs(), logs)
	assert.Zero(t, st.CountBySource(c.Name))

	_, err = e.Pause(ctx, manager, c.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	resumed, err := e.Resume(ctx, manager, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ConnectorActive, resumed.Status)
	_, err = e.Resume(ctx, manager, c.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, model.ActionResumeConnector, st.Logs()[0].Action)
	assert.Equal(t, model.ActionPauseConnector, st.Logs()[1].Action)
}

func TestSyncFailureAndRetry(t *testing.T) {
	feed := &stubFeed{}
	obs := &recordingObserver{}
	e, st := newEngine(t, WithDiscoverer(feed), WithObserver(obs))
	ctx := context.Background()
	c := addDrive(t, e)

	feed.setErr(errors.New("quota exceeded"))
	res, err := e.Sync(ctx, manager, c.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, model.ConnectorError, res.Connector.Status)
	assert.Equal(t, "quota exceeded", res.Connector.LastErrorMessage)
	assert.Equal(t, c.LastSync, res.Connector.LastSync)

	entry := st.Logs()[0]
	assert.Equal(t, model.ActionSyncConnector, entry.Action)
	assert.Equal(t, model.SeverityHigh, entry.Severity)
	assert.Contains(t, string(entry.Metadata), "quota exceeded")

	feed.setErr(nil)
	res, err = e.Sync(ctx, manager, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ConnectorActive, res.Connector.Status)
	assert.Empty(t, res.Connector.LastErrorMessage)
	assert.Len(t, res.Discovered, 2)

	require.Len(t, obs.errs, 2)
	assert.Error(t, obs.errs[0])
	assert.NoError(t, obs.errs[1])
}

func TestSyncCancelledDuringDiscovery(t *testing.T) {
	feed := &cancellingFeed{}
	e, st := newEngine(t, WithDiscoverer(feed))
	c := addDrive(t, e)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	feed.cancel = cancel

	res, err := e.Sync(ctx, manager, c.ID)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.ConnectorError, res.Connector.Status)

	stored, err := st.Connector(c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ConnectorError, stored.Status)
	assert.Equal(t, context.Canceled.Error(), stored.LastErrorMessage)
	assert.Equal(t, model.ActionSyncConnector, st.Logs()[0].Action)

	// A later sync recovers from Error.
	e.discoverer = NewSimulatedFeed(rand.NewPCG(1, 2))
	res, err = e.Sync(context.Background(), manager, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ConnectorActive, res.Connector.Status)
}

func TestSimulatedFeedRejectsBadTarget(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	c, err := e.Add(ctx, manager, model.Connector{Name: "Bucket", Type: model.ConnectorS3, TargetURL: "s3-bucket-without-scheme"})
	require.NoError(t, err)

	res, err := e.Sync(ctx, manager, c.ID)
	require.Error(t, err)
	assert.Equal(t, model.ConnectorError, res.Connector.Status)
}

func TestSyncInProgress(t *testing.T) {
	feed := &stubFeed{gate: make(chan struct{})}
	e, st := newEngine(t, WithDiscoverer(feed))
	ctx := context.Background()
	c := addDrive(t, e)

	done := make(chan error, 1)
	go func() {
		_, err := e.Sync(ctx, manager, c.ID)
		done <- err
	}()

	require.Eventually(t, func() bool {
		cur, err := st.Connector(c.ID)
		return err == nil && cur.Status == model.ConnectorSyncing
	}, time.Second, time.Millisecond)

	_, err := e.Sync(ctx, manager, c.ID)
	require.ErrorIs(t, err, ErrSyncInProgress)

	close(feed.gate)
	require.NoError(t, <-done)
}

func TestConnectorCommands(t *testing.T) {
	e, st := newEngine(t)
	ctx := context.Background()

	_, err := e.Add(ctx, officer, model.Connector{Name: "x", Type: model.ConnectorSlack})
	require.ErrorIs(t, err, authz.ErrUnauthorized)
	_, err = e.Sync(ctx, officer, "conn")
	require.ErrorIs(t, err, authz.ErrUnauthorized)
	assert.Empty(t, st.AllLogs())

	c := addDrive(t, e)
	assert.Equal(t, model.ActionAddConnector, st.Logs()[0].Action)
	assert.Equal(t, model.SeverityHigh, st.Logs()[0].Severity)

	_, err = e.Add(ctx, manager, model.Connector{Name: c.Name, Type: model.ConnectorOneDrive})
	require.ErrorIs(t, err, store.ErrDuplicateKey)

	name := "Litigation Drive"
	updated, err := e.Update(ctx, manager, c.ID, model.ConnectorPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, model.ActionUpdateConnector, st.Logs()[0].Action)

	require.NoError(t, e.Delete(ctx, manager, c.ID))
	assert.Equal(t, model.ActionDeleteConnector, st.Logs()[0].Action)
	require.ErrorIs(t, e.Delete(ctx, manager, c.ID), store.ErrNotFound)
	_, err = e.Sync(ctx, manager, c.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSchedulerSyncAll(t *testing.T) {
	e, st := newEngine(t)
	ctx := context.Background()

	a := addDrive(t, e)
	b, err := e.Add(ctx, manager, model.Connector{Name: "Mailboxes", Type: model.ConnectorExchange})
	require.NoError(t, err)
	_, err = e.Pause(ctx, manager, b.ID)
	require.NoError(t, err)

	s := NewScheduler(e, manager, 0, nil)
	results, err := s.SyncAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, a.ID, results[0].Connector.ID)
	assert.Equal(t, 2, st.CountBySource(a.Name))
	assert.Zero(t, st.CountBySource(b.Name))

	// A zero interval never starts the loop.
	s.Start(ctx)
	s.Stop()
}
