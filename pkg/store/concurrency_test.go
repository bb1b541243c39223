package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberarian/rekama-sys/pkg/durability"
	"github.com/cyberarian/rekama-sys/pkg/model"
)

func TestConcurrentMutationsAreAllSnapshotted(t *testing.T) {
	backend := durability.NewMemory()
	s := openEmpty(t, backend)

	const writers = 32
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Mutate(context.Background(), func(tx *Tx) error {
				rec, err := tx.CreateRecord(newRecord(fmt.Sprintf("rec_%02d", i)))
				if err != nil {
					return err
				}
				_, err = tx.AppendLog(model.AuditLog{Action: model.ActionCreateRecord, Resource: rec.Title})
				return err
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	reopened, err := Open(context.Background(), backend)
	require.NoError(t, err)
	assert.Len(t, reopened.Records(), writers)
	assert.Len(t, reopened.Logs(), writers)
}

func TestConcurrentUpdatesNeverLoseVersions(t *testing.T) {
	s := openEmpty(t, durability.NewMemory())
	mustCreate(t, s, newRecord("rec_1"))

	const updates = 50
	var wg sync.WaitGroup
	for i := 0; i < updates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			custodian := "worker"
			_, err := update(s, "rec_1", model.RecordPatch{Custodian: &custodian})
			assert.NoError(t, err)
		}()
	}

	// Readers only ever see whole records.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			rec, err := s.Record("rec_1")
			if assert.NoError(t, err) {
				assert.GreaterOrEqual(t, rec.Version, 1)
				assert.LessOrEqual(t, rec.Version, 1+updates)
			}
		}
	}()

	wg.Wait()
	<-done
	rec, err := s.Record("rec_1")
	require.NoError(t, err)
	assert.Equal(t, 1+updates, rec.Version)
}
