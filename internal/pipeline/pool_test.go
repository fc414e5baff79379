package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stardeck/logbook/internal/infrastructure/logging"
)

func TestPoolRunsScheduledEntries(t *testing.T) {
	f := newFixture(uploadedEntry())

	pool := NewPool(f.orch, logging.NewNopLogger(), 2, 8)
	defer pool.Close()

	pool.Schedule("e1")

	require.Eventually(t, func() bool {
		entry, err := f.repo.GetByID(t.Context(), "e1")
		return err == nil && entry.ProcessingStatus.Terminal()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPoolScheduleNeverBlocks(t *testing.T) {
	f := newFixture(uploadedEntry())

	pool := NewPool(f.orch, logging.NewNopLogger(), 1, 1)
	defer pool.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			pool.Schedule("e1")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Schedule blocked on a full queue")
	}
}

func TestPoolScheduleAfterClose(t *testing.T) {
	f := newFixture(uploadedEntry())

	pool := NewPool(f.orch, logging.NewNopLogger(), 1, 1)
	pool.Close()

	assert.NotPanics(t, func() {
		pool.Schedule("e1")
	})
}
