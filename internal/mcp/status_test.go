package mcp

// Test Plan for reloadTracker:
// - A fresh tracker reports only its source
// - A success records counts, changed files and clears the last error
// - A failure records the error and keeps the counts of the model in service
// - Snapshots do not alias the tracker's changed-file list
// - Concurrent recording and reading is safe

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReloadTracker_InitialState(t *testing.T) {
	t.Parallel()

	status := newReloadTracker(SourceExtraction).snapshot()
	assert.Equal(t, Status{Source: SourceExtraction}, status)
}

func TestReloadTracker_SuccessThenFailure(t *testing.T) {
	t.Parallel()

	tr := newReloadTracker(SourceExtraction)
	tr.succeeded(150*time.Millisecond, 420, 3, nil)

	status := tr.snapshot()
	assert.Equal(t, int64(1), status.Reloads)
	assert.Equal(t, 150*time.Millisecond, status.LastDuration)
	assert.Equal(t, 420, status.Types)
	assert.Equal(t, 3, status.Warnings)
	assert.False(t, status.LoadedAt.IsZero())
	loadedAt := status.LoadedAt

	tr.failed(20*time.Millisecond, errors.New("failed to parse tps.txt"), []string{"tps.txt"})
	status = tr.snapshot()
	assert.Equal(t, int64(2), status.Reloads)
	assert.Equal(t, int64(1), status.FailedReloads)
	assert.Equal(t, "failed to parse tps.txt", status.LastError)
	assert.Equal(t, []string{"tps.txt"}, status.LastChanged)
	assert.Equal(t, 420, status.Types, "previous model stays in service")
	assert.Equal(t, loadedAt, status.LoadedAt)

	tr.succeeded(10*time.Millisecond, 421, 0, []string{"tps.txt"})
	status = tr.snapshot()
	assert.Empty(t, status.LastError)
	assert.Equal(t, 421, status.Types)
	assert.Zero(t, status.Warnings)
}

func TestReloadTracker_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	tr := newReloadTracker(SourceExtraction)
	tr.succeeded(time.Millisecond, 1, 0, []string{"a.txt"})

	status := tr.snapshot()
	status.LastChanged[0] = "mutated"
	assert.Equal(t, []string{"a.txt"}, tr.snapshot().LastChanged)
}

func TestReloadTracker_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	tr := newReloadTracker(SourceExtraction)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			tr.succeeded(time.Millisecond, n, 0, []string{"a.txt"})
		}(i)
		go func() {
			defer wg.Done()
			_ = tr.snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), tr.snapshot().Reloads)
}
