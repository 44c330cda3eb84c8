package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Coordinator:
// - Run builds once with no changed files, then resumes the watcher
// - File batches reach Reload with the changed paths
// - A failed reload is logged and later batches still run
// - An initial build failure is returned and the watcher stopped
// - A watcher that fails to start is returned as an error
// - Cancelling the context stops the watcher

// mockFileWatcher implements FileWatcher for testing.
type mockFileWatcher struct {
	mu          sync.Mutex
	startErr    error
	callback    func(files []string)
	calls       []string
	stopCalled  bool
	startedOnce chan struct{}
}

func newMockFileWatcher() *mockFileWatcher {
	return &mockFileWatcher{startedOnce: make(chan struct{})}
}

func (m *mockFileWatcher) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockFileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	m.record("start")
	if m.startErr != nil {
		return m.startErr
	}
	m.mu.Lock()
	m.callback = callback
	m.mu.Unlock()
	close(m.startedOnce)
	return nil
}

func (m *mockFileWatcher) Stop() error {
	m.record("stop")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalled = true
	return nil
}

func (m *mockFileWatcher) Pause()  { m.record("pause") }
func (m *mockFileWatcher) Resume() { m.record("resume") }

func (m *mockFileWatcher) fire(files []string) {
	m.mu.Lock()
	cb := m.callback
	m.mu.Unlock()
	cb(files)
}

func (m *mockFileWatcher) history() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type recordingTarget struct {
	mu      sync.Mutex
	changed [][]string
	errs    []error
}

func (r *recordingTarget) Reload(ctx context.Context, changed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, changed)
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return err
	}
	return nil
}

func (r *recordingTarget) reloads() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.changed...)
}

func TestCoordinator_Run(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	target := &recordingTarget{errs: []error{nil, errors.New("parse failed")}}
	c := NewCoordinator(files, target)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	<-files.startedOnce
	require.Eventually(t, func() bool { return len(files.history()) >= 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"pause", "start", "resume"}, files.history())

	files.fire([]string{"a.txt"})
	files.fire([]string{"b.txt", "c.txt"})

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, [][]string{nil, {"a.txt"}, {"b.txt", "c.txt"}}, target.reloads())
	assert.Equal(t, "stop", files.history()[len(files.history())-1])
}

func TestCoordinator_InitialFailure(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	boom := errors.New("boom")
	c := NewCoordinator(files, &recordingTarget{errs: []error{boom}})

	err := c.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"pause", "start", "stop"}, files.history())
}

func TestCoordinator_StartFailure(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	files.startErr = errors.New("no watcher")
	target := &recordingTarget{}

	err := NewCoordinator(files, target).Run(context.Background())
	assert.EqualError(t, err, "no watcher")
	assert.Empty(t, target.reloads())
}

func TestReloadFunc(t *testing.T) {
	t.Parallel()

	var got []string
	var r Reloadable = ReloadFunc(func(ctx context.Context, changed []string) error {
		got = changed
		return nil
	})
	require.NoError(t, r.Reload(context.Background(), []string{"x.txt"}))
	assert.Equal(t, []string{"x.txt"}, got)
}
