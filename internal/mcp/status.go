package mcp

import (
	"sync"
	"time"
)

// Model sources reported by Status.
const (
	SourceExtraction = "extraction"
	SourceSnapshot   = "snapshot"
)

// Status describes the model in service and the reloads that produced it.
type Status struct {
	Source        string        `json:"source"`
	LoadedAt      time.Time     `json:"loaded_at"`
	Types         int           `json:"types"`
	Warnings      int           `json:"warnings"`
	Reloads       int64         `json:"reloads"`
	FailedReloads int64         `json:"failed_reloads"`
	LastDuration  time.Duration `json:"last_duration_ns"`
	LastChanged   []string      `json:"last_changed,omitempty"`
	LastError     string        `json:"last_error,omitempty"`
}

// reloadTracker accumulates Status across reloads.
type reloadTracker struct {
	mu     sync.Mutex
	status Status
}

func newReloadTracker(source string) *reloadTracker {
	return &reloadTracker{status: Status{Source: source}}
}

// succeeded records a model swap.
func (t *reloadTracker) succeeded(d time.Duration, types, warnings int, changed []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.Reloads++
	t.status.LoadedAt = time.Now()
	t.status.LastDuration = d
	t.status.LastChanged = append([]string(nil), changed...)
	t.status.LastError = ""
	t.status.Types = types
	t.status.Warnings = warnings
}

// failed records a reload that left the previous model in service, so the
// type and warning counts stay as they were.
func (t *reloadTracker) failed(d time.Duration, err error, changed []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.Reloads++
	t.status.FailedReloads++
	t.status.LastDuration = d
	t.status.LastChanged = append([]string(nil), changed...)
	t.status.LastError = err.Error()
}

func (t *reloadTracker) snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.status
	s.LastChanged = append([]string(nil), s.LastChanged...)
	return s
}
