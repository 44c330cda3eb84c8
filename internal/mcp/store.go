package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mvp-joe/specmodel/internal/model"
)

// ErrNoModel is returned by queries before the first successful load.
var ErrNoModel = errors.New("no model loaded")

// LoadFunc produces a fresh model and its diagnostics.
type LoadFunc func(ctx context.Context) (*model.Document, []string, error)

// ModelStore holds the model the tools query. Reloads swap the model in one
// step; queries never see a partially built one.
type ModelStore struct {
	load    LoadFunc
	tracker *reloadTracker

	reloadMu sync.Mutex // serializes reloads, not queries

	mu    sync.RWMutex
	doc   *model.Document
	diags []string
}

// NewModelStore returns an empty store that loads through load.
func NewModelStore(load LoadFunc) *ModelStore {
	return &ModelStore{load: load, tracker: newReloadTracker(SourceExtraction)}
}

// NewStaticStore returns a store serving doc. Reload is a no-op.
func NewStaticStore(doc *model.Document, diags []string) *ModelStore {
	s := &ModelStore{tracker: newReloadTracker(SourceSnapshot)}
	s.set(doc, diags)
	s.tracker.succeeded(0, len(doc.Types()), len(diags), nil)
	return s
}

// Reload rebuilds the model. On failure the previous model stays in service.
// Implements watcher.Reloadable.
func (s *ModelStore) Reload(ctx context.Context, changed []string) error {
	if s.load == nil {
		return nil
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	doc, diags, err := s.load(ctx)
	if err != nil {
		s.tracker.failed(time.Since(start), err, changed)
		return fmt.Errorf("failed to load model: %w", err)
	}
	s.set(doc, diags)
	count := len(doc.Types())
	s.tracker.succeeded(time.Since(start), count, len(diags), changed)
	log.Infof("model loaded: %d types, %d diagnostics (%d changed files)", count, len(diags), len(changed))
	return nil
}

func (s *ModelStore) set(doc *model.Document, diags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.diags = diags
}

// Current returns the model in service.
func (s *ModelStore) Current() (*model.Document, []string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, nil, ErrNoModel
	}
	return s.doc, s.diags, nil
}

// Status reports the model in service and its reload history.
func (s *ModelStore) Status() Status {
	return s.tracker.snapshot()
}
