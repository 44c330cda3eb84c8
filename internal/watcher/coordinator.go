package watcher

import (
	"context"
	"sync"
	"time"
)

// Coordinator routes file watcher batches to a Reloadable. Reloads never
// overlap; a failed reload keeps the previous state and is only logged.
type Coordinator struct {
	files  FileWatcher
	target Reloadable
	mu     sync.Mutex
}

// NewCoordinator creates a new watch coordinator.
func NewCoordinator(files FileWatcher, target Reloadable) *Coordinator {
	return &Coordinator{files: files, target: target}
}

// Run builds the target once, then reloads it on every change batch until
// ctx is cancelled. Changes made during the initial build are held back and
// delivered once it finishes. An initial build failure is returned.
func (c *Coordinator) Run(ctx context.Context) error {
	c.files.Pause()
	if err := c.files.Start(ctx, func(files []string) { c.handleFileChange(ctx, files) }); err != nil {
		return err
	}
	defer c.cleanup()

	if err := c.reload(ctx, nil); err != nil {
		return err
	}
	c.files.Resume()

	<-ctx.Done()
	return nil
}

func (c *Coordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		log.Warningf("file watcher stop failed: %v", err)
	}
}

// handleFileChange processes file change events from the file watcher.
func (c *Coordinator) handleFileChange(ctx context.Context, files []string) {
	if len(files) == 0 || ctx.Err() != nil {
		return
	}
	log.Infof("processing %d changed file(s)", len(files))
	if err := c.reload(ctx, files); err != nil {
		log.Errorf("reload failed: %v (keeping previous model)", err)
	}
}

func (c *Coordinator) reload(ctx context.Context, files []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	if err := c.target.Reload(ctx, files); err != nil {
		return err
	}
	log.Debugf("reloaded in %s", time.Since(start))
	return nil
}
