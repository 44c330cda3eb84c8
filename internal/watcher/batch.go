package watcher

import (
	"slices"
	"sync"
	"time"
)

// pendingBatch collects changed paths and signals ready once no new path has
// arrived for the debounce period.
type pendingBatch struct {
	delay time.Duration
	ready chan struct{}

	mu    sync.Mutex
	paths map[string]struct{}
	timer *time.Timer
}

func newPendingBatch(delay time.Duration) *pendingBatch {
	return &pendingBatch{
		delay: delay,
		ready: make(chan struct{}, 1),
		paths: make(map[string]struct{}),
	}
}

// add records path and restarts the quiet period.
func (b *pendingBatch) add(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.paths[path] = struct{}{}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, func() {
		select {
		case b.ready <- struct{}{}:
		default:
		}
	})
}

// take returns the recorded paths sorted and clears them.
func (b *pendingBatch) take() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(b.paths))
	for p := range b.paths {
		out = append(out, p)
	}
	clear(b.paths)
	slices.Sort(out)
	return out
}

func (b *pendingBatch) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
