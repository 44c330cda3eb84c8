// Package watcher re-runs extraction when input documents change.
package watcher

import "context"

// FileWatcher delivers debounced batches of changed input documents.
type FileWatcher interface {
	// Start watches until ctx ends or Stop is called. onChange receives each
	// batch of changed paths, sorted.
	Start(ctx context.Context, onChange func(files []string)) error

	// Stop ends watching. It is safe to call more than once.
	Stop() error

	// Pause holds batches back while changes keep accumulating.
	Pause()

	// Resume delivers the changes held back by Pause.
	Resume()
}

// Reloadable is a component rebuilt from the input documents.
type Reloadable interface {
	// Reload rebuilds the component. changed lists the files that triggered
	// the reload and is empty for the initial build.
	Reload(ctx context.Context, changed []string) error
}

// ReloadFunc adapts a function to Reloadable.
type ReloadFunc func(ctx context.Context, changed []string) error

func (f ReloadFunc) Reload(ctx context.Context, changed []string) error {
	return f(ctx, changed)
}
