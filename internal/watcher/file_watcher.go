package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("specmodel.watcher")

// DefaultDebounce is the quiet period before a batch of changes fires.
const DefaultDebounce = 500 * time.Millisecond

// relevantOps are the operations that can change an input document.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Option configures a document watcher.
type Option func(*documentWatcher)

// WithDebounce sets the quiet period before a batch fires. Non-positive
// values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *documentWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// documentWatcher watches directory trees for changed input documents.
type documentWatcher struct {
	fs       *fsnotify.Watcher
	match    func(path string) bool
	debounce time.Duration
	batch    *pendingBatch
	paused   atomic.Bool

	onChange func(files []string)
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewFileWatcher watches dirs recursively. match reports whether a changed
// file is an input document; nil matches every file.
func NewFileWatcher(dirs []string, match func(path string) bool, opts ...Option) (FileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if match == nil {
		match = func(string) bool { return true }
	}

	w := &documentWatcher{
		fs:       fsw,
		match:    match,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.batch = newPendingBatch(w.debounce)

	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *documentWatcher) Start(ctx context.Context, onChange func(files []string)) error {
	if onChange == nil {
		return nil
	}
	w.onChange = onChange
	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
	return nil
}

func (w *documentWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel == nil {
			close(w.done)
		} else {
			w.cancel()
			<-w.done
		}
		err = w.fs.Close()
	})
	return err
}

// Pause holds batches back; changes keep accumulating.
func (w *documentWatcher) Pause() {
	w.paused.Store(true)
}

// Resume delivers whatever accumulated while paused.
func (w *documentWatcher) Resume() {
	if w.paused.Swap(false) {
		w.deliver()
	}
}

func (w *documentWatcher) loop(ctx context.Context) {
	defer close(w.done)
	defer w.batch.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case <-w.batch.ready:
			if !w.paused.Load() {
				w.deliver()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Warningf("file watcher error: %v", err)
		}
	}
}

// handle adds new directories to the watch and queues changed documents.
func (w *documentWatcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				log.Warningf("failed to watch new directory %s: %v", ev.Name, err)
			}
			return
		}
	}
	if ev.Op&relevantOps == 0 || !w.match(ev.Name) {
		return
	}
	w.batch.add(ev.Name)
}

func (w *documentWatcher) deliver() {
	if files := w.batch.take(); len(files) > 0 && w.onChange != nil {
		w.onChange(files)
	}
}

// addTree watches root and every directory below it.
func (w *documentWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warningf("error accessing %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			log.Warningf("failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
