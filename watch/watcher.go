package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/watchkit/fswatch/internal/fsmeta"
	"github.com/watchkit/fswatch/internal/lifecycle"
)

// Watcher observes one directory's immediate children and emits add/remove/
// change events for them. Construct with New; always call Close when done.
type Watcher struct {
	path string
	opts Options

	lc *lifecycle.Lifecycle

	mu       sync.Mutex
	children map[string]fsmeta.Meta

	events chan Event
	errs   chan error

	closeOnce sync.Once
	closeCh   chan struct{}
	doneCh    chan struct{}

	debounce *debounceQueue
}

// New constructs a Watcher for path and begins initialization asynchronously
// (resolving the absolute path, performing the initial scan, and starting
// the selected engine). Callers must read from Ready before trusting
// Children, and must call Close exactly once when finished — though Close is
// itself idempotent if called more than once.
//
// Cancelling ctx is equivalent to calling Close.
func New(ctx context.Context, path string, opts Options) *Watcher {
	w := &Watcher{
		path:     path,
		opts:     opts,
		lc:       lifecycle.New(),
		children: make(map[string]fsmeta.Meta),
		events:   make(chan Event, 32),
		errs:     make(chan error, 8),
		closeCh:  make(chan struct{}),
		doneCh:   make(chan struct{}),
		debounce: newDebounceQueue(),
	}
	go w.run(ctx)
	return w
}

// Path returns the resolved absolute path being watched. It is only
// meaningful once Ready has closed.
func (w *Watcher) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// Ready is closed once initialization has finished, successfully or not.
func (w *Watcher) Ready() <-chan struct{} {
	return w.lc.Ready()
}

// Err reports the error initialization failed with, or nil on success.
// Meaningful only after Ready has closed.
func (w *Watcher) Err() error {
	return w.lc.Err()
}

// Events delivers add/remove/change notifications. Closed once Close has
// fully completed; no event is ever sent after that point.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors delivers runtime observation errors; the watcher remains Alive
// after one. Closed alongside Events.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Children returns a snapshot copy of the last-known metadata for every
// currently tracked child.
func (w *Watcher) Children() map[string]fsmeta.Meta {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]fsmeta.Meta, len(w.children))
	for k, v := range w.children {
		out[k] = v
	}
	return out
}

// Close stops observation, drops all pending work, and transitions to
// Disposed. Idempotent: safe to call more than once, and safe to call while
// initialization is still in progress. Returns once the underlying engine
// goroutine has fully exited.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.closeCh)
	})
	<-w.doneCh
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer func() {
		w.lc.MarkDisposed(w.lc.Err())
		close(w.events)
		close(w.errs)
		close(w.doneCh)
	}()

	absPath, err := filepath.Abs(w.path)
	if err != nil {
		w.lc.MarkDisposed(err)
		return
	}
	w.mu.Lock()
	w.path = absPath
	w.mu.Unlock()

	info, statErr := os.Stat(absPath)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			w.lc.MarkDisposed(notExistError(absPath, statErr))
		} else {
			w.lc.MarkDisposed(statErr)
		}
		return
	}
	if !info.IsDir() {
		w.lc.MarkDisposed(notDirectoryError(absPath))
		return
	}

	var fsWatcher *fsnotify.Watcher
	if w.opts.Engine != Polling {
		var err error
		fsWatcher, err = newFSNotifyWatcher(w.path)
		if err != nil {
			w.lc.MarkDisposed(err)
			return
		}
	}

	if err := w.initialScan(); err != nil {
		if fsWatcher != nil {
			fsWatcher.Close()
		}
		w.lc.MarkDisposed(err)
		return
	}

	if w.closingRequested(ctx) {
		if fsWatcher != nil {
			fsWatcher.Close()
		}
		w.lc.MarkDisposed(nil)
		return
	}

	w.lc.MarkAlive()

	switch w.opts.Engine {
	case Polling:
		w.runPolling(ctx)
	default:
		w.runNativeLoop(ctx, fsWatcher)
	}
}

func (w *Watcher) closingRequested(ctx context.Context) bool {
	select {
	case <-w.closeCh:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (w *Watcher) initialScan() error {
	entries, err := os.ReadDir(w.path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, e := range entries {
		childPath := filepath.Join(w.path, e.Name())
		info, err := os.Lstat(childPath)
		if err != nil {
			if !os.IsNotExist(err) {
				w.opts.logger().Warn("fswatch: stat failed during initial scan", "path", childPath, "error", err)
			}
			continue
		}
		w.children[childPath] = fsmeta.FromFileInfo(info)
	}
	return nil
}

// emitEvent delivers ev, or silently drops it if Close has completed first.
func (w *Watcher) emitEvent(ctx context.Context, ev Event) {
	select {
	case w.events <- ev:
	case <-w.closeCh:
	case <-ctx.Done():
	}
}

// emitError delivers err on the error channel, or silently drops it if
// Close has completed first.
func (w *Watcher) emitError(ctx context.Context, err error) {
	select {
	case w.errs <- err:
	case <-w.closeCh:
	case <-ctx.Done():
	}
}
