package watch

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// newFSNotifyWatcher opens the OS notification handle and starts watching
// path. Called during initialization (before the watcher reaches Alive) so
// that a failure here rejects Ready, rather than surfacing as a later
// runtime error.
func newFSNotifyWatcher(path string) (*fsnotify.Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(path); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return fsWatcher, nil
}

// runNativeLoop drives the fsnotify-backed engine: a single select loop
// reads fsnotify notifications, reconciles each into the debounce queue, and
// flushes the queue on a single timer that is reset on every enqueue. The
// timer fires into this same select loop rather than a separate goroutine:
// every state mutation happens on this one goroutine, so nothing can race
// with a flush and no in-flight guard is needed.
func (w *Watcher) runNativeLoop(ctx context.Context, fsWatcher *fsnotify.Watcher) {
	defer fsWatcher.Close()

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	armed := false

	for {
		select {
		case ev, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			w.handleNativeEvent(ev)
			if !w.debounce.Empty() {
				armed = resetTimer(timer, armed, w.opts.debounceInterval())
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.emitError(ctx, err)

		case <-timer.C:
			armed = false
			for _, flushed := range w.debounce.Flush() {
				w.emitEvent(ctx, flushed)
			}

		case <-w.closeCh:
			w.debounce.Clear()
			return

		case <-ctx.Done():
			w.debounce.Clear()
			return
		}
	}
}

// handleNativeEvent reconciles a single fsnotify notification. fsnotify
// already resolves the changed path in full (ev.Name) on every backend Go
// supports, so there is no separate "filename hint possibly absent" step to
// handle here.
func (w *Watcher) handleNativeEvent(ev fsnotify.Event) {
	if ev.Name == w.path {
		// A rename/remove of the watched directory itself: nothing is
		// enqueued. Its children surface as removed only through their own
		// notifications; no rescan or re-add of the directory is attempted.
		return
	}

	typ, meta, hasEvent := w.reconcileChildNative(ev.Name)
	if !hasEvent {
		return
	}
	w.debounce.Enqueue(ev.Name, typ, meta)
}

func resetTimer(t *time.Timer, armed bool, d time.Duration) bool {
	if armed && !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
	return true
}
