package recursive

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/watchkit/fswatch/internal/fsmeta"
	"github.com/watchkit/fswatch/internal/lifecycle"
	"github.com/watchkit/fswatch/watch"
)

// addDirectory is the recursive driver: construct (or reuse) a directory
// watcher for dir, subscribe to its events, and recursively admit whatever
// it finds already present. Each child's own readiness is awaited rather
// than walking the tree blindly, since this watcher composes
// independently-driven directory watchers instead of one shared fsnotify
// handle.
func (w *Watcher) addDirectory(ctx context.Context, dir string) {
	if w.matcher.ShouldSkip(dir) {
		return
	}

	w.mu.Lock()
	if _, exists := w.watchers[dir]; exists {
		w.mu.Unlock()
		return
	}
	w.watchers[dir] = &childWatcher{dir: dir} // in-flight placeholder
	w.mu.Unlock()

	child := watch.New(ctx, dir, w.cfg.watchOptions())

	select {
	case <-child.Ready():
	case <-w.closeCh:
		child.Close()
		w.mu.Lock()
		delete(w.watchers, dir)
		w.mu.Unlock()
		return
	}

	if w.lc.State() == lifecycle.Disposed {
		child.Close()
		w.mu.Lock()
		delete(w.watchers, dir)
		w.mu.Unlock()
		return
	}

	if err := child.Err(); err != nil {
		child.Close()
		w.mu.Lock()
		delete(w.watchers, dir)
		w.mu.Unlock()
		w.deliverError(ctx, err)
		return
	}

	w.mu.Lock()
	if _, pending := w.watchers[dir]; !pending {
		// removeDirectory dropped the in-flight placeholder while we waited.
		w.mu.Unlock()
		child.Close()
		return
	}
	w.watchers[dir] = &childWatcher{dir: dir, w: child}
	w.mu.Unlock()

	w.cfg.logger().Debug("fswatch: spawned directory watcher", "dir", dir)
	go w.forwardChild(ctx, dir, child)

	for path, meta := range child.Children() {
		if meta.Kind == fsmeta.Directory {
			w.addDirectory(ctx, path)
		} else {
			w.addFile(ctx, path, meta)
		}
	}
}

// forwardChild relays one child directory watcher's events and errors into
// the owning Watcher's inbox until both of the child's channels close.
func (w *Watcher) forwardChild(ctx context.Context, dir string, child *watch.Watcher) {
	events := child.Events()
	errs := child.Errors()
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			select {
			case w.inbox <- inboxMsg{dir: dir, ev: ev}:
			case <-w.closeCh:
				return
			case <-ctx.Done():
				return
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			select {
			case w.inbox <- inboxMsg{dir: dir, err: err, isErr: true}:
			case <-w.closeCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Watcher) handleInboxMessage(ctx context.Context, msg inboxMsg) {
	if msg.isErr {
		w.deliverError(ctx, fmt.Errorf("fswatch: %s: %w", msg.dir, msg.err))
		return
	}

	ev := msg.ev
	switch ev.Type {
	case watch.Add:
		if ev.Stat.Kind == fsmeta.Directory {
			w.addDirectory(ctx, ev.Path)
		} else {
			w.addFile(ctx, ev.Path, ev.Stat)
		}
	case watch.Remove:
		if ev.Stat.Kind == fsmeta.Directory {
			w.removeDirectory(ctx, ev.Path)
		} else {
			w.removeFile(ctx, ev.Path)
		}
	case watch.Change:
		if ev.Stat.Kind != fsmeta.Directory {
			w.changeFile(ctx, ev.Path, ev.Stat)
		}
	}
}

// addFile admits path if it is not already tracked and matches the
// configured include/exclude set. A file that fails IsMatch at admission
// time is never tracked, so it can never later surface a change or remove —
// the predicate is evaluated once, at the door.
func (w *Watcher) addFile(ctx context.Context, path string, meta fsmeta.Meta) {
	if !w.matcher.IsMatch(path) {
		return
	}

	w.mu.Lock()
	if _, exists := w.files[path]; exists {
		w.mu.Unlock()
		return
	}
	w.files[path] = meta
	alive := w.lc.State() == lifecycle.Alive
	w.mu.Unlock()

	if alive {
		w.deliverEvent(ctx, watch.Event{Type: watch.Add, Path: path, Stat: meta})
	}
}

func (w *Watcher) removeFile(ctx context.Context, path string) {
	w.mu.Lock()
	meta, exists := w.files[path]
	if !exists {
		w.mu.Unlock()
		return
	}
	delete(w.files, path)
	alive := w.lc.State() == lifecycle.Alive
	w.mu.Unlock()

	if alive {
		w.deliverEvent(ctx, watch.Event{Type: watch.Remove, Path: path, Stat: meta})
	}
}

func (w *Watcher) changeFile(ctx context.Context, path string, meta fsmeta.Meta) {
	w.mu.Lock()
	if _, exists := w.files[path]; !exists {
		w.mu.Unlock()
		return
	}
	w.files[path] = meta
	alive := w.lc.State() == lifecycle.Alive
	w.mu.Unlock()

	if alive {
		w.deliverEvent(ctx, watch.Event{Type: watch.Change, Path: path, Stat: meta})
	}
}

// removeDirectory tears down dir's child watcher (emitting any pending
// removes for files and sub-directories it owned) and drops it from
// watchers.
func (w *Watcher) removeDirectory(ctx context.Context, dir string) {
	w.mu.Lock()
	cw, exists := w.watchers[dir]
	if !exists {
		w.mu.Unlock()
		return
	}
	delete(w.watchers, dir)
	child := cw.w
	w.mu.Unlock()

	if child == nil {
		return // was still in-flight; addDirectory's own awaiting goroutine unwinds it
	}

	for path, meta := range child.Children() {
		if meta.Kind == fsmeta.Directory {
			w.removeDirectory(ctx, path)
		} else {
			w.removeFile(ctx, path)
		}
	}

	w.cfg.logger().Debug("fswatch: tore down directory watcher", "dir", dir)
	child.Close()
}

func (w *Watcher) deliverEvent(ctx context.Context, ev watch.Event) {
	select {
	case w.events <- ev:
	case <-w.closeCh:
	case <-ctx.Done():
	}
}

func (w *Watcher) deliverError(ctx context.Context, err error) {
	select {
	case w.errs <- err:
	case <-w.closeCh:
	case <-ctx.Done():
	}
}

// teardownAll snapshots every child watcher handle, clears watchers, then
// concurrently closes all of them, ignoring their errors, and waits for all
// to settle.
func (w *Watcher) teardownAll() {
	w.mu.Lock()
	handles := make([]*watch.Watcher, 0, len(w.watchers))
	for dir, cw := range w.watchers {
		if cw.w != nil {
			handles = append(handles, cw.w)
		}
		delete(w.watchers, dir)
	}
	w.mu.Unlock()

	var g errgroup.Group
	for _, h := range handles {
		g.Go(func() error {
			h.Close()
			return nil
		})
	}
	g.Wait()
}
