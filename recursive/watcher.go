package recursive

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/watchkit/fswatch/glob"
	"github.com/watchkit/fswatch/internal/fsmeta"
	"github.com/watchkit/fswatch/internal/lifecycle"
	"github.com/watchkit/fswatch/watch"
)

// Watcher presents a single unified add/remove/change stream over every file
// matching a Config's include/exclude set, internally orchestrating one
// directory watcher per directory in the matched subtree. Each child watcher
// gets its own forwarding goroutine feeding one shared inbox channel that a
// single owning goroutine drains, so once Ready has closed all event handling
// happens on that one goroutine. The initial descent runs one goroutine per
// base directory concurrently; mu guards watchers and files throughout.
type Watcher struct {
	cfg     Config
	matcher *glob.Matcher

	lc *lifecycle.Lifecycle

	mu       sync.Mutex
	watchers map[string]*childWatcher // dir -> in-flight or ready child
	files    map[string]fsmeta.Meta   // admitted file path -> last-known meta

	events chan watch.Event
	errs   chan error

	inbox chan inboxMsg

	closeOnce sync.Once
	closeCh   chan struct{}
	doneCh    chan struct{}
}

type childWatcher struct {
	dir string
	w   *watch.Watcher
}

type inboxMsg struct {
	dir   string
	ev    watch.Event
	err   error
	isErr bool
}

// New constructs a Watcher over cfg and begins initialization asynchronously.
// Callers must read Ready before trusting Stats, and must call Close exactly
// once (idempotent) when finished. Cancelling ctx is equivalent to Close.
func New(ctx context.Context, cfg Config) *Watcher {
	w := &Watcher{
		cfg:      cfg,
		lc:       lifecycle.New(),
		watchers: make(map[string]*childWatcher),
		files:    make(map[string]fsmeta.Meta),
		events:   make(chan watch.Event, 64),
		errs:     make(chan error, 16),
		inbox:    make(chan inboxMsg, 64),
		closeCh:  make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go w.run(ctx)
	return w
}

// Ready is closed once initialization has finished, successfully or not.
func (w *Watcher) Ready() <-chan struct{} { return w.lc.Ready() }

// Err reports the error initialization failed with, or nil on success.
func (w *Watcher) Err() error { return w.lc.Err() }

// Events delivers add/remove/change notifications for every admitted file.
func (w *Watcher) Events() <-chan watch.Event { return w.events }

// Errors delivers runtime observation errors forwarded from child watchers.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Stats returns a snapshot of every currently admitted file and its
// last-known metadata. Meaningful once Ready has closed.
func (w *Watcher) Stats() map[string]fsmeta.Meta {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]fsmeta.Meta, len(w.files))
	for k, v := range w.files {
		out[k] = v
	}
	return out
}

// Close transitions to Disposed, concurrently closes every child watcher
// (ignoring their errors), and returns once all have settled. Idempotent.
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

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.closeCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	matcher, err := w.cfg.matcher()
	if err != nil {
		w.lc.MarkDisposed(err)
		return
	}
	w.matcher = matcher

	var g errgroup.Group
	for _, base := range matcher.BaseDirectories() {
		g.Go(func() error {
			w.addDirectory(ctx, base)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-w.closeCh:
		<-done // addDirectory observes Disposed via closeCh and unwinds promptly
	case <-ctx.Done():
		<-done
	}

	if w.disposalRequested() {
		w.lc.MarkDisposed(nil)
		w.teardownAll()
		return
	}

	w.lc.MarkAlive()

	for {
		select {
		case msg := <-w.inbox:
			w.handleInboxMessage(ctx, msg)

		case <-w.closeCh:
			w.teardownAll()
			return

		case <-ctx.Done():
			w.teardownAll()
			return
		}
	}
}

func (w *Watcher) disposalRequested() bool {
	select {
	case <-w.closeCh:
		return true
	default:
		return false
	}
}
