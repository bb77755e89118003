package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// runPolling drives the polling engine: a fixed-interval ticker triggers a
// full reconciliation pass over the root directory and its tracked children.
//
// A root poller and each child's poller could be scheduled independently,
// serializing overlapping root reconciliations behind an in-flight guard.
// Here both tiers share one ticker and one goroutine instead: nothing else
// can run between the start and end of a pass, so overlapping scans cannot
// occur in the first place.
func (w *Watcher) runPolling(ctx context.Context) {
	ticker := time.NewTicker(w.opts.pollingInterval())
	defer ticker.Stop()

	var lastRootMTime time.Time

	for {
		select {
		case <-ticker.C:
			w.pollOnce(ctx, &lastRootMTime)

		case <-w.closeCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

// pollOnce performs one root+per-child reconciliation pass. The root
// directory's mtime gates only the membership scan (a readdir is warranted
// only when a name was added or removed, which always advances the
// directory's mtime); per-child change detection runs on every tick, since
// rewriting a child's contents leaves the parent directory's mtime alone.
func (w *Watcher) pollOnce(ctx context.Context, lastRootMTime *time.Time) {
	rootInfo, err := os.Stat(w.path)
	if err != nil {
		w.emitError(ctx, err)
		return
	}

	if rootInfo.ModTime().After(*lastRootMTime) {
		*lastRootMTime = rootInfo.ModTime()
		w.reconcileMembership(ctx)
	}

	for _, childPath := range w.trackedChildren() {
		typ, meta, hasEvent := w.reconcileChildPolling(childPath)
		if !hasEvent {
			continue
		}
		w.emitEvent(ctx, Event{Type: typ, Path: childPath, Stat: meta})
	}
}

// reconcileMembership re-reads the child name set and reconciles it against
// children: names no longer present are dropped (emitting Remove), new names
// are admitted through the same per-child reconciliation used on every tick.
func (w *Watcher) reconcileMembership(ctx context.Context) {
	entries, err := os.ReadDir(w.path)
	if err != nil {
		w.emitError(ctx, err)
		return
	}

	present := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		present[filepath.Join(w.path, e.Name())] = struct{}{}
	}

	w.reconcileRemovedChildren(ctx, present)

	for childPath := range present {
		typ, meta, hasEvent := w.reconcileChildPolling(childPath)
		if !hasEvent {
			continue
		}
		w.emitEvent(ctx, Event{Type: typ, Path: childPath, Stat: meta})
	}
}

func (w *Watcher) trackedChildren() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.children))
	for childPath := range w.children {
		out = append(out, childPath)
	}
	return out
}

// reconcileRemovedChildren drops every tracked child absent from present and
// emits its Remove, carrying the metadata last sampled before it vanished —
// never a post-removal re-stat.
func (w *Watcher) reconcileRemovedChildren(ctx context.Context, present map[string]struct{}) {
	w.mu.Lock()
	var removed []Event
	for childPath, meta := range w.children {
		if _, ok := present[childPath]; ok {
			continue
		}
		delete(w.children, childPath)
		removed = append(removed, Event{Type: Remove, Path: childPath, Stat: meta})
	}
	w.mu.Unlock()

	for _, ev := range removed {
		w.emitEvent(ctx, ev)
	}
}
