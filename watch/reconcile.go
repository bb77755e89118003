package watch

import (
	"log/slog"
	"os"

	"github.com/watchkit/fswatch/internal/fsmeta"
)

// reconcileChildNative implements the native engine's Prev/Curr
// reconciliation: every notification for an existing, still-existing
// non-directory child is treated as a change regardless of whether the
// restatted metadata actually differs — a native notification already
// signals "something happened"; the coarse OS primitive gives no cheaper
// way to know more. It stats childPath, mutates w.children to match, and
// reports what (if anything) should be enqueued for emission.
func (w *Watcher) reconcileChildNative(childPath string) (typ EventType, meta fsmeta.Meta, hasEvent bool) {
	curr, exists := statChild(childPath, w.opts.logger())

	w.mu.Lock()
	defer w.mu.Unlock()

	prev, hadPrev := w.children[childPath]

	switch {
	case !hadPrev && !exists:
		return 0, fsmeta.Meta{}, false

	case !hadPrev && exists:
		w.children[childPath] = curr
		return Add, curr, true

	case hadPrev && !exists:
		delete(w.children, childPath)
		return Remove, prev, true

	case hadPrev && exists && prev.Kind == fsmeta.Directory && curr.Kind == fsmeta.Directory:
		w.children[childPath] = curr
		return 0, fsmeta.Meta{}, false

	default: // hadPrev && exists, at least one side not-directory (incl. kind changes)
		w.children[childPath] = curr
		return Change, curr, true
	}
}

// reconcileChildPolling implements the polling engine's per-child
// comparison: a non-directory child only emits change when its restatted
// metadata actually differs from the last sample; directories never emit
// change (mtime churn is ignored, same as the native engine). Presence/
// absence transitions are reported the same way as the native engine so
// both share identical add/remove semantics.
func (w *Watcher) reconcileChildPolling(childPath string) (typ EventType, meta fsmeta.Meta, hasEvent bool) {
	curr, exists := statChild(childPath, w.opts.logger())

	w.mu.Lock()
	defer w.mu.Unlock()

	prev, hadPrev := w.children[childPath]

	switch {
	case !hadPrev && !exists:
		return 0, fsmeta.Meta{}, false

	case !hadPrev && exists:
		w.children[childPath] = curr
		return Add, curr, true

	case hadPrev && !exists:
		delete(w.children, childPath)
		return Remove, prev, true

	case hadPrev && exists:
		if prev.Equal(curr) {
			return 0, fsmeta.Meta{}, false
		}
		w.children[childPath] = curr
		if curr.Kind == fsmeta.Directory {
			return 0, fsmeta.Meta{}, false
		}
		return Change, curr, true

	default:
		return 0, fsmeta.Meta{}, false
	}
}

// statChild resolves childPath's current metadata via Lstat. ENOENT is
// interpreted as absence; any other stat error is logged and the path is
// likewise treated as absent.
func statChild(path string, logger *slog.Logger) (fsmeta.Meta, bool) {
	info, err := os.Lstat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("fswatch: stat failed", "path", path, "error", err)
		}
		return fsmeta.Meta{}, false
	}
	return fsmeta.FromFileInfo(info), true
}
