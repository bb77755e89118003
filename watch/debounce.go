package watch

import "github.com/watchkit/fswatch/internal/fsmeta"

// debounceQueue holds one pending emission slot per path and applies an
// add/change/remove merge table on each Enqueue call. It is deliberately a
// plain data structure with no timer or goroutine of its own — the owning
// native engine drives a single select loop and is responsible for
// (re)starting the debounce timer around calls to Enqueue, and for calling
// Flush when the timer fires.
//
// Merges follow a per-path table rather than batching raw notifications:
// the consumer should see one event describing the net effect of a burst,
// not the burst itself.
type debounceQueue struct {
	pending map[string]Event
}

func newDebounceQueue() *debounceQueue {
	return &debounceQueue{pending: make(map[string]Event)}
}

// Enqueue merges a freshly reconciled (typ, meta) pair for path into the
// queue. It returns false if the merge resulted in "drop both" (the pending
// entry for path was removed entirely and must not be emitted), true
// otherwise.
func (q *debounceQueue) Enqueue(path string, typ EventType, meta fsmeta.Meta) bool {
	prev, hasPending := q.pending[path]

	merged, keep := mergeEventType(prev.Type, hasPending, typ)
	if !keep {
		delete(q.pending, path)
		return false
	}

	q.pending[path] = Event{Type: merged, Path: path, Stat: meta}
	return true
}

// mergeEventType applies the add/change/remove merge table. hasPending
// distinguishes "no pending entry" (row "(none)") from a pending Add, since
// EventType's zero value is Add.
func mergeEventType(prev EventType, hasPending bool, next EventType) (result EventType, keep bool) {
	if !hasPending {
		return next, true
	}

	switch prev {
	case Add:
		switch next {
		case Add, Change:
			return Add, true
		case Remove:
			return Add, false // drop both
		}
	case Change:
		switch next {
		case Add, Change:
			return Change, true
		case Remove:
			return Remove, true
		}
	case Remove:
		switch next {
		case Add, Change:
			return Change, true
		case Remove:
			return Remove, true
		}
	}
	return next, true
}

// Flush returns all pending events — cross-path order is unspecified and
// callers must not depend on one — and clears the queue.
func (q *debounceQueue) Flush() []Event {
	if len(q.pending) == 0 {
		return nil
	}
	events := make([]Event, 0, len(q.pending))
	for _, ev := range q.pending {
		events = append(events, ev)
	}
	q.pending = make(map[string]Event)
	return events
}

// Empty reports whether there is no pending work.
func (q *debounceQueue) Empty() bool {
	return len(q.pending) == 0
}

// Clear discards all pending entries without emitting them, used on Close so
// no event is ever sent after close completes.
func (q *debounceQueue) Clear() {
	q.pending = make(map[string]Event)
}
