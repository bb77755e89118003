// Package watch implements the Directory Watcher: one directory's immediate
// children, observed via either the OS's native change-notification
// facility or a fixed-interval poller, reconciled into a stream of
// add/remove/change events.
package watch

import "github.com/watchkit/fswatch/internal/fsmeta"

// EventType labels a FileEvent.
type EventType int

const (
	Add EventType = iota
	Remove
	Change
)

func (t EventType) String() string {
	switch t {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Change:
		return "change"
	default:
		return "unknown"
	}
}

// Event is an immutable add/remove/change notification for one path.
type Event struct {
	Type EventType
	Path string
	Stat fsmeta.Meta
}
