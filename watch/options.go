package watch

import (
	"log/slog"
	"time"

	"github.com/watchkit/fswatch/kit/colorlog"
)

var defaultLogger = colorlog.New("fswatch")

// Engine selects which underlying observation mechanism a Watcher uses.
type Engine int

const (
	// Native relies on the OS's directory-change notification facility
	// (fsnotify), reconciled through the debounced merge queue.
	Native Engine = iota
	// Polling periodically re-stats children on a fixed interval.
	Polling
)

// defaultDebounce is the native engine's fixed 200ms debounce window.
const defaultDebounce = 200 * time.Millisecond

// defaultPollingInterval is used when Options.PollingInterval is zero.
const defaultPollingInterval = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Engine selects Native (default) or Polling.
	Engine Engine

	// PollingInterval is the per-path and root re-stat interval used by the
	// Polling engine. Defaults to 300ms if zero. Ignored by Native.
	PollingInterval time.Duration

	// DebounceInterval overrides the Native engine's 200ms debounce window.
	// Exposed for tests; production callers should leave it at the default.
	DebounceInterval time.Duration

	// Logger receives diagnostic messages (child stat failures, including
	// during the initial scan). Defaults to a colorlog-backed logger labeled
	// "fswatch".
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return defaultLogger
}

func (o Options) pollingInterval() time.Duration {
	if o.PollingInterval > 0 {
		return o.PollingInterval
	}
	return defaultPollingInterval
}

func (o Options) debounceInterval() time.Duration {
	if o.DebounceInterval > 0 {
		return o.DebounceInterval
	}
	return defaultDebounce
}
