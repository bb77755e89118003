// Package recursive implements the Recursive Glob Watcher: a single unified
// event stream over every file matching an include/exclude pattern set,
// rooted across the base directories those patterns imply, composed from one
// Directory Watcher per directory in the matched subtree.
package recursive

import (
	"log/slog"
	"os"
	"time"

	"github.com/watchkit/fswatch/glob"
	"github.com/watchkit/fswatch/kit/colorlog"
	"github.com/watchkit/fswatch/watch"
)

var defaultLogger = colorlog.New("fswatch-recursive")

// Config configures a Watcher.
type Config struct {
	// Includes lists the glob patterns (POSIX-style, brace alternation and
	// "**" supported) whose matches populate the event stream.
	Includes []string

	// Excludes lists patterns without a leading "!"; callers using "!"-prefixed
	// exclude conventions should strip the prefix before populating this
	// field, since the matching engine takes bare patterns.
	Excludes []string

	// Cwd resolves relative patterns. Defaults to the process's working
	// directory if empty.
	Cwd string

	// Engine selects the underlying Directory Watcher engine used for
	// every directory in the subtree.
	Engine watch.Engine

	// PollingInterval and DebounceInterval are forwarded to every child
	// Directory Watcher.
	PollingInterval  time.Duration
	DebounceInterval time.Duration

	// Logger receives diagnostic messages. Defaults to a colorlog-backed
	// logger labeled "fswatch-recursive".
	Logger *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return defaultLogger
}

func (c Config) watchOptions() watch.Options {
	return watch.Options{
		Engine:           c.Engine,
		PollingInterval:  c.PollingInterval,
		DebounceInterval: c.DebounceInterval,
		Logger:           c.Logger,
	}
}

func (c Config) matcher() (*glob.Matcher, error) {
	cwd := c.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cwd = wd
	}
	return glob.New(c.Includes, c.Excludes, cwd)
}
