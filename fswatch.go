// Package fswatch offers thin public constructors over the watch and
// recursive packages: a single non-recursive Directory Watcher, and a
// Recursive Glob Watcher that composes one Directory Watcher per directory
// in a matched subtree. The reconciliation core itself lives in watch and
// recursive; this package exists so a caller who only needs construction
// doesn't have to know the internal package split.
package fswatch

import (
	"context"

	"github.com/watchkit/fswatch/recursive"
	"github.com/watchkit/fswatch/watch"
)

// NewDirWatcher observes one directory's immediate children and emits
// add/remove/change events for them. See watch.Watcher for the full API.
func NewDirWatcher(ctx context.Context, path string, opts watch.Options) *watch.Watcher {
	return watch.New(ctx, path, opts)
}

// NewRecursiveWatcher presents a single unified event stream over every file
// matching cfg's include/exclude pattern set, rooted across the base
// directories those patterns imply. See recursive.Watcher for the full API.
func NewRecursiveWatcher(ctx context.Context, cfg recursive.Config) *recursive.Watcher {
	return recursive.New(ctx, cfg)
}
