// Command fswatchdemo is a minimal demonstration of the recursive glob
// watcher: it watches a directory for files matching a pattern and prints
// add/remove/change events to stdout until interrupted.
//
// Usage:
//
//	fswatchdemo [--pattern <pattern>] [--poll <interval>] <directory>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/watchkit/fswatch/recursive"
	"github.com/watchkit/fswatch/watch"
)

var (
	pattern = flag.String("pattern", "**/*", "glob pattern of files to watch, relative to <directory>")
	poll    = flag.Duration("poll", 0, "use the polling engine at this interval instead of native OS notifications")
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s: missing directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [--pattern <PATTERN>] [--poll <INTERVAL>] <DIR>\n", os.Args[0])
		os.Exit(1)
	}

	dir, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", os.Args[0], err)
		os.Exit(2)
	}

	cfg := recursive.Config{
		Includes: []string{filepath.Join(dir, *pattern)},
	}
	if *poll > 0 {
		cfg.Engine = watch.Polling
		cfg.PollingInterval = *poll
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := recursive.New(ctx, cfg)

	<-w.Ready()
	if err := w.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: unable to start watcher: %s\n", os.Args[0], err)
		os.Exit(3)
	}

	for path, meta := range w.Stats() {
		fmt.Printf("%8s %s (%s, %d bytes)\n", "baseline", path, meta.Kind, meta.Size)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		for err := range w.Errors() {
			fmt.Fprintf(os.Stderr, "%s: %s\n", os.Args[0], err)
		}
	}()

	go func() {
		for ev := range w.Events() {
			fmt.Printf("%8s %s\n", ev.Type, ev.Path)
		}
	}()

	<-sig
	w.Close()
}
