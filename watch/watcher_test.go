package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/watchkit/fswatch/internal/fsmeta"
)

// collector drains a Watcher's Events channel for a fixed window and
// records what arrived.
type collector struct {
	events []Event
}

func collect(t *testing.T, w *Watcher, window time.Duration) *collector {
	t.Helper()
	c := &collector{}
	deadline := time.After(window)
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return c
			}
			c.events = append(c.events, ev)
		case <-deadline:
			return c
		}
	}
}

func mustReady(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not become ready")
	}
	if err := w.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}
}

func newTestWatcher(t *testing.T, dir string, engine Engine) *Watcher {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	w := New(ctx, dir, Options{
		Engine:           engine,
		PollingInterval:  50 * time.Millisecond,
		DebounceInterval: 50 * time.Millisecond,
	})
	mustReady(t, w)
	t.Cleanup(func() {
		w.Close()
		cancel()
	})
	return w
}

func eventsByType(events []Event, typ EventType) []Event {
	var out []Event
	for _, e := range events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func runBothEngines(t *testing.T, fn func(t *testing.T, engine Engine)) {
	t.Helper()
	for _, engine := range []Engine{Native, Polling} {
		engine := engine
		name := "native"
		if engine == Polling {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) { fn(t, engine) })
	}
}

// A freshly written file surfaces as exactly one Add carrying its size.
func TestAddFile(t *testing.T) {
	runBothEngines(t, func(t *testing.T, engine Engine) {
		dir := t.TempDir()
		w := newTestWatcher(t, dir, engine)

		if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("Hello"), 0o644); err != nil {
			t.Fatal(err)
		}

		c := collect(t, w, 700*time.Millisecond)
		adds := eventsByType(c.events, Add)
		if len(adds) != 1 {
			t.Fatalf("adds = %+v, want exactly one", adds)
		}
		if adds[0].Path != filepath.Join(dir, "hello.txt") {
			t.Errorf("path = %q", adds[0].Path)
		}
		if adds[0].Stat.Kind != fsmeta.File || adds[0].Stat.Size != 5 {
			t.Errorf("stat = %+v, want file/5", adds[0].Stat)
		}
		if len(eventsByType(c.events, Remove)) != 0 || len(eventsByType(c.events, Change)) != 0 {
			t.Errorf("unexpected extra events: %+v", c.events)
		}
	})
}

// A freshly created directory surfaces as one Add of kind Directory.
func TestAddDirectory(t *testing.T) {
	runBothEngines(t, func(t *testing.T, engine Engine) {
		dir := t.TempDir()
		w := newTestWatcher(t, dir, engine)

		if err := os.Mkdir(filepath.Join(dir, "hello"), 0o755); err != nil {
			t.Fatal(err)
		}

		c := collect(t, w, 700*time.Millisecond)
		adds := eventsByType(c.events, Add)
		if len(adds) != 1 {
			t.Fatalf("adds = %+v, want exactly one", adds)
		}
		if adds[0].Stat.Kind != fsmeta.Directory {
			t.Errorf("kind = %v, want Directory", adds[0].Stat.Kind)
		}
	})
}

// Deleting a pre-existing file surfaces as one Remove carrying the
// pre-deletion metadata.
func TestRemoveFile(t *testing.T) {
	runBothEngines(t, func(t *testing.T, engine Engine) {
		dir := t.TempDir()
		path := filepath.Join(dir, "hello.txt")
		if err := os.WriteFile(path, []byte("Hello"), 0o644); err != nil {
			t.Fatal(err)
		}
		w := newTestWatcher(t, dir, engine)

		if err := os.Remove(path); err != nil {
			t.Fatal(err)
		}

		c := collect(t, w, 700*time.Millisecond)
		removes := eventsByType(c.events, Remove)
		if len(removes) != 1 {
			t.Fatalf("removes = %+v, want exactly one", removes)
		}
		if removes[0].Stat.Size != 5 || removes[0].Stat.Kind != fsmeta.File {
			t.Errorf("stat = %+v, want pre-deletion size 5/file", removes[0].Stat)
		}
	})
}

// Overwriting a pre-existing file surfaces as one Change with the new size.
func TestChangeFile(t *testing.T) {
	runBothEngines(t, func(t *testing.T, engine Engine) {
		dir := t.TempDir()
		path := filepath.Join(dir, "hello.txt")
		if err := os.WriteFile(path, []byte("Hello"), 0o644); err != nil {
			t.Fatal(err)
		}
		w := newTestWatcher(t, dir, engine)

		time.Sleep(20 * time.Millisecond) // ensure a distinguishable mtime
		if err := os.WriteFile(path, []byte("Hello, World!"), 0o644); err != nil {
			t.Fatal(err)
		}

		c := collect(t, w, 700*time.Millisecond)
		changes := eventsByType(c.events, Change)
		if len(changes) != 1 {
			t.Fatalf("changes = %+v, want exactly one", changes)
		}
		if changes[0].Stat.Size != 13 {
			t.Errorf("size = %d, want 13", changes[0].Stat.Size)
		}
	})
}

// Add then change within one debounce window coalesces to a single Add
// with the final size (native engine debounce merge).
func TestAddThenChangeCoalesces(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir, Native)

	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("Hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("Hello, World!"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := collect(t, w, 700*time.Millisecond)
	adds := eventsByType(c.events, Add)
	if len(adds) != 1 || adds[0].Stat.Size != 13 {
		t.Fatalf("adds = %+v, want exactly one Add carrying size 13", adds)
	}
	if len(eventsByType(c.events, Change)) != 0 {
		t.Errorf("unexpected Change events: %+v", c.events)
	}
}

// Add then remove within one debounce window produces zero events: a file
// never publicly announced is never un-announced.
func TestAddThenRemoveProducesNoEvents(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir, Native)

	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("Hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	c := collect(t, w, 700*time.Millisecond)
	if len(c.events) != 0 {
		t.Fatalf("events = %+v, want none", c.events)
	}
}

// Remove then re-add with identical content produces exactly one Change:
// the consumer already knew of the path.
func TestRemoveThenAddBecomesChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("Hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := newTestWatcher(t, dir, Native)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("Hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := collect(t, w, 700*time.Millisecond)
	if len(eventsByType(c.events, Add)) != 0 || len(eventsByType(c.events, Remove)) != 0 {
		t.Fatalf("events = %+v, want zero Add/Remove", c.events)
	}
	changes := eventsByType(c.events, Change)
	if len(changes) != 1 || changes[0].Stat.Size != 5 {
		t.Fatalf("changes = %+v, want exactly one Change carrying size 5", changes)
	}
}

// A change that lands strictly between one sample
// and the file's removal within the same polling interval is never observed,
// so the Remove carries the *earlier* (last sampled) metadata. A long
// polling interval guarantees both mutations fall inside one interval.
func TestChangeThenRemoveCarriesLastSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("Hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := New(ctx, dir, Options{
		Engine:          Polling,
		PollingInterval: 200 * time.Millisecond,
	})
	mustReady(t, w)
	defer w.Close()

	if err := os.WriteFile(path, []byte("Hello, World!"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	c := collect(t, w, 700*time.Millisecond)
	removes := eventsByType(c.events, Remove)
	if len(removes) != 1 {
		t.Fatalf("removes = %+v, want exactly one", removes)
	}
	if removes[0].Stat.Size != 5 {
		t.Errorf("size = %d, want 5 (the last sample before removal)", removes[0].Stat.Size)
	}
	if len(eventsByType(c.events, Change)) != 0 {
		t.Errorf("unexpected Change events: %+v", c.events)
	}
}

// Parent/sibling isolation: events outside the watched
// directory (parent, or a child subdirectory, since the watcher is
// non-recursive) never surface.
func TestParentAndChildIsolation(t *testing.T) {
	runBothEngines(t, func(t *testing.T, engine Engine) {
		parent := t.TempDir()
		watched := filepath.Join(parent, "watched")
		if err := os.Mkdir(watched, 0o755); err != nil {
			t.Fatal(err)
		}
		w := newTestWatcher(t, watched, engine)

		if err := os.WriteFile(filepath.Join(parent, "sibling.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		childDir := filepath.Join(watched, "child")
		if err := os.Mkdir(childDir, 0o755); err != nil {
			t.Fatal(err)
		}
		c := collect(t, w, 200*time.Millisecond)
		// Draining the "child" Add is expected; what must NOT appear is any
		// event for a file created *inside* that child directory.
		if err := os.WriteFile(filepath.Join(childDir, "nested.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		c2 := collect(t, w, 700*time.Millisecond)
		for _, ev := range append(c.events, c2.events...) {
			if filepath.Dir(ev.Path) != watched {
				t.Errorf("unexpected event outside watched directory: %+v", ev)
			}
		}
	})
}

// A non-existent target rejects Ready with ErrNotExist.
func TestNonExistentTarget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(ctx, filepath.Join(t.TempDir(), "does-not-exist"), Options{})
	defer w.Close()

	<-w.Ready()
	if err := w.Err(); !errors.Is(err, ErrNotExist) {
		t.Fatalf("Err() = %v, want ErrNotExist", err)
	}
}

// Watching a regular file rejects Ready with ErrNotDirectory.
func TestNonDirectoryTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(ctx, path, Options{})
	defer w.Close()

	<-w.Ready()
	if err := w.Err(); !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("Err() = %v, want ErrNotDirectory", err)
	}
}

// Close is idempotent and no events are emitted after it completes.
func TestCloseIsIdempotentAndQuiescent(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(ctx, dir, Options{Engine: Native})
	mustReady(t, w)

	if err := w.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "late.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	select {
	case ev, ok := <-w.Events():
		if ok {
			t.Fatalf("received event after Close: %+v", ev)
		}
	default:
		t.Fatal("Events() channel should be closed after Close completes")
	}
}

func TestCloseDuringInitializing(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(ctx, dir, Options{})
	if err := w.Close(); err != nil {
		t.Fatalf("Close during initialization: %v", err)
	}
	<-w.Ready() // must still resolve
}
