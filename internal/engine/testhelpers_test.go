package engine_test

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/bodyfile/internal/bodyfile"
	"github.com/bamsammich/bodyfile/internal/event"
	"github.com/bamsammich/bodyfile/internal/transport"
)

// memSink collects lines in memory.
type memSink struct {
	mu    sync.Mutex
	lines []bodyfile.Line
	err   error // returned from every Write when set
}

func (s *memSink) Write(l bodyfile.Line) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, l)
	return nil
}

// byName returns the collected lines keyed by name column.
func (s *memSink) byName() map[string]bodyfile.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := make(map[string]bodyfile.Line, len(s.lines))
	for _, l := range s.lines {
		m[l.Name()] = l
	}
	return m
}

func (s *memSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.lines))
	for _, l := range s.lines {
		names = append(names, l.Name())
	}
	sort.Strings(names)
	return names
}

// createTestTree builds:
//
//	root/
//	  hello.txt      "hello"
//	  empty.txt      ""
//	  sub/
//	    nested.txt   "nested content"
//	    deep/
//	      deep.txt   "deep"
//	  link -> hello.txt
func createTestTree(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deep"), 0o755))
	writeFile(t, filepath.Join(root, "hello.txt"), "hello")
	writeFile(t, filepath.Join(root, "empty.txt"), "")
	writeFile(t, filepath.Join(root, "sub", "nested.txt"), "nested content")
	writeFile(t, filepath.Join(root, "sub", "deep", "deep.txt"), "deep")
	require.NoError(t, os.Symlink("hello.txt", filepath.Join(root, "link")))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// drainEvents creates a buffered event channel, spawns a goroutine to drain
// it, and registers cleanup. Returns the channel for use in engine.Config.
func drainEvents(t *testing.T) chan<- event.Event {
	t.Helper()
	ch := make(chan event.Event, 1024)
	done := make(chan struct{})
	go func() {
		defer close(done)
		//nolint:revive // empty-block: intentionally draining event channel
		for range ch {
		}
	}()
	t.Cleanup(func() {
		close(ch)
		<-done
	})
	return ch
}

// collectEvents creates a buffered event channel that records all events.
// The getter closes the channel and waits for the drain goroutine, so it is
// safe to read the slice. It may be called at most once.
func collectEvents(t *testing.T) (chan<- event.Event, func() []event.Event) {
	t.Helper()
	ch := make(chan event.Event, 4096)
	var collected []event.Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			collected = append(collected, ev)
		}
	}()
	var once sync.Once
	drain := func() {
		once.Do(func() { close(ch) })
		<-done
	}
	t.Cleanup(drain)
	return ch, func() []event.Event {
		drain()
		return collected
	}
}

// editEndpoint wraps an endpoint, replacing its capabilities and passing
// every entry it reports through edit.
type editEndpoint struct {
	transport.ReadEndpoint
	caps transport.Capabilities
	edit func(*transport.FileEntry) // nil = unchanged
}

func (e *editEndpoint) Caps() transport.Capabilities { return e.caps }

func (e *editEndpoint) Stat(relPath string) (transport.FileEntry, error) {
	entry, err := e.ReadEndpoint.Stat(relPath)
	if err == nil && e.edit != nil {
		e.edit(&entry)
	}
	return entry, err
}

func (e *editEndpoint) ReadDir(relPath string) ([]transport.FileEntry, error) {
	entries, err := e.ReadEndpoint.ReadDir(relPath)
	if e.edit != nil {
		for i := range entries {
			e.edit(&entries[i])
		}
	}
	return entries, err
}

// countEvents returns how many events of type typ are in evs.
func countEvents(evs []event.Event, typ event.Type) int {
	var n int
	for _, ev := range evs {
		if ev.Type == typ {
			n++
		}
	}
	return n
}
