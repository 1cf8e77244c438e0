package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/bamsammich/bodyfile/internal/event"
	"github.com/bamsammich/bodyfile/internal/filter"
	"github.com/bamsammich/bodyfile/internal/stats"
	"github.com/bamsammich/bodyfile/internal/transport"
)

// ScannerConfig controls scanner behavior.
type ScannerConfig struct {
	Endpoint      transport.ReadEndpoint
	Filter        *filter.Chain    // nil = include everything
	Stats         *stats.Collector // nil = no counting
	Events        chan<- event.Event
	NamePrefix    string // renders event paths the way the name column does
	Workers       int
	OneFileSystem bool // do not descend into directories on other devices
}

// Scanner traverses a tree in parallel and emits a Task for every entry,
// the root included.
type Scanner struct {
	cfg     ScannerConfig
	tasks   chan Task
	errs    chan error
	rootDev uint64
}

// NewScanner creates a scanner with the given config.
func NewScanner(cfg ScannerConfig) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = min(runtime.NumCPU(), 8)
	}
	return &Scanner{
		cfg:   cfg,
		tasks: make(chan Task, cfg.Workers*4),
		errs:  make(chan error, cfg.Workers*4),
	}
}

// Scan starts the scanner and returns channels for tasks and errors.
// The caller must consume from both channels until they close.
func (s *Scanner) Scan(ctx context.Context) (<-chan Task, <-chan error) {
	go func() {
		defer close(s.tasks)
		defer close(s.errs)
		s.scanTree(ctx)
	}()

	return s.tasks, s.errs
}

func (s *Scanner) scanTree(ctx context.Context) {
	root, err := s.cfg.Endpoint.Stat(".")
	if err != nil {
		s.sendErr(ctx, fmt.Errorf("stat root %s: %w", s.cfg.Endpoint.Root(), err))
		return
	}
	s.rootDev = root.Dev
	s.countScanned(root)
	if !s.sendTask(ctx, Task{Entry: root}) || !root.IsDir {
		return
	}

	workQueue := make(chan string, s.cfg.Workers*2)
	var outstanding sync.WaitGroup // directories queued but not yet processed

	var workerWg sync.WaitGroup
	for range s.cfg.Workers {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			for dir := range workQueue {
				s.scanDir(ctx, dir, workQueue, &outstanding)
				outstanding.Done()
			}
		}()
	}

	outstanding.Add(1)
	workQueue <- "."

	// Wait for all directory work to finish, then close the work queue
	// so workers exit their range loop.
	outstanding.Wait()
	close(workQueue)
	workerWg.Wait()
}

func (s *Scanner) scanDir(ctx context.Context, relDir string, workQueue chan string, outstanding *sync.WaitGroup) {
	if ctx.Err() != nil {
		return
	}

	// ReadDir may return the readable entries together with an error for
	// the ones that vanished or could not be stat'ed.
	entries, err := s.cfg.Endpoint.ReadDir(relDir)
	if err != nil {
		s.sendErr(ctx, err)
	}
	if s.cfg.Stats != nil {
		s.cfg.Stats.AddDirsScanned(1)
	}
	emitEvent(s.cfg.Events, event.Event{
		Type: event.DirScanned,
		Path: entryName(s.cfg.NamePrefix, relDir),
		Size: int64(len(entries)),
	})

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		if s.cfg.Filter != nil && !s.cfg.Filter.Match(filepath.ToSlash(entry.RelPath), entry.IsDir, entry.Size) {
			if s.cfg.Stats != nil {
				s.cfg.Stats.AddEntriesSkipped(1)
			}
			emitEvent(s.cfg.Events, event.Event{
				Type: event.EntrySkipped,
				Path: entryName(s.cfg.NamePrefix, entry.RelPath),
				Size: entry.Size,
			})
			continue
		}

		s.countScanned(entry)
		if !s.sendTask(ctx, Task{Entry: entry}) {
			return
		}

		if !entry.IsDir || !s.descend(entry) {
			continue
		}

		outstanding.Add(1)
		select {
		case workQueue <- entry.RelPath:
		default:
			// Queue full: every worker may be blocked here, so walk the
			// subtree on this goroutine instead of waiting.
			s.scanDir(ctx, entry.RelPath, workQueue, outstanding)
			outstanding.Done()
		}
	}
}

func (s *Scanner) descend(dir transport.FileEntry) bool {
	if !s.cfg.OneFileSystem || !dir.HasIno {
		return true
	}
	return dir.Dev == s.rootDev
}

func (s *Scanner) countScanned(transport.FileEntry) {
	if s.cfg.Stats != nil {
		s.cfg.Stats.AddEntriesScanned(1)
	}
}

func (s *Scanner) sendTask(ctx context.Context, task Task) bool {
	select {
	case s.tasks <- task:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Scanner) sendErr(ctx context.Context, err error) {
	select {
	case s.errs <- err:
	case <-ctx.Done():
	}
}
