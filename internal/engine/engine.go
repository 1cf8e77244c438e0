package engine

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/bamsammich/bodyfile/internal/event"
	"github.com/bamsammich/bodyfile/internal/filter"
	"github.com/bamsammich/bodyfile/internal/stats"
	"github.com/bamsammich/bodyfile/internal/transport"
)

// Config describes one collection of a source tree into body file lines.
type Config struct {
	Endpoint      transport.ReadEndpoint
	Sink          LineSink
	Filter        *filter.Chain
	HashCache     *HashCache
	Events        chan<- event.Event
	Stats         *stats.Collector // nil = a fresh collector
	NamePrefix    string           // name column prefix; the endpoint root when empty
	Hash          Algorithm
	ReadLimit     int64 // bytes/sec for hashing reads; 0 = unlimited
	Workers       int
	ScanWorkers   int
	OneFileSystem bool
}

// Result is the outcome of a collection.
type Result struct {
	Stats stats.Snapshot
	Err   error
}

// Run walks cfg.Endpoint and writes one line per entry to cfg.Sink, blocking
// until complete. Entries that fail to stat produce no line; files that fail
// to hash are written with the unknown digest. Either way the first error is
// reported in Result.Err.
func Run(ctx context.Context, cfg Config) Result {
	if cfg.Endpoint == nil {
		return Result{Err: errors.New("no source endpoint")}
	}
	if cfg.Sink == nil {
		return Result{Err: errors.New("no line sink")}
	}

	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Hash == "" {
		cfg.Hash = HashMD5
	}
	prefix := cfg.NamePrefix
	if prefix == "" {
		prefix = cfg.Endpoint.Root()
	}
	if prefix != "" {
		prefix = path.Clean(filepath.ToSlash(prefix))
	}

	var limiter *rate.Limiter
	if cfg.ReadLimit > 0 {
		limiter = NewReadLimiter(cfg.ReadLimit)
	}

	emitEvent(cfg.Events, event.Event{Type: event.ScanStarted, Path: prefix})

	scanner := NewScanner(ScannerConfig{
		Endpoint:      cfg.Endpoint,
		Filter:        cfg.Filter,
		Stats:         collector,
		Events:        cfg.Events,
		NamePrefix:    prefix,
		Workers:       cfg.ScanWorkers,
		OneFileSystem: cfg.OneFileSystem,
	})
	tasks, scanErrs := scanner.Scan(ctx)

	wp := NewWorkerPool(WorkerConfig{
		Endpoint:   cfg.Endpoint,
		Sink:       cfg.Sink,
		NumWorkers: cfg.Workers,
		Hash:       cfg.Hash,
		NamePrefix: prefix,
		Limiter:    limiter,
		HashCache:  cfg.HashCache,
		Events:     cfg.Events,
		Stats:      collector,
	})

	// Errors from both scanner and workers.
	var errs errorTally

	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		for err := range scanErrs {
			collector.AddEntriesFailed(1)
			emitEvent(cfg.Events, event.Event{Type: event.EntryFailed, Error: err})
			errs.add(err)
		}
	}()

	// Run workers (blocks until all tasks processed).
	wp.Run(ctx, tasks, errs.add)
	<-scanDone

	if cfg.HashCache != nil {
		if err := cfg.HashCache.Flush(); err != nil {
			errs.add(fmt.Errorf("flush hash cache: %w", err))
		}
	}

	runErr := errs.err()
	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}

	snap := collector.Snapshot()
	emitEvent(cfg.Events, event.Event{
		Type:      event.ScanComplete,
		Total:     snap.LinesWritten,
		TotalSize: snap.BytesHashed,
	})

	return Result{Stats: snap, Err: runErr}
}

// errorTally keeps the first error reported and counts all of them.
type errorTally struct {
	mu    sync.Mutex
	first error
	count atomic.Int64
}

func (t *errorTally) add(err error) {
	if err == nil {
		return
	}
	t.count.Add(1)
	t.mu.Lock()
	if t.first == nil {
		t.first = err
	}
	t.mu.Unlock()
}

// err returns the first error, annotated with how many followed it.
func (t *errorTally) err() error {
	t.mu.Lock()
	first := t.first
	t.mu.Unlock()
	if n := t.count.Load(); n > 1 {
		return fmt.Errorf("%w (and %d more errors)", first, n-1)
	}
	return first
}

func emitEvent(ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}
