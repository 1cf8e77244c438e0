package engine

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bamsammich/bodyfile/internal/bodyfile"
	"github.com/bamsammich/bodyfile/internal/event"
	"github.com/bamsammich/bodyfile/internal/stats"
	"github.com/bamsammich/bodyfile/internal/transport"
)

// LineSink receives finished body file lines. Implementations must be safe
// for concurrent use.
type LineSink interface {
	Write(bodyfile.Line) error
}

// WorkerConfig controls worker behavior.
type WorkerConfig struct {
	Endpoint   transport.ReadEndpoint
	Sink       LineSink
	NumWorkers int
	Hash       Algorithm
	NamePrefix string // prepended to every relative path in the name column
	Limiter    *rate.Limiter
	HashCache  *HashCache // nil = no persistent cache
	Events     chan<- event.Event
	Stats      *stats.Collector
}

// WorkerPool turns scanned entries into body file lines.
type WorkerPool struct {
	cfg WorkerConfig

	// Digests already computed for an inode in this run, so hard links
	// are read once. Only used when the endpoint reports inodes and link
	// counts.
	linkCache bool
	digests   sync.Map // DevIno -> string
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(cfg WorkerConfig) *WorkerPool {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	caps := cfg.Endpoint.Caps()
	return &WorkerPool{cfg: cfg, linkCache: caps.Inodes && caps.Hardlinks}
}

// Run starts workers that consume tasks. It blocks until all tasks are
// processed or the context is cancelled. Every error is passed to report,
// which must be safe for concurrent use.
func (wp *WorkerPool) Run(ctx context.Context, tasks <-chan Task, report func(error)) {
	var wg sync.WaitGroup
	for id := range wp.cfg.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				if ctx.Err() != nil {
					return
				}
				if err := wp.processTask(ctx, id, task); err != nil {
					report(err)
				}
			}
		}()
	}
	wg.Wait()
}

func (wp *WorkerPool) processTask(ctx context.Context, workerID int, task Task) error {
	entry := task.Entry
	name := wp.name(entry)
	line := entryLine(name, entry)

	var hashErr error
	if wp.cfg.Hash.Enabled() && entry.Mode.IsRegular() {
		wp.emit(event.Event{Type: event.HashStarted, Path: name, Size: entry.Size, WorkerID: workerID})
		digest, err := wp.digest(ctx, task)
		if err != nil {
			// The line is still written, with the unknown digest.
			hashErr = fmt.Errorf("hash %s: %w", name, err)
			wp.cfg.Stats.AddEntriesFailed(1)
			wp.emit(event.Event{Type: event.HashFailed, Path: name, Error: hashErr, WorkerID: workerID})
		} else {
			line = line.WithMD5(digest)
		}
	}

	if err := wp.cfg.Sink.Write(line); err != nil {
		wp.cfg.Stats.AddEntriesFailed(1)
		err = fmt.Errorf("write line for %s: %w", name, err)
		wp.emit(event.Event{Type: event.EntryFailed, Path: name, Error: err, WorkerID: workerID})
		return err
	}

	wp.cfg.Stats.AddLinesWritten(1)
	if !line.HasTimestamp() {
		// mactime drops lines without a positive time.
		wp.emit(event.Event{Type: event.NoTimestamps, Path: name, WorkerID: workerID})
	}
	wp.emit(event.Event{Type: event.EntryCollected, Path: name, Size: entry.Size, WorkerID: workerID})
	return hashErr
}

func (wp *WorkerPool) digest(ctx context.Context, task Task) (string, error) {
	entry := task.Entry

	key, hasKey := task.devIno()
	hasKey = hasKey && wp.linkCache
	if hasKey {
		if d, ok := wp.digests.Load(key); ok {
			return d.(string), nil //nolint:forcetypeassert // only strings are stored
		}
	}

	cacheName := filepath.ToSlash(filepath.Join(wp.cfg.Endpoint.Root(), entry.RelPath))
	mtime, ctime := entry.ModTime.UnixNano(), entry.ChangeTime.UnixNano()
	if wp.cfg.HashCache != nil {
		if d, ok := wp.cfg.HashCache.Lookup(cacheName, wp.cfg.Hash, entry.Size, mtime, ctime); ok {
			wp.cfg.Stats.AddHashCacheHits(1)
			if hasKey {
				wp.digests.Store(key, d)
			}
			return d, nil
		}
	}

	rc, err := wp.cfg.Endpoint.OpenRead(entry.RelPath)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	d, n, err := HashReader(ctx, rc, wp.cfg.Hash, wp.cfg.Limiter)
	if err != nil {
		return "", err
	}
	wp.cfg.Stats.AddFilesHashed(1)
	wp.cfg.Stats.AddBytesHashed(n)

	if hasKey {
		wp.digests.Store(key, d)
	}
	if wp.cfg.HashCache != nil {
		if err := wp.cfg.HashCache.Store(cacheName, wp.cfg.Hash, d, entry.Size, mtime, ctime); err != nil {
			return d, fmt.Errorf("hash cache: %w", err)
		}
	}
	return d, nil
}

// name renders the name column: the prefix joined with the relative path,
// with symlink targets appended as "name -> target".
func (wp *WorkerPool) name(entry transport.FileEntry) string {
	name := entryName(wp.cfg.NamePrefix, entry.RelPath)
	if entry.IsSymlink && entry.LinkTarget != "" {
		name += " -> " + entry.LinkTarget
	}
	return name
}

func (wp *WorkerPool) emit(e event.Event) {
	emitEvent(wp.cfg.Events, e)
}

// entryName joins prefix and relPath. The root (".") renders as the prefix.
func entryName(prefix, relPath string) string {
	rel := filepath.ToSlash(relPath)
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

// entryLine builds the line for an entry without its digest. Times the
// endpoint could not supply keep the unknown sentinel.
func entryLine(name string, e transport.FileEntry) bodyfile.Line {
	line := bodyfile.New().
		WithName(name).
		WithMode(bodyfile.ModeString(e.Mode)).
		WithUID(int64(e.UID)).
		WithGID(int64(e.GID)).
		WithSize(e.Size).
		WithAtime(unixOrUnknown(e.AccTime)).
		WithMtime(unixOrUnknown(e.ModTime)).
		WithCtime(unixOrUnknown(e.ChangeTime))

	if e.HasIno {
		line = line.WithInode(strconv.FormatUint(e.Ino, 10))
	}
	if e.HasBirthTime {
		line = line.WithCrtime(unixOrUnknown(e.BirthTime))
	}
	return line
}

func unixOrUnknown(t time.Time) int64 {
	if t.IsZero() {
		return bodyfile.UnknownTime
	}
	return t.Unix()
}
