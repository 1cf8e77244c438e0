// Package stats tracks collection counters shared by scanner, workers and
// presenters.
package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Reader is the read-only view presenters use.
type Reader interface {
	Snapshot() Snapshot
	RollingSpeed(seconds int) float64
}

// ReadTicker is a Reader that the presenter also drives once per second.
type ReadTicker interface {
	Reader
	Tick()
}

var _ ReadTicker = (*Collector)(nil)

// Collector tracks collection statistics using lock-free atomic counters.
type Collector struct {
	entriesScanned atomic.Int64
	dirsScanned    atomic.Int64
	linesWritten   atomic.Int64
	filesHashed    atomic.Int64
	bytesHashed    atomic.Int64
	entriesFailed  atomic.Int64
	entriesSkipped atomic.Int64
	hashCacheHits  atomic.Int64
	startTime      time.Time

	// Ring buffer of hashed bytes per second; written only by Tick.
	mu         sync.Mutex
	throughput [ringSize]int64
	ringIdx    int
	ringCount  int
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) AddEntriesScanned(n int64) { c.entriesScanned.Add(n) }
func (c *Collector) AddDirsScanned(n int64)    { c.dirsScanned.Add(n) }
func (c *Collector) AddLinesWritten(n int64)   { c.linesWritten.Add(n) }
func (c *Collector) AddFilesHashed(n int64)    { c.filesHashed.Add(n) }
func (c *Collector) AddBytesHashed(n int64)    { c.bytesHashed.Add(n) }
func (c *Collector) AddEntriesFailed(n int64)  { c.entriesFailed.Add(n) }
func (c *Collector) AddEntriesSkipped(n int64) { c.entriesSkipped.Add(n) }
func (c *Collector) AddHashCacheHits(n int64)  { c.hashCacheHits.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	EntriesScanned int64
	DirsScanned    int64
	LinesWritten   int64
	FilesHashed    int64
	BytesHashed    int64
	EntriesFailed  int64
	EntriesSkipped int64
	HashCacheHits  int64
	Elapsed        time.Duration
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		EntriesScanned: c.entriesScanned.Load(),
		DirsScanned:    c.dirsScanned.Load(),
		LinesWritten:   c.linesWritten.Load(),
		FilesHashed:    c.filesHashed.Load(),
		BytesHashed:    c.bytesHashed.Load(),
		EntriesFailed:  c.entriesFailed.Load(),
		EntriesSkipped: c.entriesSkipped.Load(),
		HashCacheHits:  c.hashCacheHits.Load(),
		Elapsed:        c.Elapsed(),
	}
}

// Tick records the hashed-bytes delta into the ring buffer. Called 1/sec
// by the presenter.
func (c *Collector) Tick() {
	current := c.bytesHashed.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = current - c.lastBytes
	c.lastBytes = current
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average hashed bytes/sec over the last n samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(seconds, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		sum += c.throughput[(c.ringIdx-1-i+ringSize)%ringSize]
	}
	return float64(sum) / float64(count)
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"scanned=%d dirs=%d lines=%d hashed=%d bytes=%d failed=%d skipped=%d",
		s.EntriesScanned, s.DirsScanned, s.LinesWritten, s.FilesHashed,
		s.BytesHashed, s.EntriesFailed, s.EntriesSkipped,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
