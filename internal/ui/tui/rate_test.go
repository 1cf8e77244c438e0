package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/bodyfile/internal/event"
	"github.com/bamsammich/bodyfile/internal/stats"
)

func TestRateView_WorkerTracking(t *testing.T) {
	r := newRateView()

	r.handleEvent(event.Event{Type: event.HashStarted, WorkerID: 0})
	r.handleEvent(event.Event{Type: event.HashStarted, WorkerID: 1})
	assert.Len(t, r.busyWorkers, 2)

	r.handleEvent(event.Event{Type: event.EntryCollected, WorkerID: 0})
	assert.Len(t, r.busyWorkers, 1)
	assert.True(t, r.busyWorkers[1])

	r.handleEvent(event.Event{Type: event.EntryFailed, WorkerID: 1})
	assert.Empty(t, r.busyWorkers)
}

func TestRateView_ViewRendersNonEmpty(t *testing.T) {
	r := newRateView()
	r.handleEvent(event.Event{Type: event.HashStarted, WorkerID: 0})

	c := stats.NewCollector()
	c.AddLinesWritten(10)
	c.AddDirsScanned(2)
	c.AddFilesHashed(8)
	c.AddBytesHashed(100 * 1024 * 1024)
	c.Tick()

	snap := c.Snapshot()
	snap.Elapsed = 2 * time.Second
	out := r.view(snap, c.RollingSpeed(5), 4)

	assert.NotEmpty(t, out)
	assert.Contains(t, out, "workers")
	assert.Contains(t, out, "5 lines/s")
	assert.Contains(t, out, "2 dirs")
	assert.Contains(t, out, "8 files hashed")
}

func TestRateView_WorkerGrid(t *testing.T) {
	r := newRateView()
	r.busyWorkers[0] = true
	r.busyWorkers[2] = true

	grid := r.renderWorkerGrid(4)
	assert.Contains(t, grid, "▪")
	assert.Contains(t, grid, "□")
}
