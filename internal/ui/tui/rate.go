package tui

import (
	"fmt"
	"strings"

	"github.com/bamsammich/bodyfile/internal/event"
	"github.com/bamsammich/bodyfile/internal/stats"
	"github.com/bamsammich/bodyfile/internal/ui"
)

type rateView struct {
	busyWorkers map[int]bool
}

func newRateView() rateView {
	return rateView{
		busyWorkers: make(map[int]bool),
	}
}

func (r *rateView) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.HashStarted:
		r.busyWorkers[ev.WorkerID] = true
	case event.EntryCollected, event.EntryFailed:
		delete(r.busyWorkers, ev.WorkerID)
	}
}

func (r *rateView) view(snap stats.Snapshot, speed float64, totalWorkers int) string {
	var b strings.Builder

	// Hashing throughput.
	b.WriteString("  " + styleBigNumber.Render(ui.FormatRate(speed)))
	b.WriteString("\n\n")

	linesPerSec := 0.0
	if secs := snap.Elapsed.Seconds(); secs > 0 {
		linesPerSec = float64(snap.LinesWritten) / secs
	}
	fmt.Fprintf(&b, "  %s   %s   %s\n\n",
		styleFileSpeed.Render(ui.FormatCount(int64(linesPerSec))+" lines/s"),
		styleFileSize.Render(ui.FormatCount(snap.DirsScanned)+" dirs"),
		styleFileSize.Render(ui.FormatCount(snap.FilesHashed)+" files hashed"),
	)

	b.WriteString("  " + styleDivider.Render("workers") + "  ")
	b.WriteString(r.renderWorkerGrid(totalWorkers))
	b.WriteByte('\n')

	return b.String()
}

func (r *rateView) renderWorkerGrid(total int) string {
	var b strings.Builder
	for i := range total {
		if r.busyWorkers[i] {
			b.WriteString(styleWorkerBusy.Render("▪"))
		} else {
			b.WriteString(styleWorkerIdle.Render("□"))
		}
	}
	return b.String()
}
