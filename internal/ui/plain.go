package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bamsammich/bodyfile/internal/stats"
)

// progressEvery is how many one-second ticks pass between progress lines.
const progressEvery = 5

// plainPresenter reports failures as they happen and periodic progress,
// all on stderr. With verbose set it also prints one line per entry.
type plainPresenter struct {
	errW    io.Writer
	stats   stats.ReadTicker
	verbose bool
	styled  bool
	ticks   int
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			p.ticks++
			if p.ticks%progressEvery == 0 {
				p.printProgress()
			}
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case ScanStarted:
		if p.verbose {
			fmt.Fprintf(p.errW, "collecting %s\n", ev.Path)
		}
	case EntryCollected:
		if p.verbose {
			fmt.Fprintf(p.errW, "%s  %s\n", ev.Path, FormatBytes(ev.Size))
		}
	case EntryFailed:
		fmt.Fprintf(p.errW, "error: %s\n", errText(ev))
	case HashFailed:
		// The line was still written, with the unknown digest.
		fmt.Fprintf(p.errW, "warning: %s\n", errText(ev))
	case NoTimestamps:
		fmt.Fprintf(p.errW, "warning: %s has no timestamps, mactime will drop it\n", ev.Path)
	case EntrySkipped:
		if p.verbose {
			fmt.Fprintf(p.errW, "%s  skipped\n", ev.Path)
		}
	case DirScanned:
		if p.verbose {
			fmt.Fprintf(p.errW, "%s/  %s entries\n", strings.TrimSuffix(ev.Path, "/"), FormatCount(ev.Size))
		}
	case ScanComplete, HashStarted:
		// counted by the collector
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	fmt.Fprintf(p.errW, "progress: %s lines %s dirs %s hashed %s\n",
		FormatCount(snap.LinesWritten),
		FormatCount(snap.DirsScanned),
		FormatBytes(snap.BytesHashed),
		FormatRate(p.stats.RollingSpeed(10)),
	)
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot(), p.styled)
}

func errText(ev Event) string {
	if ev.Error != nil {
		return ev.Error.Error()
	}
	return ev.Path
}
