package tui

import (
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/bamsammich/bodyfile/internal/event"
	"github.com/bamsammich/bodyfile/internal/ui"
)

type inFlightEntry struct {
	path     string
	workerID int
	size     int64
	started  time.Time
}

type completedEntry struct {
	path    string
	size    int64
	skipped bool
	failed  bool
	errMsg  string
}

// problemEntry is an error or warning pinned below the feed.
type problemEntry struct {
	path    string
	msg     string
	warning bool // the line was still written
}

type feedView struct {
	inFlight     map[int]*inFlightEntry // files being hashed, keyed by workerID
	completed    []completedEntry       // unbounded history
	problems     []problemEntry         // never evicted
	root         string                 // name prefix stripped for display
	scrollOffset int
	autoScroll   bool
}

func newFeedView(root string) feedView {
	return feedView{
		inFlight:   make(map[int]*inFlightEntry),
		root:       root,
		autoScroll: true,
	}
}

func (f *feedView) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.HashStarted:
		f.inFlight[ev.WorkerID] = &inFlightEntry{
			path:     ev.Path,
			workerID: ev.WorkerID,
			size:     ev.Size,
			started:  ev.Timestamp,
		}

	case event.EntryCollected:
		delete(f.inFlight, ev.WorkerID)
		f.completed = append(f.completed, completedEntry{path: ev.Path, size: ev.Size})

	case event.EntryFailed:
		delete(f.inFlight, ev.WorkerID)
		msg := errMessage(ev)
		f.completed = append(f.completed, completedEntry{path: ev.Path, failed: true, errMsg: msg})
		f.problems = append(f.problems, problemEntry{path: ev.Path, msg: msg})

	case event.HashFailed:
		f.problems = append(f.problems, problemEntry{path: ev.Path, msg: errMessage(ev), warning: true})

	case event.NoTimestamps:
		f.problems = append(f.problems, problemEntry{path: ev.Path, msg: "no timestamps", warning: true})

	case event.EntrySkipped:
		f.completed = append(f.completed, completedEntry{path: ev.Path, size: ev.Size, skipped: true})
	}
}

func errMessage(ev event.Event) string {
	if ev.Error != nil {
		return ev.Error.Error()
	}
	return "error"
}

func (f *feedView) scrollDown() {
	f.autoScroll = false
	f.scrollOffset++
}

func (f *feedView) scrollUp() {
	f.autoScroll = false
	if f.scrollOffset > 0 {
		f.scrollOffset--
	}
}

func (f *feedView) scrollToTop() {
	f.autoScroll = false
	f.scrollOffset = 0
}

// scrollToBottom re-enables following new entries.
func (f *feedView) scrollToBottom() {
	f.autoScroll = true
}

func (f *feedView) view(height int) string {
	// In-flight takes at most a third of the height, problems at most five
	// lines, and the completed list fills the rest.
	maxInFlight := max(height/3, 1)
	inFlightCount := min(len(f.inFlight), maxInFlight)
	problemCount := min(len(f.problems), 5)

	dividers := 0
	for _, n := range []int{inFlightCount, problemCount, len(f.completed)} {
		if n > 0 {
			dividers++
		}
	}
	completedHeight := max(height-inFlightCount-problemCount-dividers, 1)

	maxOffset := max(len(f.completed)-completedHeight, 0)
	if f.autoScroll || f.scrollOffset > maxOffset {
		f.scrollOffset = maxOffset
	}

	var b strings.Builder
	if lines := f.renderInFlight(maxInFlight); lines != "" {
		b.WriteString(styleDivider.Render("─ hashing"))
		b.WriteByte('\n')
		b.WriteString(lines)
	}
	if lines := f.renderCompleted(completedHeight); lines != "" {
		b.WriteString(styleDivider.Render(fmt.Sprintf("─ collected (%s)", ui.FormatCount(int64(len(f.completed))))))
		b.WriteByte('\n')
		b.WriteString(lines)
	}
	if lines := f.renderProblems(problemCount); lines != "" {
		b.WriteString(styleDivider.Render(fmt.Sprintf("─ problems (%d)", len(f.problems))))
		b.WriteByte('\n')
		b.WriteString(lines)
	}
	return b.String()
}

func (f *feedView) renderInFlight(maxLines int) string {
	if len(f.inFlight) == 0 {
		return ""
	}

	var b strings.Builder
	for i, id := range slices.Sorted(maps.Keys(f.inFlight)) {
		if i >= maxLines {
			break
		}
		e := f.inFlight[id]
		line := fmt.Sprintf("  %s  %s  %s",
			styleInFlight.Render("⟩"),
			f.styledPath(e.path),
			styleFileSize.Render(ui.FormatBytes(e.size)),
		)
		if !e.started.IsZero() {
			line += "  " + styleFileSize.Render(ui.FormatDuration(time.Since(e.started)))
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func (f *feedView) renderCompleted(viewportHeight int) string {
	if len(f.completed) == 0 {
		return ""
	}

	end := min(f.scrollOffset+viewportHeight, len(f.completed))
	var b strings.Builder
	for _, e := range f.completed[f.scrollOffset:end] {
		var icon, extra string
		switch {
		case e.failed:
			icon = styleIconFailed.Render("✗")
			extra = styleError.Render(e.errMsg)
		case e.skipped:
			icon = styleIconSkipped.Render("–")
			extra = styleIconSkipped.Render("skipped")
		default:
			icon = styleIconDone.Render("✓")
		}

		line := fmt.Sprintf("  %s  %s  %s", icon, f.styledPath(e.path),
			styleFileSize.Render(fmt.Sprintf("%10s", ui.FormatBytes(e.size))))
		if extra != "" {
			line += "  " + extra
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// renderProblems shows the most recent maxLines problems.
func (f *feedView) renderProblems(maxLines int) string {
	if len(f.problems) == 0 {
		return ""
	}

	var b strings.Builder
	for _, e := range f.problems[max(len(f.problems)-maxLines, 0):] {
		icon, msg := styleIconFailed.Render("✗"), styleError.Render(e.msg)
		if e.warning {
			icon, msg = styleWarning.Render("!"), styleWarning.Render(e.msg)
		}
		fmt.Fprintf(&b, "  %s  %s  %s\n", icon, styleErrorPath.Render(stripRoot(f.root, e.path)), msg)
	}
	return b.String()
}

func (f *feedView) styledPath(p string) string {
	p = stripRoot(f.root, p)
	dir, base := path.Split(p)
	if dir == "" {
		return styleFilePath.Render(base)
	}
	return styleFileDir.Render(dir) + styleFilePath.Render(base)
}

// stripRoot returns p relative to root for display. The root itself and
// paths outside it are returned unchanged.
func stripRoot(root, p string) string {
	if root == "" || root == p {
		return p
	}
	rel, ok := strings.CutPrefix(p, strings.TrimSuffix(root, "/")+"/")
	if !ok || rel == "" {
		return p
	}
	return rel
}
