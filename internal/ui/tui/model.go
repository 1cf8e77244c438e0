package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bamsammich/bodyfile/internal/event"
	"github.com/bamsammich/bodyfile/internal/stats"
	"github.com/bamsammich/bodyfile/internal/ui"
)

type viewMode int

const (
	viewFeed viewMode = iota
	viewRate
)

// Bubble Tea messages.
type engineEventMsg event.Event
type channelDoneMsg struct{}
type tickMsg time.Time
type saveResultMsg struct{ err error }

// readNextEvent returns a tea.Cmd that blocks on the event channel.
func readNextEvent(ch <-chan event.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return channelDoneMsg{}
		}
		return engineEventMsg(ev)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// saveModal is the text input for the report file name.
type saveModal struct {
	active bool
	input  string
	cursor int
}

func (s *saveModal) insertRune(r rune) {
	s.input = s.input[:s.cursor] + string(r) + s.input[s.cursor:]
	s.cursor += len(string(r))
}

func (s *saveModal) backspace() {
	if s.cursor > 0 {
		s.input = s.input[:s.cursor-1] + s.input[s.cursor:]
		s.cursor--
	}
}

func (s *saveModal) moveLeft() {
	if s.cursor > 0 {
		s.cursor--
	}
}

func (s *saveModal) moveRight() {
	if s.cursor < len(s.input) {
		s.cursor++
	}
}

func (s *saveModal) render() string {
	return "  " + styleSavePrompt.Render("Save report to: ") +
		styleSaveInput.Render(s.input[:s.cursor]) +
		styleSaveInput.Render("█") +
		styleSaveInput.Render(s.input[s.cursor:])
}

// Model is the root Bubble Tea model.
type Model struct {
	events  <-chan event.Event
	stats   stats.ReadTicker
	workers int
	source  string
	output  string

	mode      viewMode
	feed      feedView
	rate      rateView
	width     int
	height    int
	statusMsg string // transient notification
	done      bool   // collection finished
	quitting  bool

	lastSnap  stats.Snapshot
	lastSpeed float64

	save saveModal
}

// NewModel creates a model reading events for a collection of source
// (display string) into output, with names starting at root.
func NewModel(events <-chan event.Event, collector stats.ReadTicker, workers int, source, root, output string) Model {
	return Model{
		events:  events,
		stats:   collector,
		workers: workers,
		source:  source,
		output:  output,
		feed:    newFeedView(root),
		rate:    newRateView(),
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		readNextEvent(m.events),
		tickCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case engineEventMsg:
		m.feed.handleEvent(event.Event(msg))
		m.rate.handleEvent(event.Event(msg))
		return m, readNextEvent(m.events)

	case channelDoneMsg:
		m.done = true
		m.lastSnap = m.stats.Snapshot()
		m.lastSpeed = m.stats.RollingSpeed(10)
		return m, tickCmd()

	case tickMsg:
		if !m.done {
			m.stats.Tick()
		}
		m.lastSnap = m.stats.Snapshot()
		m.lastSpeed = m.stats.RollingSpeed(5)
		return m, tickCmd()

	case saveResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("save failed: %v", msg.err)
		} else {
			m.statusMsg = fmt.Sprintf("saved to %s", m.save.input)
		}
		m.save.active = false
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.save.active {
		return m.handleSaveKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "r":
		m.mode = viewRate
		m.statusMsg = ""

	case "f", "e":
		m.mode = viewFeed
		m.statusMsg = ""

	case "j", "down":
		if m.mode == viewFeed {
			m.feed.scrollDown()
		}

	case "k", "up":
		if m.mode == viewFeed {
			m.feed.scrollUp()
		}

	case "G":
		if m.mode == viewFeed {
			m.feed.scrollToBottom()
		}

	case "g":
		if m.mode == viewFeed {
			m.feed.scrollToTop()
		}

	case "s":
		if m.done {
			m.save.active = true
			m.save.input = fmt.Sprintf("bodyfile-%s.log", time.Now().Format("2006-01-02-150405"))
			m.save.cursor = len(m.save.input)
			m.statusMsg = ""
		}
	}

	return m, nil
}

func (m Model) handleSaveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.save.active = false
		m.statusMsg = ""
	case tea.KeyEnter:
		return m, m.writeReport(m.save.input)
	case tea.KeyBackspace:
		m.save.backspace()
	case tea.KeyLeft:
		m.save.moveLeft()
	case tea.KeyRight:
		m.save.moveRight()
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.save.insertRune(r)
		}
	}
	return m, nil
}

// writeReport saves a plain-text summary of the collection and every
// entry seen to path.
func (m Model) writeReport(path string) tea.Cmd {
	snap := m.lastSnap
	source, output, root := m.source, m.output, m.feed.root
	completed := append([]completedEntry(nil), m.feed.completed...)
	problems := append([]problemEntry(nil), m.feed.problems...)

	return func() tea.Msg {
		var b strings.Builder

		b.WriteString("bodyfile collection report\n")
		b.WriteString("==========================\n")
		fmt.Fprintf(&b, "source:    %s\n", source)
		fmt.Fprintf(&b, "output:    %s\n", output)
		fmt.Fprintf(&b, "finished:  %s\n", time.Now().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&b, "duration:  %s\n", ui.FormatDuration(snap.Elapsed))
		fmt.Fprintf(&b, "lines:     %s\n", ui.FormatCount(snap.LinesWritten))
		fmt.Fprintf(&b, "hashed:    %s in %s files\n", ui.FormatBytes(snap.BytesHashed), ui.FormatCount(snap.FilesHashed))
		fmt.Fprintf(&b, "skipped:   %s\n", ui.FormatCount(snap.EntriesSkipped))
		fmt.Fprintf(&b, "errors:    %s\n", ui.FormatCount(snap.EntriesFailed))

		if len(problems) > 0 {
			b.WriteString("\n--- problems ---\n")
			for _, p := range problems {
				mark := "x"
				if p.warning {
					mark = "!"
				}
				fmt.Fprintf(&b, "%s  %-50s  %s\n", mark, stripRoot(root, p.path), p.msg)
			}
		}

		b.WriteString("\n--- entries ---\n")
		for _, e := range completed {
			rel := stripRoot(root, e.path)
			switch {
			case e.failed:
				fmt.Fprintf(&b, "x  %-50s  %s\n", rel, e.errMsg)
			case e.skipped:
				fmt.Fprintf(&b, "-  %-50s  skipped\n", rel)
			default:
				fmt.Fprintf(&b, "v  %-50s  %s\n", rel, ui.FormatBytes(e.size))
			}
		}

		err := os.WriteFile(path, []byte(b.String()), 0o644) //nolint:gosec // user-chosen path for report output
		return saveResultMsg{err: err}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')

	// header, status line and footer
	contentHeight := max(m.height-3, 3)

	switch m.mode {
	case viewFeed:
		b.WriteString(m.feed.view(contentHeight))
	case viewRate:
		b.WriteString(m.rate.view(m.lastSnap, m.lastSpeed, m.workers))
	}

	switch {
	case m.save.active:
		b.WriteString(m.save.render())
	case m.statusMsg != "":
		b.WriteString(styleStatus.Render("  " + m.statusMsg))
	}
	b.WriteByte('\n')

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	snap := m.lastSnap

	header := fmt.Sprintf("  %s  %s  %s lines  %s dirs  %s hashed  %s  %dw",
		styleHeaderLabel.Render("bodyfile"),
		m.source,
		ui.FormatCount(snap.LinesWritten),
		ui.FormatCount(snap.DirsScanned),
		ui.FormatBytes(snap.BytesHashed),
		ui.FormatRate(m.lastSpeed),
		m.workers,
	)
	if m.done {
		header = fmt.Sprintf("  %s  %s  %s lines  %s hashed  %s errors  %s",
			styleHeaderLabel.Render("bodyfile"),
			styleIconDone.Render("done"),
			ui.FormatCount(snap.LinesWritten),
			ui.FormatBytes(snap.BytesHashed),
			ui.FormatCount(snap.EntriesFailed),
			ui.FormatDuration(snap.Elapsed),
		)
	}

	return styleHeader.Render(header)
}

func (m Model) renderFooter() string {
	type keybind struct {
		key   string
		label string
	}

	binds := []keybind{
		{"q", "quit"},
		{"r", "rate"},
		{"f", "feed"},
		{"j/k", "scroll"},
	}
	if m.done {
		binds = append([]keybind{{"s", "save"}}, binds...)
	}

	parts := make([]string, 0, len(binds))
	for _, kb := range binds {
		parts = append(parts, styleKeybindKey.Render(kb.key)+" "+styleKeybindLabel.Render(kb.label))
	}
	return "  " + strings.Join(parts, "   ")
}
