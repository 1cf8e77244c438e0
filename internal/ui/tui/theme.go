package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/bodyfile/internal/config"
	"github.com/bamsammich/bodyfile/internal/ui"
)

// Catppuccin Mocha accents used only by the full-screen view. The four
// themeable colors come from the ui package.
var (
	ColorBlue   = lipgloss.Color("#89b4fa")
	ColorYellow = lipgloss.Color("#f9e2af")
	ColorTeal   = lipgloss.Color("#94e2d5")
	ColorMauve  = lipgloss.Color("#cba6f7")
	ColorDim    = lipgloss.Color("#3a4055")
)

var (
	styleHeader       lipgloss.Style
	styleHeaderLabel  lipgloss.Style
	styleDivider      lipgloss.Style
	styleIconDone     lipgloss.Style
	styleIconFailed   lipgloss.Style
	styleIconSkipped  lipgloss.Style
	styleFilePath     lipgloss.Style
	styleFileDir      lipgloss.Style
	styleFileSize     lipgloss.Style
	styleFileSpeed    lipgloss.Style
	styleInFlight     lipgloss.Style
	styleWarning      lipgloss.Style
	styleError        lipgloss.Style
	styleErrorPath    lipgloss.Style
	styleKeybindKey   lipgloss.Style
	styleKeybindLabel lipgloss.Style
	styleBigNumber    lipgloss.Style
	styleWorkerBusy   lipgloss.Style
	styleWorkerIdle   lipgloss.Style
	styleStatus       lipgloss.Style
	styleSavePrompt   lipgloss.Style
	styleSaveInput    lipgloss.Style
)

func init() {
	rebuildStyles()
}

// rebuildStyles reconstructs all lipgloss styles from the current colors.
func rebuildStyles() {
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorAccent)
	styleHeaderLabel = lipgloss.NewStyle().Bold(true).Foreground(ColorMauve)
	styleDivider = lipgloss.NewStyle().Foreground(ColorDim)
	styleIconDone = lipgloss.NewStyle().Foreground(ui.ColorOK)
	styleIconFailed = lipgloss.NewStyle().Foreground(ui.ColorError)
	styleIconSkipped = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	styleFilePath = lipgloss.NewStyle().Foreground(ui.ColorAccent)
	styleFileDir = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	styleFileSize = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	styleFileSpeed = lipgloss.NewStyle().Foreground(ColorTeal)
	styleInFlight = lipgloss.NewStyle().Foreground(ColorBlue)
	styleWarning = lipgloss.NewStyle().Foreground(ColorYellow)
	styleError = lipgloss.NewStyle().Foreground(ui.ColorError)
	styleErrorPath = lipgloss.NewStyle().Foreground(ui.ColorError).Bold(true)
	styleKeybindKey = lipgloss.NewStyle().Foreground(ColorMauve).Bold(true)
	styleKeybindLabel = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	styleBigNumber = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorOK)
	styleWorkerBusy = lipgloss.NewStyle().Foreground(ColorBlue)
	styleWorkerIdle = lipgloss.NewStyle().Foreground(ColorDim)
	styleStatus = lipgloss.NewStyle().Foreground(ColorYellow).Italic(true)
	styleSavePrompt = lipgloss.NewStyle().Foreground(ui.ColorMuted)
	styleSaveInput = lipgloss.NewStyle().Foreground(ui.ColorAccent)
}

// ApplyTheme applies the config colors to the ui package and rebuilds the
// full-screen styles from them.
func ApplyTheme(tc config.ThemeConfig) {
	ui.ApplyTheme(tc)
	rebuildStyles()
}
