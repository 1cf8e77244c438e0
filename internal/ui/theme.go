package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/bodyfile/internal/config"
)

// Catppuccin Mocha palette, overridable from the config file.
var (
	ColorOK     = lipgloss.Color("#a6e3a1")
	ColorError  = lipgloss.Color("#f38ba8")
	ColorMuted  = lipgloss.Color("#5a6278")
	ColorAccent = lipgloss.Color("#cdd6f4")
)

var (
	styleOK    lipgloss.Style
	styleError lipgloss.Style
	styleLabel lipgloss.Style
	styleValue lipgloss.Style
)

func init() {
	rebuildStyles()
}

func rebuildStyles() {
	styleOK = lipgloss.NewStyle().Bold(true).Foreground(ColorOK)
	styleError = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	styleLabel = lipgloss.NewStyle().Foreground(ColorMuted)
	styleValue = lipgloss.NewStyle().Foreground(ColorAccent)
}

// ApplyTheme overrides colors from a config ThemeConfig and rebuilds all styles.
func ApplyTheme(tc config.ThemeConfig) {
	if tc.OK != nil {
		ColorOK = lipgloss.Color(*tc.OK)
	}
	if tc.Error != nil {
		ColorError = lipgloss.Color(*tc.Error)
	}
	if tc.Muted != nil {
		ColorMuted = lipgloss.Color(*tc.Muted)
	}
	if tc.Accent != nil {
		ColorAccent = lipgloss.Color(*tc.Accent)
	}
	rebuildStyles()
}
