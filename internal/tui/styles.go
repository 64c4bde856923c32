package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Accent color for the askviz branding.
const accentTeal = "#2DD4BF"

// ASKVIZ ASCII art banner.
var askvizArt = []string{
	" █████╗ ███████╗██╗  ██╗██╗   ██╗██╗███████╗",
	"██╔══██╗██╔════╝██║ ██╔╝██║   ██║██║╚══███╔╝",
	"███████║███████╗█████╔╝ ██║   ██║██║  ███╔╝ ",
	"██╔══██║╚════██║██╔═██╗ ╚██╗ ██╔╝██║ ███╔╝  ",
	"██║  ██║███████║██║  ██╗ ╚████╔╝ ██║███████╗",
	"╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝  ╚═══╝  ╚═╝╚══════╝",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner       Style
	Header       Style
	ThreadActive Style
	ThreadPin    Style
	Thread       Style
	Selected     Style
	Muted        Style
	Error        Style
	Success      Style
	Prompt       Style
	Separator    Style
	StatusBar    Style
	Confirm      Style
}

// Style aliases lipgloss.Style so callers outside the package never import
// lipgloss directly.
type Style = lipgloss.Style

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accentTeal)),
		Header:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accentTeal)),
		ThreadActive: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		ThreadPin:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Thread:       lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Selected:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		Prompt:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusBar:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Confirm:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
	}
}

// RenderBanner returns the ASKVIZ ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range askvizArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// welcomeTips contains getting started tips displayed under the banner.
var welcomeTips = []string{
	"Tips for getting started:",
	"  • Type a question about your data and press Enter",
	"  • Tab switches between thread charts and pinned charts",
	"  • Ctrl+P pins the selected chart to the dashboard",
	"  • Ctrl+N starts a thread, Ctrl+J/Ctrl+K switch threads",
	"  • Esc cancels an in-flight question",
}

// RenderWelcomeTips returns the styled welcome tips.
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.StatusBar.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
