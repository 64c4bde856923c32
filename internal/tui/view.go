package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/askviz/askviz/internal/session"
	"github.com/askviz/askviz/internal/store"
)

// View implements tea.Model.
func (m *Model) View() tea.View {
	m.viewBuf.Reset()

	_, _ = m.viewBuf.WriteString(m.viewport.View())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderInputLine())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderStatusBar())

	v := tea.NewView(m.viewBuf.String())
	v.AltScreen = true
	return v
}

// renderInputLine shows the question prompt, or the rename draft prompt
// while a rename confirmation is open.
func (m *Model) renderInputLine() string {
	if conf := m.controller.Confirmation(); conf != nil && conf.Kind == session.ConfirmRenameThread {
		return m.styles.Confirm.Render("rename> ") + m.input.View()
	}
	return m.styles.Prompt.Render("> ") + m.input.View()
}

// rebuildViewportContent reconstructs the viewport from the stores and
// session state. Called whenever either changes.
func (m *Model) rebuildViewportContent() {
	m.clampSelection()

	var b strings.Builder

	_, _ = b.WriteString(m.styles.RenderBanner())
	_, _ = b.WriteString("\n")

	threads := m.controller.Threads()
	if len(threads) == 0 && m.controller.Status() == session.StatusIdle {
		_, _ = b.WriteString(m.styles.RenderWelcomeTips())
		_, _ = b.WriteString("\n")
	}

	m.renderThreadBar(&b, threads)
	_, _ = b.WriteString("\n")

	if m.controller.View() == session.ViewPinned {
		m.renderChartList(&b, "Pinned charts", m.controller.PinnedCharts())
	} else if active, ok := m.controller.ActiveThread(); ok {
		m.renderChartList(&b, active.Title, active.Charts)
	}

	m.renderStatus(&b)
	m.renderConfirmation(&b)

	m.viewport.SetContent(b.String())
}

// renderThreadBar lists the threads in display order, marking the pinned
// segment and the active thread.
func (m *Model) renderThreadBar(b *strings.Builder, threads []store.Thread) {
	if len(threads) == 0 {
		return
	}

	active := ""
	if t, ok := m.controller.ActiveThread(); ok {
		active = t.ID
	}

	_, _ = b.WriteString(m.styles.Header.Render("Threads"))
	_, _ = b.WriteString("\n")
	for _, t := range threads {
		marker := "  "
		style := m.styles.Thread
		if t.ID == active {
			marker = "▸ "
			style = m.styles.ThreadActive
		}
		line := marker + t.Title
		if t.Pinned {
			line += " " + m.styles.ThreadPin.Render("★")
		}
		_, _ = b.WriteString(style.Render(line))
		_, _ = b.WriteString("\n")
	}
}

// renderChartList shows a chart collection with the selected entry
// rendered in full through the surface.
func (m *Model) renderChartList(b *strings.Builder, heading string, charts []store.ChartArtifact) {
	_, _ = b.WriteString(m.styles.Header.Render(heading))
	_, _ = b.WriteString("\n")

	if len(charts) == 0 {
		_, _ = b.WriteString(m.styles.Muted.Render("  (no charts yet)"))
		_, _ = b.WriteString("\n\n")
		return
	}

	for i, c := range charts {
		title := c.Title
		if title == "" {
			title = c.Query
		}
		line := fmt.Sprintf("  %d. %s", i+1, title)
		if m.controller.View() == session.ViewCharts && m.controller.IsPinned(c.ID) {
			line += " " + m.styles.ThreadPin.Render("★")
		}
		if i == m.selected {
			_, _ = b.WriteString(m.styles.Selected.Render("▸" + line[1:]))
		} else {
			_, _ = b.WriteString(m.styles.Thread.Render(line))
		}
		_, _ = b.WriteString("\n")
	}
	_, _ = b.WriteString("\n")

	if m.selected >= 0 && m.selected < len(charts) {
		_, _ = b.WriteString(m.surface.Mount(charts[m.selected]))
		_, _ = b.WriteString("\n\n")
	}
}

// renderStatus shows the pipeline status line.
func (m *Model) renderStatus(b *strings.Builder) {
	switch m.controller.Status() {
	case session.StatusAsking:
		_, _ = b.WriteString(m.spinner.View())
		_, _ = b.WriteString(" ")
		_, _ = b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Translating %q to SQL...", m.controller.Query())))
		_, _ = b.WriteString("\n\n")
	case session.StatusCharting:
		_, _ = b.WriteString(m.spinner.View())
		_, _ = b.WriteString(" ")
		_, _ = b.WriteString(m.styles.Muted.Render("Generating chart..."))
		_, _ = b.WriteString("\n\n")
	case session.StatusDone:
		_, _ = b.WriteString(m.styles.Success.Render("✓ Chart added"))
		_, _ = b.WriteString("\n\n")
	case session.StatusError:
		_, _ = b.WriteString(m.styles.Error.Render("Error: " + m.controller.ErrMessage()))
		_, _ = b.WriteString("\n\n")
	}
}

// renderConfirmation shows the staged yes/no prompt, if any.
func (m *Model) renderConfirmation(b *strings.Builder) {
	conf := m.controller.Confirmation()
	if conf == nil {
		return
	}

	var prompt string
	switch conf.Kind {
	case session.ConfirmPin:
		prompt = fmt.Sprintf("Pin %q to the dashboard? (y/n)", conf.Artifact.Title)
	case session.ConfirmUnpin:
		prompt = fmt.Sprintf("Remove %q from the dashboard? (y/n)", conf.Artifact.Title)
	case session.ConfirmDeleteThread:
		prompt = "Delete this thread and all its charts? (y/n)"
	case session.ConfirmRenameThread:
		prompt = "Renaming thread; Enter to save, Esc to cancel"
	}
	_, _ = b.WriteString(m.styles.Confirm.Render(prompt))
	_, _ = b.WriteString("\n")
}

// renderSeparator returns a horizontal line separator.
func (m *Model) renderSeparator() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns state-appropriate keyboard shortcut help.
func (m *Model) renderStatusBar() string {
	var bindings []key.Binding
	switch {
	case m.controller.Confirmation() != nil:
		bindings = []key.Binding{m.keys.Confirm, m.keys.Dismiss}
	case m.running():
		bindings = []key.Binding{m.keys.Cancel, m.keys.Quit}
	default:
		bindings = []key.Binding{
			m.keys.Submit, m.keys.ToggleView, m.keys.Select,
			m.keys.Pin, m.keys.NewThread, m.keys.Quit,
		}
	}
	return m.help.ShortHelpView(bindings)
}
