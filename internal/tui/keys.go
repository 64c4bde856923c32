package tui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/askviz/askviz/internal/session"
	"github.com/askviz/askviz/internal/store"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	ToggleView key.Binding
	Select     key.Binding
	NewThread  key.Binding
	NextThread key.Binding
	PrevThread key.Binding
	Pin        key.Binding
	Rename     key.Binding
	DelThread  key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	Confirm    key.Binding
	Dismiss    key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ask")),
		ToggleView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "charts/pinned")),
		Select:     key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "select chart")),
		NewThread:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new thread")),
		NextThread: key.NewBinding(key.WithKeys("ctrl+j"), key.WithHelp("ctrl+j", "next thread")),
		PrevThread: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "prev thread")),
		Pin:        key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "pin/unpin")),
		Rename:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "rename thread")),
		DelThread:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "delete thread")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		Confirm:    key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		Dismiss:    key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "dismiss")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
	}
}

//nolint:gocyclo // Keyboard handler requires branching for all key combinations
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return m.handleCtrlC()
		case 'd':
			return m, tea.Quit
		case 'n':
			m.controller.NewThread()
			m.rebuildViewportContent()
			return m, nil
		case 'j':
			m.cycleThread(1)
			return m, nil
		case 'k':
			m.cycleThread(-1)
			return m, nil
		case 'p':
			m.stagePin()
			return m, nil
		case 'r':
			m.stageRename()
			return m, nil
		case 'x':
			m.stageDeleteThread()
			return m, nil
		}
	}

	// A staged confirmation captures the keyboard until resolved.
	if conf := m.controller.Confirmation(); conf != nil {
		return m.handleConfirmationKey(msg, conf)
	}

	switch k.Code {
	case tea.KeyEnter:
		return m.handleSubmit()

	case tea.KeyTab:
		m.controller.ToggleView()
		m.selected = 0
		m.surface.Unmount()
		m.rebuildViewportContent()
		return m, nil

	case tea.KeyEscape:
		switch m.controller.Status() {
		case session.StatusAsking, session.StatusCharting:
			m.controller.CancelRun()
			m.runEvents = nil
		case session.StatusError:
			m.controller.DismissError()
		}
		m.rebuildViewportContent()
		return m, nil

	case tea.KeyUp:
		m.selected--
		m.clampSelection()
		m.rebuildViewportContent()
		return m, nil

	case tea.KeyDown:
		m.selected++
		m.clampSelection()
		m.rebuildViewportContent()
		return m, nil

	case tea.KeyPgUp:
		m.viewport.PageUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.PageDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleConfirmationKey routes keys while a confirmation is open. Rename
// confirmations edit their draft through the input line; the rest are
// plain yes/no prompts.
func (m *Model) handleConfirmationKey(msg tea.KeyPressMsg, conf *session.Confirmation) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if conf.Kind == session.ConfirmRenameThread {
		switch k.Code {
		case tea.KeyEnter:
			m.controller.SetRenameDraft(strings.TrimSpace(m.input.Value()))
			if err := m.controller.Confirm(); err != nil {
				m.logger.Warn("renaming thread", "error", err)
			}
			m.input.Reset()
			m.input.Placeholder = "Ask about your data..."
			m.rebuildViewportContent()
			return m, nil
		case tea.KeyEscape:
			m.controller.Dismiss()
			m.input.Reset()
			m.input.Placeholder = "Ask about your data..."
			m.rebuildViewportContent()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch k.Code {
	case 'y', tea.KeyEnter:
		if err := m.controller.Confirm(); err != nil {
			m.logger.Warn("applying confirmation", "error", err)
		}
		m.clampSelection()
		m.surface.Unmount()
	case 'n', tea.KeyEscape:
		m.controller.Dismiss()
	}
	m.rebuildViewportContent()
	return m, nil
}

func (m *Model) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within 1 second = quit
	if now.Sub(m.lastCtrlC) < time.Second {
		return m, tea.Quit
	}
	m.lastCtrlC = now

	if m.running() {
		m.controller.CancelRun()
		m.runEvents = nil
		m.rebuildViewportContent()
		return m, nil
	}

	m.input.Reset()
	return m, nil
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}

	var thread *store.Thread
	if t, ok := m.controller.ActiveThread(); ok {
		thread = &t
	}

	ctx, token := m.controller.BeginRun(query)
	m.runToken = token
	m.runEvents = nil
	m.input.Reset()
	m.rebuildViewportContent()

	return m, tea.Batch(
		m.spinner.Tick,
		m.startRun(ctx, token, query, thread),
	)
}

// stagePin stages pinning the selected chart, or unpinning it when the
// pinned view is showing.
func (m *Model) stagePin() {
	artifact, ok := m.selectedArtifact()
	if !ok {
		return
	}
	if m.controller.View() == session.ViewPinned {
		m.controller.RequestUnpin(artifact)
	} else {
		m.controller.RequestPin(artifact)
	}
	m.rebuildViewportContent()
}

func (m *Model) stageRename() {
	thread, ok := m.controller.ActiveThread()
	if !ok {
		return
	}
	m.controller.RequestRenameThread(thread.ID)
	m.input.SetValue(thread.Title)
	m.input.CursorEnd()
	m.rebuildViewportContent()
}

func (m *Model) stageDeleteThread() {
	thread, ok := m.controller.ActiveThread()
	if !ok {
		return
	}
	m.controller.RequestDeleteThread(thread.ID)
	m.rebuildViewportContent()
}

// cycleThread activates the next/previous thread in display order.
func (m *Model) cycleThread(delta int) {
	threads := m.controller.Threads()
	if len(threads) == 0 {
		return
	}

	current := 0
	if active, ok := m.controller.ActiveThread(); ok {
		for i, t := range threads {
			if t.ID == active.ID {
				current = i
				break
			}
		}
	}

	next := (current + delta + len(threads)) % len(threads)
	if err := m.controller.SelectThread(threads[next].ID); err != nil {
		m.logger.Warn("selecting thread", "error", err)
		return
	}
	m.selected = 0
	m.surface.Unmount()
	m.rebuildViewportContent()
}

// selectedArtifact returns the chart under the selection cursor.
func (m *Model) selectedArtifact() (store.ChartArtifact, bool) {
	var charts []store.ChartArtifact
	if m.controller.View() == session.ViewPinned {
		charts = m.controller.PinnedCharts()
	} else if thread, ok := m.controller.ActiveThread(); ok {
		charts = thread.Charts
	}

	if m.selected < 0 || m.selected >= len(charts) {
		return store.ChartArtifact{}, false
	}
	return charts[m.selected], true
}
