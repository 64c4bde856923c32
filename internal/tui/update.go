package tui

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/askviz/askviz/internal/pipeline"
	"github.com/askviz/askviz/internal/session"
	"github.com/askviz/askviz/internal/store"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		inputHeight := m.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(vpHeight)
		m.input.SetWidth(msg.Width - 4)
		m.help.SetWidth(msg.Width)
		m.surface.SetWidth(msg.Width)

		m.rebuildViewportContent()
		return m, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.running() {
			m.rebuildViewportContent()
		}
		return m, cmd

	case runStartedMsg:
		if msg.token != m.runToken {
			// A newer submission replaced this run before its command
			// even returned; drain nothing, just ignore it.
			return m, nil
		}
		m.runEvents = msg.events
		return m, listenForRun(msg.token, msg.events)

	case runPhaseMsg:
		if msg.token != m.runToken {
			// A listener from a superseded run must not re-arm on the
			// live run's channel, or it would steal the terminal event
			// and deliver it under the stale token.
			return m, nil
		}
		if msg.phase == pipeline.PhaseCharting {
			m.controller.SetCharting(msg.token)
		}
		m.rebuildViewportContent()
		return m, listenForRun(msg.token, m.runEvents)

	case runDoneMsg:
		m.controller.FinishRun(msg.token, msg.artifact, msg.created, nil)
		if msg.token == m.runToken {
			m.runEvents = nil
			// Show the fresh chart immediately.
			m.selected = m.chartCount() - 1
		}
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, doneTick()

	case runErrorMsg:
		m.controller.FinishRun(msg.token, store.ChartArtifact{}, false, msg.err)
		if msg.token == m.runToken {
			m.runEvents = nil
		}
		m.rebuildViewportContent()
		return m, m.input.Focus()

	case doneTickMsg:
		m.controller.AckDone()
		m.rebuildViewportContent()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// running reports whether a pipeline run is in flight.
func (m *Model) running() bool {
	s := m.controller.Status()
	return s == session.StatusAsking || s == session.StatusCharting
}

// chartCount returns the size of the currently displayed collection.
func (m *Model) chartCount() int {
	if m.controller.View() == session.ViewPinned {
		return len(m.controller.PinnedCharts())
	}
	if thread, ok := m.controller.ActiveThread(); ok {
		return len(thread.Charts)
	}
	return 0
}

// clampSelection keeps the selection inside the displayed collection.
func (m *Model) clampSelection() {
	if n := m.chartCount(); m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}
