// Package tui provides the Bubble Tea terminal interface for askviz.
package tui

import (
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/askviz/askviz/internal/log"
	"github.com/askviz/askviz/internal/pipeline"
	"github.com/askviz/askviz/internal/render"
	"github.com/askviz/askviz/internal/session"
)

// doneLinger is how long the "done" status stays on screen before
// reverting to idle.
const doneLinger = 2 * time.Second

// Layout constants for viewport height calculation.
const (
	separatorLines = 2
	helpLines      = 1
	promptLines    = 1
	minViewport    = 3
)

// Model is the Bubble Tea model for the askviz interface.
type Model struct {
	// Input (textarea kept single-line; doubles as the rename draft
	// editor while a rename confirmation is open)
	input textarea.Model

	// Output
	spinner  spinner.Model
	viewport viewport.Model
	viewBuf  strings.Builder

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// Selection index into the currently displayed chart collection.
	selected int

	// Run plumbing. The controller owns cancellation and run tokens;
	// the model only ferries events from the pipeline goroutine.
	runEvents <-chan runEvent
	runToken  int

	lastCtrlC time.Time

	// Dependencies
	controller *session.Controller
	runner     *pipeline.Runner
	surface    *render.Surface
	logger     log.Logger

	// Dimensions
	width  int
	height int

	styles Styles
}

// New creates a Model over the session controller and pipeline runner.
func New(controller *session.Controller, runner *pipeline.Runner, logger log.Logger) (*Model, error) {
	if controller == nil {
		return nil, errors.New("tui.New: controller is required")
	}
	if runner == nil {
		return nil, errors.New("tui.New: runner is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "Ask about your data..."
	ta.SetHeight(1)
	ta.SetWidth(120)
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{Focused: cleanStyle, Blurred: cleanStyle})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{} // keys are routed explicitly in handleKey

	m := &Model{
		controller: controller,
		runner:     runner,
		logger:     logger,
		input:      ta,
		spinner:    sp,
		viewport:   vp,
		help:       help.New(),
		keys:       newKeyMap(),
		styles:     DefaultStyles(),
		width:      80,
	}
	m.surface = render.NewSurface(80, func(artifactID string, err error) {
		logger.Warn("chart rendering failed", "artifact_id", artifactID, "error", err)
	})
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.rebuildViewportContent()
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.input.Focus(),
	)
}
