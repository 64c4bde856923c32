package tui

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/askviz/askviz/internal/pipeline"
	"github.com/askviz/askviz/internal/store"
)

// runEventBuffer covers the two phase notifications plus the terminal
// event without ever blocking the pipeline goroutine.
const runEventBuffer = 4

// runEvent is a discriminated union for all pipeline run events. A single
// channel with a union type keeps the listen command to one select.
type runEvent struct {
	// Exactly one of these variants is set per event
	phase    pipeline.Phase
	phaseSet bool

	artifact store.ChartArtifact
	created  bool
	done     bool

	err error
}

// Run message types for Bubble Tea. Every message carries the run token
// handed out by the controller so superseded runs stay inert.
type runStartedMsg struct {
	token  int
	events <-chan runEvent
}

type runPhaseMsg struct {
	token int
	phase pipeline.Phase
}

type runDoneMsg struct {
	token    int
	artifact store.ChartArtifact
	created  bool
}

type runErrorMsg struct {
	token int
	err   error
}

// doneTickMsg reverts the done status back to idle.
type doneTickMsg struct{}

// startRun creates a command that launches one pipeline run.
//
// Goroutine lifecycle: the spawned goroutine exits when the run returns,
// successfully or not; channel closure signals completion. Cancellation
// goes through ctx, which the controller aborts when a new submission
// preempts this one.
func (m *Model) startRun(ctx context.Context, token int, query string, thread *store.Thread) tea.Cmd {
	return func() tea.Msg {
		events := make(chan runEvent, runEventBuffer)

		go func() {
			defer close(events)

			artifact, created, err := m.runner.Run(ctx, query, thread, func(p pipeline.Phase) {
				select {
				case events <- runEvent{phase: p, phaseSet: true}:
				case <-ctx.Done():
				}
			})
			if err != nil {
				events <- runEvent{err: err}
				return
			}
			events <- runEvent{artifact: artifact, created: created, done: true}
		}()

		return runStartedMsg{token: token, events: events}
	}
}

// listenForRun creates a command that waits for the next run event.
func listenForRun(token int, events <-chan runEvent) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}

		for {
			event, ok := <-events
			if !ok {
				return nil
			}

			switch {
			case event.err != nil:
				return runErrorMsg{token: token, err: event.err}
			case event.done:
				return runDoneMsg{token: token, artifact: event.artifact, created: event.created}
			case event.phaseSet:
				return runPhaseMsg{token: token, phase: event.phase}
			default:
				continue
			}
		}
	}
}

// doneTick schedules the done→idle reversion.
func doneTick() tea.Cmd {
	return tea.Tick(doneLinger, func(time.Time) tea.Msg {
		return doneTickMsg{}
	})
}
