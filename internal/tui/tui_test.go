package tui

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/goleak"

	"github.com/askviz/askviz/internal/log"
	"github.com/askviz/askviz/internal/pipeline"
	"github.com/askviz/askviz/internal/session"
	"github.com/askviz/askviz/internal/store"
	"github.com/askviz/askviz/internal/wren"
)

// stubJobs is a minimal pipeline.JobClient that always succeeds.
type stubJobs struct{}

func (stubJobs) SubmitAsk(context.Context, wren.AskRequest) (string, error) { return "ask-1", nil }

func (stubJobs) AwaitAsk(context.Context, string) (*wren.AskResult, error) {
	return &wren.AskResult{
		Status:   wren.StatusFinished,
		Response: []wren.AskCandidate{{SQL: "SELECT 1"}},
	}, nil
}

func (stubJobs) SubmitChart(context.Context, wren.ChartRequest) (string, error) {
	return "chart-1", nil
}

func (stubJobs) AwaitChart(context.Context, string) (*wren.ChartResult, error) {
	var res wren.ChartResult
	res.Status = wren.StatusFinished
	return &res, nil
}

func newTestModel(t *testing.T) *Model {
	t.Helper()

	storage := store.NewMemoryStorage()
	threads, err := store.NewThreadStore(storage, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	pinned, err := store.NewPinnedStore(storage, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	controller := session.NewController(threads, pinned, log.NewNop())
	runner := pipeline.New(stubJobs{}, "hash-1", "English", log.NewNop())

	m, err := New(controller, runner, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func artifact(id, threadID, query string) store.ChartArtifact {
	return store.ChartArtifact{ID: id, ThreadID: threadID, Query: query, Title: query}
}

func TestNewErrorOnNilDependencies(t *testing.T) {
	if _, err := New(nil, nil, log.NewNop()); err == nil {
		t.Error("expected error for nil controller")
	}
}

func TestInitReturnsCommand(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newTestModel(t)
	if m.Init() == nil {
		t.Error("Init should return a command (blink + spinner tick)")
	}
}

func TestSubmitEmptyInputIsNoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newTestModel(t)
	_, cmd := m.handleSubmit()
	if cmd != nil {
		t.Error("empty input started a run")
	}
	if m.controller.Status() != session.StatusIdle {
		t.Errorf("status = %v", m.controller.Status())
	}
}

func TestSubmitStartsRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newTestModel(t)
	m.input.SetValue("total sales by region")

	_, cmd := m.handleSubmit()
	if cmd == nil {
		t.Fatal("no command returned")
	}
	if m.controller.Status() != session.StatusAsking {
		t.Errorf("status = %v, want asking", m.controller.Status())
	}
	if m.input.Value() != "" {
		t.Error("input not cleared")
	}

	// The controller owns the in-flight context; cancel to keep goleak
	// clean without waiting for the stub run.
	m.controller.CancelRun()
}

func TestRunDoneUpdatesStores(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newTestModel(t)
	_, token := m.controller.BeginRun("total sales by region")
	m.runToken = token

	a := artifact("c-1", "t-1", "total sales by region")
	_, cmd := m.Update(runDoneMsg{token: token, artifact: a, created: true})

	if m.controller.Status() != session.StatusDone {
		t.Errorf("status = %v, want done", m.controller.Status())
	}
	active, ok := m.controller.ActiveThread()
	if !ok || len(active.Charts) != 1 {
		t.Fatalf("active thread = %+v", active)
	}
	if cmd == nil {
		t.Error("done revert tick not scheduled")
	}
}

func TestRunErrorShowsMessage(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newTestModel(t)
	_, token := m.controller.BeginRun("q")
	m.runToken = token

	jobErr := &wren.JobError{Job: "ask", Status: wren.StatusFailed, Message: "model timeout"}
	m.Update(runErrorMsg{token: token, err: jobErr})

	if m.controller.Status() != session.StatusError {
		t.Errorf("status = %v, want error", m.controller.Status())
	}
	if m.controller.ErrMessage() != "model timeout" {
		t.Errorf("message = %q", m.controller.ErrMessage())
	}
}

func TestDoneTickRevertsToIdle(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newTestModel(t)
	_, token := m.controller.BeginRun("q")
	m.runToken = token
	m.Update(runDoneMsg{token: token, artifact: artifact("c-1", "t-1", "q"), created: true})

	m.Update(doneTickMsg{})
	if m.controller.Status() != session.StatusIdle {
		t.Errorf("status = %v, want idle", m.controller.Status())
	}
}

func TestStaleRunMessagesIgnored(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newTestModel(t)
	_, stale := m.controller.BeginRun("first")
	_, live := m.controller.BeginRun("second")
	m.runToken = live

	m.Update(runDoneMsg{token: stale, artifact: artifact("c-old", "t-old", "first"), created: true})

	if len(m.controller.Threads()) != 0 {
		t.Error("stale completion reached the stores")
	}
	if m.controller.Status() != session.StatusAsking {
		t.Errorf("status = %v, want asking for the live run", m.controller.Status())
	}
	m.controller.CancelRun()
}

func TestStalePhaseDoesNotHijackLiveRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newTestModel(t)
	_, stale := m.controller.BeginRun("first")
	_, live := m.controller.BeginRun("second")
	m.runToken = live

	events := make(chan runEvent, runEventBuffer)
	_, listen := m.Update(runStartedMsg{token: live, events: events})
	if listen == nil {
		t.Fatal("no listener armed for the live run")
	}

	// A leftover phase message from the superseded run must not re-arm a
	// listener on the live run's channel under the stale token; that
	// listener would consume the live terminal event and FinishRun would
	// discard it.
	_, cmd := m.Update(runPhaseMsg{token: stale, phase: pipeline.PhaseCharting})
	if cmd != nil {
		t.Fatal("stale phase message re-armed a listener")
	}

	events <- runEvent{artifact: artifact("c-new", "t-new", "second"), created: true, done: true}
	close(events)

	done, ok := listen().(runDoneMsg)
	if !ok {
		t.Fatal("live listener did not see the terminal event")
	}
	if done.token != live {
		t.Fatalf("terminal event tagged token %d, want %d", done.token, live)
	}

	m.Update(done)
	if len(m.controller.Threads()) != 1 {
		t.Error("live run's artifact never reached the stores")
	}
	if m.controller.Status() != session.StatusDone {
		t.Errorf("status = %v, want done", m.controller.Status())
	}
}

func TestPinConfirmationFlow(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newTestModel(t)
	_, token := m.controller.BeginRun("q")
	m.runToken = token
	m.Update(runDoneMsg{token: token, artifact: artifact("c-1", "t-1", "q"), created: true})

	m.selected = 0
	m.stagePin()
	if m.controller.Confirmation() == nil {
		t.Fatal("no confirmation staged")
	}
	if m.controller.IsPinned("c-1") {
		t.Fatal("staging mutated the pinned store")
	}

	m.handleConfirmationKey(keyPress('y'), m.controller.Confirmation())
	if !m.controller.IsPinned("c-1") {
		t.Error("confirmed pin not applied")
	}
}

func TestStartRunDeliversEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newTestModel(t)
	ctx, token := m.controller.BeginRun("q")
	m.runToken = token

	msg := m.startRun(ctx, token, "q", nil)()
	started, ok := msg.(runStartedMsg)
	if !ok {
		t.Fatalf("msg = %T, want runStartedMsg", msg)
	}

	// Drain events until the terminal one; the stub returns an empty
	// chart schema, so the run must end in an error event.
	var final tea.Msg
	for {
		final = listenForRun(token, started.events)()
		if final == nil {
			t.Fatal("events channel closed without a terminal event")
		}
		if _, isPhase := final.(runPhaseMsg); !isPhase {
			break
		}
	}
	if _, isErr := final.(runErrorMsg); !isErr {
		t.Errorf("final event = %T, want runErrorMsg (empty schema)", final)
	}
}

// keyPress builds a plain rune key press message.
func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Code: r, Text: string(r)})
}
