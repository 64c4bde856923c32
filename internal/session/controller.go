package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/askviz/askviz/internal/store"
	"github.com/askviz/askviz/internal/wren"
)

// Status is the pipeline status shown to the user.
type Status int

const (
	StatusIdle Status = iota
	StatusAsking
	StatusCharting
	StatusDone
	StatusError
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAsking:
		return "asking"
	case StatusCharting:
		return "charting"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// View selects which collection the front end displays.
type View int

const (
	ViewCharts View = iota
	ViewPinned
)

// ConfirmKind identifies a staged, confirmation-gated mutation.
type ConfirmKind int

const (
	ConfirmPin ConfirmKind = iota
	ConfirmUnpin
	ConfirmDeleteThread
	ConfirmRenameThread
)

// Confirmation is a staged mutation awaiting explicit confirm or dismiss.
// Nothing touches a store until Confirm.
type Confirmation struct {
	Kind     ConfirmKind
	Artifact store.ChartArtifact // pin/unpin target
	ThreadID string              // delete/rename target
	Draft    string              // rename draft value
}

// Controller holds the session state machine and mediates every mutation
// of the thread and pinned stores.
type Controller struct {
	threads *store.ThreadStore
	pinned  *store.PinnedStore
	logger  *slog.Logger

	status Status
	errMsg string
	view   View
	query  string

	cancel   context.CancelFunc
	runToken int

	confirm *Confirmation
}

// NewController creates a Controller over the two stores.
func NewController(threads *store.ThreadStore, pinned *store.PinnedStore, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{threads: threads, pinned: pinned, logger: logger}
}

// Status returns the current pipeline status.
func (c *Controller) Status() Status { return c.status }

// ErrMessage returns the message of the last failed run, valid while the
// status is StatusError.
func (c *Controller) ErrMessage() string { return c.errMsg }

// Query returns the in-flight query text.
func (c *Controller) Query() string { return c.query }

// View returns the current view.
func (c *Controller) View() View { return c.view }

// SetView switches the displayed collection.
func (c *Controller) SetView(v View) { c.view = v }

// ToggleView flips between the charts and pinned views.
func (c *Controller) ToggleView() {
	if c.view == ViewCharts {
		c.view = ViewPinned
	} else {
		c.view = ViewCharts
	}
}

// BeginRun starts a new submission cycle: any in-flight run is cancelled
// first, then the status moves to asking. The returned context governs the
// new run and the token identifies it; completions reported with an older
// token are discarded.
func (c *Controller) BeginRun(query string) (context.Context, int) {
	c.abortInFlight()

	c.runToken++
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.status = StatusAsking
	c.errMsg = ""
	c.query = query
	c.logger.Debug("run started", "token", c.runToken)
	return ctx, c.runToken
}

// SetCharting records that the run identified by token entered its chart
// phase. Stale tokens are ignored.
func (c *Controller) SetCharting(token int) {
	if token != c.runToken || c.status != StatusAsking {
		return
	}
	c.status = StatusCharting
}

// CancelRun aborts the in-flight run, if any, and returns to idle. The
// aborted run's eventual completion is discarded by its stale token.
func (c *Controller) CancelRun() {
	if c.cancel == nil {
		return
	}
	c.abortInFlight()
	c.runToken++
	c.status = StatusIdle
	c.query = ""
}

// FinishRun applies a run's outcome. A stale token means the run was
// superseded or cancelled: the outcome is dropped entirely, successful or
// not. Cancellation errors are swallowed; other errors surface as a
// message with StatusError. On success the artifact joins its thread, a
// freshly created thread becomes active, and the status moves to done.
func (c *Controller) FinishRun(token int, artifact store.ChartArtifact, created bool, err error) {
	if token != c.runToken {
		c.logger.Debug("discarding superseded run", "token", token)
		return
	}
	c.cancel = nil
	c.query = ""

	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.status = StatusIdle
			return
		}
		c.status = StatusError
		c.errMsg = messageOf(err)
		c.logger.Warn("run failed", "error", err)
		return
	}

	c.threads.AppendChart(artifact.ThreadID, artifact)
	if created {
		if err := c.threads.SetActive(artifact.ThreadID); err != nil {
			c.logger.Warn("activating new thread", "error", err)
		}
	}
	c.status = StatusDone
}

// AckDone reverts done back to idle. The front end calls it from its
// 2-second tick.
func (c *Controller) AckDone() {
	if c.status == StatusDone {
		c.status = StatusIdle
	}
}

// DismissError clears an error status back to idle.
func (c *Controller) DismissError() {
	if c.status == StatusError {
		c.status = StatusIdle
		c.errMsg = ""
	}
}

func (c *Controller) abortInFlight() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// messageOf extracts the user-facing message from a run error.
func messageOf(err error) string {
	var jobErr *wren.JobError
	if errors.As(err, &jobErr) {
		return jobErr.Message
	}
	var apiErr *wren.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// Confirmation returns the staged mutation, or nil when none is open.
func (c *Controller) Confirmation() *Confirmation { return c.confirm }

// RequestPin stages pinning an artifact to the dashboard.
func (c *Controller) RequestPin(artifact store.ChartArtifact) {
	c.confirm = &Confirmation{Kind: ConfirmPin, Artifact: artifact}
}

// RequestUnpin stages removing an artifact from the dashboard.
func (c *Controller) RequestUnpin(artifact store.ChartArtifact) {
	c.confirm = &Confirmation{Kind: ConfirmUnpin, Artifact: artifact}
}

// RequestDeleteThread stages deleting a thread and all its charts.
func (c *Controller) RequestDeleteThread(threadID string) {
	c.confirm = &Confirmation{Kind: ConfirmDeleteThread, ThreadID: threadID}
}

// RequestRenameThread stages renaming a thread, seeding the draft with its
// current title.
func (c *Controller) RequestRenameThread(threadID string) {
	draft := ""
	if t, ok := c.threads.Thread(threadID); ok {
		draft = t.Title
	}
	c.confirm = &Confirmation{Kind: ConfirmRenameThread, ThreadID: threadID, Draft: draft}
}

// SetRenameDraft updates the staged rename's draft value.
func (c *Controller) SetRenameDraft(draft string) {
	if c.confirm != nil && c.confirm.Kind == ConfirmRenameThread {
		c.confirm.Draft = draft
	}
}

// Confirm applies the staged mutation and closes the confirmation.
func (c *Controller) Confirm() error {
	if c.confirm == nil {
		return nil
	}
	staged := c.confirm
	c.confirm = nil

	switch staged.Kind {
	case ConfirmPin:
		c.pinned.Pin(staged.Artifact)
	case ConfirmUnpin:
		c.pinned.Unpin(staged.Artifact.ID)
	case ConfirmDeleteThread:
		return c.threads.Delete(staged.ThreadID)
	case ConfirmRenameThread:
		return c.threads.Rename(staged.ThreadID, staged.Draft)
	}
	return nil
}

// Dismiss drops the staged mutation without applying it.
func (c *Controller) Dismiss() { c.confirm = nil }

// Threads exposes the thread collection in display order.
func (c *Controller) Threads() []store.Thread { return c.threads.Threads() }

// ActiveThread returns the active thread.
func (c *Controller) ActiveThread() (store.Thread, bool) { return c.threads.Active() }

// SelectThread activates a thread.
func (c *Controller) SelectThread(id string) error { return c.threads.SetActive(id) }

// NewThread creates an empty placeholder thread.
func (c *Controller) NewThread() store.Thread { return c.threads.CreateEmpty() }

// SetThreadPinned pins or unpins a thread in the sidebar ordering.
func (c *Controller) SetThreadPinned(id string, pinned bool) error {
	return c.threads.SetPinned(id, pinned)
}

// PinnedCharts exposes the dashboard collection in pin order.
func (c *Controller) PinnedCharts() []store.ChartArtifact { return c.pinned.Charts() }

// IsPinned reports whether an artifact id is on the dashboard.
func (c *Controller) IsPinned(id string) bool { return c.pinned.Contains(id) }
