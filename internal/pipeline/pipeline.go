package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/askviz/askviz/internal/chartspec"
	"github.com/askviz/askviz/internal/store"
	"github.com/askviz/askviz/internal/wren"
)

// Sentinel errors for runs that completed a job but got an unusable
// payload back. Check with errors.Is().
var (
	// ErrMissingSQL indicates the ask job finished without producing SQL.
	ErrMissingSQL = errors.New("the question produced no SQL")

	// ErrMissingChart indicates the chart job finished without producing a
	// specification document.
	ErrMissingChart = errors.New("the query produced no chart")
)

// Phase identifies which job of a run is currently in flight.
type Phase int

const (
	// PhaseAsking covers the ask job, submission through terminal status.
	PhaseAsking Phase = iota
	// PhaseCharting covers the chart job.
	PhaseCharting
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseAsking:
		return "asking"
	case PhaseCharting:
		return "charting"
	default:
		return "unknown"
	}
}

// JobClient is the remote surface the pipeline needs. *wren.Client
// implements it.
type JobClient interface {
	SubmitAsk(ctx context.Context, req wren.AskRequest) (string, error)
	AwaitAsk(ctx context.Context, jobID string) (*wren.AskResult, error)
	SubmitChart(ctx context.Context, req wren.ChartRequest) (string, error)
	AwaitChart(ctx context.Context, jobID string) (*wren.ChartResult, error)
}

// Runner executes ask-then-chart runs against a deployment.
type Runner struct {
	jobs     JobClient
	mdlHash  string
	language string
	logger   *slog.Logger
}

// New creates a Runner. mdlHash identifies the deployed semantic model;
// language controls the chart job's label language.
func New(jobs JobClient, mdlHash, language string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{jobs: jobs, mdlHash: mdlHash, language: language, logger: logger}
}

// Run asks a question in the context of thread and returns the resulting
// chart artifact. A nil thread starts a fresh conversation: the artifact
// carries a newly generated thread id and created reports true.
//
// notify, when non-nil, is called as each phase begins. Errors from either
// job come back unwrapped where they are sentinels (context.Canceled,
// wren.ErrTimeout) so callers can classify them with errors.Is.
func (r *Runner) Run(ctx context.Context, query string, thread *store.Thread, notify func(Phase)) (store.ChartArtifact, bool, error) {
	threadID := ""
	created := false
	var histories []wren.HistoryEntry
	if thread != nil {
		threadID = thread.ID
		histories = historyOf(thread)
	} else {
		threadID = store.NewID()
		created = true
	}

	signal(notify, PhaseAsking)

	askID, err := r.jobs.SubmitAsk(ctx, wren.AskRequest{
		Query:     query,
		MdlHash:   r.mdlHash,
		ThreadID:  threadID,
		Histories: histories,
	})
	if err != nil {
		return store.ChartArtifact{}, false, err
	}
	r.logger.Debug("ask submitted", "job_id", askID, "thread_id", threadID)

	askRes, err := r.jobs.AwaitAsk(ctx, askID)
	if err != nil {
		return store.ChartArtifact{}, false, err
	}

	sql := firstSQL(askRes)
	if sql == "" {
		return store.ChartArtifact{}, false, ErrMissingSQL
	}

	signal(notify, PhaseCharting)

	chartID, err := r.jobs.SubmitChart(ctx, wren.ChartRequest{
		Query:    query,
		SQL:      sql,
		Language: r.language,
		ThreadID: threadID,
	})
	if err != nil {
		return store.ChartArtifact{}, false, err
	}
	r.logger.Debug("chart submitted", "job_id", chartID, "thread_id", threadID)

	chartRes, err := r.jobs.AwaitChart(ctx, chartID)
	if err != nil {
		return store.ChartArtifact{}, false, err
	}

	doc, err := chartspec.Decode(chartRes.Schema())
	if err != nil {
		if errors.Is(err, chartspec.ErrEmptySchema) {
			return store.ChartArtifact{}, false, ErrMissingChart
		}
		return store.ChartArtifact{}, false, fmt.Errorf("%w: %v", ErrMissingChart, err)
	}

	artifact := store.ChartArtifact{
		ID:        store.NewID(),
		ThreadID:  threadID,
		Query:     query,
		SQL:       sql,
		Title:     chartspec.Title(doc, query),
		Spec:      doc,
		CreatedAt: time.Now(),
	}
	return artifact, created, nil
}

// historyOf collects the thread's prior question/SQL pairs, oldest first,
// skipping artifacts without SQL.
func historyOf(thread *store.Thread) []wren.HistoryEntry {
	var out []wren.HistoryEntry
	for _, a := range thread.Charts {
		if a.SQL == "" {
			continue
		}
		out = append(out, wren.HistoryEntry{Question: a.Query, SQL: a.SQL})
	}
	return out
}

// firstSQL returns the SQL of the leading response candidate. Only the
// first element counts; an empty list or an empty leading SQL yields "".
func firstSQL(res *wren.AskResult) string {
	if len(res.Response) == 0 {
		return ""
	}
	return res.Response[0].SQL
}

func signal(notify func(Phase), p Phase) {
	if notify != nil {
		notify(p)
	}
}
