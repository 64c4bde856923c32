package wren

import "encoding/json"

// Job status values reported by the service. Anything outside the terminal
// three keeps the poll loop going.
const (
	StatusFinished = "finished"
	StatusFailed   = "failed"
	StatusStopped  = "stopped"
)

// requestFrom identifies this client to the service.
const requestFrom = "ui"

// HistoryEntry is one prior question/SQL pair sent as conversational
// context with an ask request.
type HistoryEntry struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
}

// AskRequest describes an ask job submission.
type AskRequest struct {
	Query     string
	MdlHash   string
	ThreadID  string // optional
	Histories []HistoryEntry
}

// ChartRequest describes a chart job submission.
type ChartRequest struct {
	Query    string
	SQL      string
	Language string
	ThreadID string // optional
}

// askRequestBody is the wire form of an ask submission.
type askRequestBody struct {
	RequestFrom string         `json:"request_from"`
	Query       string         `json:"query"`
	MdlHash     string         `json:"mdl_hash"`
	ThreadID    string         `json:"thread_id,omitempty"`
	Histories   []HistoryEntry `json:"histories,omitempty"`
}

// chartRequestBody is the wire form of a chart submission.
type chartRequestBody struct {
	RequestFrom    string              `json:"request_from"`
	Query          string              `json:"query"`
	SQL            string              `json:"sql"`
	RemoveData     bool                `json:"remove_data_from_chart_schema"`
	Configurations chartConfigurations `json:"configurations"`
	ThreadID       string              `json:"thread_id,omitempty"`
}

type chartConfigurations struct {
	Language string `json:"language"`
}

// submitResponse is the wire form of both submit responses.
type submitResponse struct {
	QueryID string `json:"query_id"`
}

// apiErrorBody is the error envelope carried by job results.
type apiErrorBody struct {
	Message string `json:"message"`
}

// AskCandidate is one entry of an ask result's response list.
type AskCandidate struct {
	SQL string `json:"sql"`
}

// AskResult is the terminal payload of a finished ask job.
type AskResult struct {
	Status   string         `json:"status"`
	Response []AskCandidate `json:"response"`
	Error    *apiErrorBody  `json:"error"`
}

// ChartResult is the terminal payload of a finished chart job.
// ChartSchema is kept opaque; callers decode it into their own document
// representation.
type ChartResult struct {
	Status   string        `json:"status"`
	Response *chartPayload `json:"response"`
	Error    *apiErrorBody `json:"error"`
}

type chartPayload struct {
	ChartSchema json.RawMessage `json:"chart_schema"`
}

// Schema returns the raw chart specification document, or nil when the
// result carries none.
func (r *ChartResult) Schema() json.RawMessage {
	if r == nil || r.Response == nil {
		return nil
	}
	return r.Response.ChartSchema
}

// errorMessage returns the service-provided message, or fallback when the
// service gave none.
func errorMessage(e *apiErrorBody, fallback string) string {
	if e != nil && e.Message != "" {
		return e.Message
	}
	return fallback
}
