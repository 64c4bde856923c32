package wren

import (
	"errors"
	"fmt"
)

// ErrTimeout indicates a job did not reach a terminal state before the
// wall-clock deadline, regardless of what the server last reported.
var ErrTimeout = errors.New("job timed out")

// ErrMissingJobID indicates a submit response that did not carry a job
// identifier; the job could not be started.
var ErrMissingJobID = errors.New("service response missing job id")

// APIError is a non-2xx response from the service. Message holds the
// response body text, or a generic "Request failed (<status>)" when the
// body is empty.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// JobError indicates a job reached a failed or stopped terminal state.
// Message carries the service-provided error message when present.
type JobError struct {
	Job     string // "ask" | "chart"
	Status  string // "failed" | "stopped"
	Message string
}

func (e *JobError) Error() string {
	return e.Message
}

// newAPIError builds an APIError from a response status and body.
func newAPIError(statusCode int, body string) *APIError {
	msg := body
	if msg == "" {
		msg = fmt.Sprintf("Request failed (%d)", statusCode)
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}
