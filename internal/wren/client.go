package wren

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to the remote ask/chart service.
//
// Client is safe for concurrent use; it carries no mutable state beyond the
// underlying *http.Client.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger

	// Poll pacing; tests shrink these.
	pollInterval time.Duration
	pollDeadline time.Duration
}

// New creates a Client for the service at baseURL (no trailing slash).
// A nil logger falls back to slog.Default().
func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpc:        &http.Client{},
		logger:       logger,
		pollInterval: DefaultPollInterval,
		pollDeadline: DefaultPollDeadline,
	}
}

// SubmitAsk starts an ask job and returns its job id.
func (c *Client) SubmitAsk(ctx context.Context, req AskRequest) (string, error) {
	body := askRequestBody{
		RequestFrom: requestFrom,
		Query:       req.Query,
		MdlHash:     req.MdlHash,
		ThreadID:    req.ThreadID,
		Histories:   req.Histories,
	}
	return c.submit(ctx, "/v1/asks", body)
}

// AwaitAsk polls an ask job until it reaches a terminal state.
func (c *Client) AwaitAsk(ctx context.Context, jobID string) (*AskResult, error) {
	path := fmt.Sprintf("/v1/asks/%s/result", jobID)

	result, outcome, err := pollUntil(ctx, c.pollInterval, c.pollDeadline,
		func(ctx context.Context) (*AskResult, bool, error) {
			var res AskResult
			if err := c.getJSON(ctx, path, &res); err != nil {
				return nil, false, err
			}
			switch res.Status {
			case StatusFinished:
				return &res, true, nil
			case StatusFailed, StatusStopped:
				return nil, false, &JobError{
					Job:     "ask",
					Status:  res.Status,
					Message: errorMessage(res.Error, "the ask job did not complete"),
				}
			default:
				return nil, false, nil
			}
		})

	c.logger.Debug("ask job settled", "job_id", jobID, "outcome", outcome.String())
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitChart starts a chart job and returns its job id.
func (c *Client) SubmitChart(ctx context.Context, req ChartRequest) (string, error) {
	body := chartRequestBody{
		RequestFrom:    requestFrom,
		Query:          req.Query,
		SQL:            req.SQL,
		RemoveData:     false,
		Configurations: chartConfigurations{Language: req.Language},
		ThreadID:       req.ThreadID,
	}
	return c.submit(ctx, "/v1/charts", body)
}

// AwaitChart polls a chart job until it reaches a terminal state.
func (c *Client) AwaitChart(ctx context.Context, jobID string) (*ChartResult, error) {
	path := fmt.Sprintf("/v1/charts/%s", jobID)

	result, outcome, err := pollUntil(ctx, c.pollInterval, c.pollDeadline,
		func(ctx context.Context) (*ChartResult, bool, error) {
			var res ChartResult
			if err := c.getJSON(ctx, path, &res); err != nil {
				return nil, false, err
			}
			switch res.Status {
			case StatusFinished:
				return &res, true, nil
			case StatusFailed, StatusStopped:
				return nil, false, &JobError{
					Job:     "chart",
					Status:  res.Status,
					Message: errorMessage(res.Error, "the chart job did not complete"),
				}
			default:
				return nil, false, nil
			}
		})

	c.logger.Debug("chart job settled", "job_id", jobID, "outcome", outcome.String())
	if err != nil {
		return nil, err
	}
	return result, nil
}

// submit posts a job request and extracts the job id.
func (c *Client) submit(ctx context.Context, path string, body any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var res submitResponse
	if err := c.do(req, &res); err != nil {
		return "", fmt.Errorf("submitting job: %w", err)
	}
	if res.QueryID == "" {
		return "", ErrMissingJobID
	}

	c.logger.Debug("submitted job", "path", path, "job_id", res.QueryID)
	return res.QueryID, nil
}

// getJSON issues a GET and decodes a JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, out)
}

// do sends the request, enforces the 2xx rule, and decodes the body.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		// Surface cancellation as the context error so callers can
		// recognize it with errors.Is.
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
