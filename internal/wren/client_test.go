package wren

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/askviz/askviz/internal/log"
)

// newTestClient points a Client at the given server with fast polling.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c := New(srv.URL, log.NewNop())
	c.pollInterval = time.Millisecond
	c.pollDeadline = 500 * time.Millisecond
	return c
}

func TestSubmitAsk(t *testing.T) {
	var gotBody askRequestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/asks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"query_id": "job-1"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	id, err := c.SubmitAsk(context.Background(), AskRequest{
		Query:    "total sales by region",
		MdlHash:  "hash",
		ThreadID: "t-1",
		Histories: []HistoryEntry{
			{Question: "q1", SQL: "SELECT 1"},
		},
	})
	if err != nil {
		t.Fatalf("SubmitAsk: %v", err)
	}
	if id != "job-1" {
		t.Errorf("job id = %q", id)
	}
	if gotBody.RequestFrom != "ui" {
		t.Errorf("request_from = %q, want ui", gotBody.RequestFrom)
	}
	if gotBody.MdlHash != "hash" || gotBody.ThreadID != "t-1" {
		t.Errorf("body = %+v", gotBody)
	}
	if len(gotBody.Histories) != 1 || gotBody.Histories[0].SQL != "SELECT 1" {
		t.Errorf("histories = %+v", gotBody.Histories)
	}
}

func TestSubmitAskMissingJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).SubmitAsk(context.Background(), AskRequest{Query: "q"})
	if !errors.Is(err, ErrMissingJobID) {
		t.Fatalf("err = %v, want ErrMissingJobID", err)
	}
}

func TestSubmitNon2xxUsesBodyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "deployment not found", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).SubmitAsk(context.Background(), AskRequest{Query: "q"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "deployment not found" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestSubmitNon2xxEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).SubmitAsk(context.Background(), AskRequest{Query: "q"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Message != "Request failed (502)" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestAwaitAskFinishesAfterPolls(t *testing.T) {
	var polls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/asks/job-1/result" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if polls.Add(1) < 3 {
			json.NewEncoder(w).Encode(map[string]any{"status": "understanding"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status":   "finished",
			"response": []map[string]string{{"sql": "SELECT region FROM sales"}},
		})
	}))
	defer srv.Close()

	res, err := newTestClient(t, srv).AwaitAsk(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("AwaitAsk: %v", err)
	}
	if len(res.Response) != 1 || res.Response[0].SQL != "SELECT region FROM sales" {
		t.Errorf("response = %+v", res.Response)
	}
	if polls.Load() != 3 {
		t.Errorf("polls = %d, want 3", polls.Load())
	}
}

func TestAwaitAskFailedCarriesServiceMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "failed",
			"error":  map[string]string{"message": "model timeout"},
		})
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).AwaitAsk(context.Background(), "job-1")
	var jobErr *JobError
	if !errors.As(err, &jobErr) {
		t.Fatalf("err = %v, want JobError", err)
	}
	if jobErr.Message != "model timeout" || jobErr.Status != StatusFailed {
		t.Errorf("jobErr = %+v", jobErr)
	}
}

func TestAwaitAskStoppedGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "stopped"})
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).AwaitAsk(context.Background(), "job-1")
	var jobErr *JobError
	if !errors.As(err, &jobErr) {
		t.Fatalf("err = %v, want JobError", err)
	}
	if jobErr.Message == "" {
		t.Error("expected a generic fallback message")
	}
}

func TestAwaitAskTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "generating"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	c.pollDeadline = 20 * time.Millisecond

	_, err := c.AwaitAsk(context.Background(), "job-1")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestAwaitAskCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "generating"})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := newTestClient(t, srv).AwaitAsk(ctx, "job-1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestChartRoundTrip(t *testing.T) {
	var gotBody chartRequestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/charts":
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Errorf("decoding body: %v", err)
			}
			json.NewEncoder(w).Encode(map[string]string{"query_id": "chart-1"})
		case "/v1/charts/chart-1":
			json.NewEncoder(w).Encode(map[string]any{
				"status": "finished",
				"response": map[string]any{
					"chart_schema": map[string]any{"title": "Sales by Region", "mark": "bar"},
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	id, err := c.SubmitChart(context.Background(), ChartRequest{
		Query:    "total sales by region",
		SQL:      "SELECT region, SUM(sales) FROM sales GROUP BY region",
		Language: "English",
		ThreadID: "t-1",
	})
	if err != nil {
		t.Fatalf("SubmitChart: %v", err)
	}

	res, err := c.AwaitChart(context.Background(), id)
	if err != nil {
		t.Fatalf("AwaitChart: %v", err)
	}

	if gotBody.RemoveData {
		t.Error("remove_data_from_chart_schema must be false")
	}
	if gotBody.Configurations.Language != "English" {
		t.Errorf("language = %q", gotBody.Configurations.Language)
	}

	var schema map[string]any
	if err := json.Unmarshal(res.Schema(), &schema); err != nil {
		t.Fatalf("decoding schema: %v", err)
	}
	if schema["title"] != "Sales by Region" {
		t.Errorf("schema = %v", schema)
	}
}

func TestChartResultSchemaNil(t *testing.T) {
	var r *ChartResult
	if r.Schema() != nil {
		t.Error("nil result must yield nil schema")
	}
	if (&ChartResult{}).Schema() != nil {
		t.Error("missing response must yield nil schema")
	}
}
