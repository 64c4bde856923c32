package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/askviz/askviz/internal/chartspec"
)

// PlaceholderTitle names a thread created empty, before its first question
// replaces it.
const PlaceholderTitle = "New thread"

// ChartArtifact is one question/answer/visualization unit. Artifacts are
// immutable once created; a pin copies the artifact, after which the two
// copies live independent lives.
type ChartArtifact struct {
	ID        string             `json:"id"`
	ThreadID  string             `json:"threadId,omitempty"`
	Query     string             `json:"query"`
	SQL       string             `json:"sql,omitempty"`
	Title     string             `json:"title"`
	Spec      chartspec.Document `json:"spec"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Clone returns an independent copy of the artifact, deep-copying the spec
// document.
func (a ChartArtifact) Clone() ChartArtifact {
	a.Spec = a.Spec.Clone()
	return a
}

// Thread is one conversation: an ordered sequence of chart artifacts in
// insertion order.
type Thread struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	CreatedAt time.Time       `json:"createdAt"`
	Pinned    bool            `json:"pinned"`
	Charts    []ChartArtifact `json:"charts"`
}

// UnmarshalJSON tolerates malformed persisted threads: pinned is coerced to
// a boolean, charts to a sequence, and unusable fields fall back to zero
// values rather than failing the whole collection load.
func (t *Thread) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string          `json:"id"`
		Title     string          `json:"title"`
		CreatedAt json.RawMessage `json:"createdAt"`
		Pinned    json.RawMessage `json:"pinned"`
		Charts    json.RawMessage `json:"charts"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding thread: %w", err)
	}

	t.ID = raw.ID
	t.Title = raw.Title

	t.CreatedAt = time.Time{}
	if len(raw.CreatedAt) > 0 {
		var ts time.Time
		if err := json.Unmarshal(raw.CreatedAt, &ts); err == nil {
			t.CreatedAt = ts
		}
	}

	t.Pinned = false
	if len(raw.Pinned) > 0 {
		var pinned bool
		if err := json.Unmarshal(raw.Pinned, &pinned); err == nil {
			t.Pinned = pinned
		}
	}

	t.Charts = []ChartArtifact{}
	if len(raw.Charts) > 0 {
		var charts []ChartArtifact
		if err := json.Unmarshal(raw.Charts, &charts); err == nil && charts != nil {
			t.Charts = charts
		}
	}

	return nil
}

// NewID generates a globally unique identifier for threads and artifacts.
// Falls back to a time-based id if the random source is unavailable.
func NewID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("id-%d", time.Now().UnixNano())
	}
	return id.String()
}
