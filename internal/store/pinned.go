package store

import (
	"fmt"
	"log/slog"
)

// PinnedStore owns the dashboard collection: a flat, order-preserving set
// of chart artifacts keyed by id, with a lifecycle independent from the
// threads the artifacts came from.
type PinnedStore struct {
	storage Storage
	logger  *slog.Logger

	charts []ChartArtifact
}

// NewPinnedStore loads the pinned-chart collection.
func NewPinnedStore(storage Storage, logger *slog.Logger) (*PinnedStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &PinnedStore{storage: storage, logger: logger}
	if _, err := storage.Load(KeyPinnedCharts, &s.charts); err != nil {
		return nil, fmt.Errorf("loading pinned charts: %w", err)
	}
	if s.charts == nil {
		s.charts = []ChartArtifact{}
	}
	return s, nil
}

// Charts returns the pinned artifacts in pin order.
func (s *PinnedStore) Charts() []ChartArtifact {
	return append([]ChartArtifact(nil), s.charts...)
}

// Contains reports whether an artifact with the given id is pinned.
func (s *PinnedStore) Contains(id string) bool {
	return s.indexOf(id) >= 0
}

// Pin copies the artifact into the collection. Re-pinning an already
// present id is a no-op; the copy is deep, so the pinned artifact is
// independent of its thread-scoped original.
func (s *PinnedStore) Pin(artifact ChartArtifact) {
	if s.indexOf(artifact.ID) >= 0 {
		return
	}
	s.charts = append(s.charts, artifact.Clone())
	s.persist()
}

// Unpin removes the artifact with the given id; absent ids are a no-op.
func (s *PinnedStore) Unpin(id string) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.charts = append(s.charts[:i], s.charts[i+1:]...)
	s.persist()
}

func (s *PinnedStore) persist() {
	if err := s.storage.Save(KeyPinnedCharts, s.charts); err != nil {
		s.logger.Error("persisting pinned charts", "error", err)
	}
}

func (s *PinnedStore) indexOf(id string) int {
	for i := range s.charts {
		if s.charts[i].ID == id {
			return i
		}
	}
	return -1
}
