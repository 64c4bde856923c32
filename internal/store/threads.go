package store

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ThreadStore owns the persisted thread collection and the active-thread
// selection.
//
// Ordering invariant: pinned threads first (pin-to-top insertion order
// preserved among themselves), then unpinned threads newest-created first.
// Every mutation re-runs the reconciliation rule: a vanished active thread
// clears the selection, and an empty selection falls back to the first
// thread in the current order.
type ThreadStore struct {
	storage Storage
	logger  *slog.Logger

	threads []Thread
	active  string
}

// NewThreadStore loads the thread collection, migrating a legacy flat
// chart-history collection into a single thread when no thread collection
// exists yet.
func NewThreadStore(storage Storage, logger *slog.Logger) (*ThreadStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &ThreadStore{storage: storage, logger: logger}

	found, err := storage.Load(KeyThreads, &s.threads)
	if err != nil {
		return nil, fmt.Errorf("loading threads: %w", err)
	}
	if !found {
		if err := s.migrateLegacyHistory(); err != nil {
			return nil, err
		}
	}

	if _, err := storage.Load(KeyActiveThread, &s.active); err != nil {
		// A broken selection document is recoverable; reconciliation
		// repairs it below.
		s.logger.Warn("loading active thread selection", "error", err)
		s.active = ""
	}

	s.reconcile()
	s.persist()
	return s, nil
}

// migrateLegacyHistory synthesizes one thread from a pre-thread flat chart
// collection, preserving stored order. Runs only when no thread collection
// exists.
func (s *ThreadStore) migrateLegacyHistory() error {
	var legacy []ChartArtifact
	found, err := s.storage.Load(KeyLegacyHistory, &legacy)
	if err != nil {
		return fmt.Errorf("loading legacy chart history: %w", err)
	}
	if !found || len(legacy) == 0 {
		return nil
	}

	thread := Thread{
		ID:        NewID(),
		Title:     legacy[0].Query,
		CreatedAt: legacy[0].CreatedAt,
		Pinned:    false,
		Charts:    legacy,
	}
	s.threads = []Thread{thread}
	s.logger.Info("migrated legacy chart history", "charts", len(legacy), "thread_id", thread.ID)
	return nil
}

// Threads returns the thread collection in display order. The returned
// slice is a copy; artifacts themselves are immutable.
func (s *ThreadStore) Threads() []Thread {
	out := make([]Thread, len(s.threads))
	for i, t := range s.threads {
		out[i] = t
		out[i].Charts = append([]ChartArtifact(nil), t.Charts...)
	}
	return out
}

// Thread returns the thread with the given id.
func (s *ThreadStore) Thread(id string) (Thread, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Thread{}, false
	}
	t := s.threads[i]
	t.Charts = append([]ChartArtifact(nil), t.Charts...)
	return t, true
}

// ActiveID returns the active thread id, or "" when none is active.
func (s *ThreadStore) ActiveID() string {
	return s.active
}

// Active returns the active thread.
func (s *ThreadStore) Active() (Thread, bool) {
	if s.active == "" {
		return Thread{}, false
	}
	return s.Thread(s.active)
}

// SetActive selects the active thread.
func (s *ThreadStore) SetActive(id string) error {
	if s.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrThreadNotFound, id)
	}
	s.active = id
	s.persist()
	return nil
}

// AppendChart appends an artifact to the thread, creating the thread if it
// does not exist yet (titled with the artifact's query text). Appending the
// first chart to a placeholder-titled thread replaces the placeholder with
// the query text.
func (s *ThreadStore) AppendChart(threadID string, artifact ChartArtifact) {
	i := s.indexOf(threadID)
	if i < 0 {
		thread := Thread{
			ID:        threadID,
			Title:     artifact.Query,
			CreatedAt: time.Now(),
			Charts:    []ChartArtifact{artifact},
		}
		s.insertUnpinnedFront(thread)
	} else {
		if s.threads[i].Title == PlaceholderTitle && len(s.threads[i].Charts) == 0 {
			s.threads[i].Title = artifact.Query
		}
		s.threads[i].Charts = append(s.threads[i].Charts, artifact)
	}

	s.reconcile()
	s.persist()
}

// CreateEmpty inserts a new placeholder-titled thread at the front of the
// unpinned segment. The active selection is left alone (reconciliation
// still fills an empty selection).
func (s *ThreadStore) CreateEmpty() Thread {
	thread := Thread{
		ID:        NewID(),
		Title:     PlaceholderTitle,
		CreatedAt: time.Now(),
		Charts:    []ChartArtifact{},
	}
	s.insertUnpinnedFront(thread)

	s.reconcile()
	s.persist()
	return thread
}

// Rename sets the thread title. A title that trims to empty is a no-op.
func (s *ThreadStore) Rename(threadID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	i := s.indexOf(threadID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrThreadNotFound, threadID)
	}
	s.threads[i].Title = title

	s.reconcile()
	s.persist()
	return nil
}

// SetPinned pins or unpins a thread. Pinning moves it to the front of the
// pinned segment; unpinning returns it to the unpinned segment in
// creation-relative order.
func (s *ThreadStore) SetPinned(threadID string, pinned bool) error {
	i := s.indexOf(threadID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrThreadNotFound, threadID)
	}
	if s.threads[i].Pinned == pinned {
		return nil
	}

	thread := s.threads[i]
	thread.Pinned = pinned
	s.threads = append(s.threads[:i], s.threads[i+1:]...)

	if pinned {
		s.threads = append([]Thread{thread}, s.threads...)
	} else {
		s.insertUnpinnedByCreation(thread)
	}

	s.reconcile()
	s.persist()
	return nil
}

// Delete removes a thread and all its artifacts. Deleting the active
// thread clears the selection; reconciliation then falls back to the first
// remaining thread, if any.
func (s *ThreadStore) Delete(threadID string) error {
	i := s.indexOf(threadID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrThreadNotFound, threadID)
	}

	s.threads = append(s.threads[:i], s.threads[i+1:]...)
	if s.active == threadID {
		s.active = ""
	}

	s.reconcile()
	s.persist()
	return nil
}

// reconcile repairs the active selection after any structural change.
func (s *ThreadStore) reconcile() {
	if s.active != "" && s.indexOf(s.active) < 0 {
		s.active = ""
	}
	if s.active == "" && len(s.threads) > 0 {
		s.active = s.threads[0].ID
	}
}

// persist writes the full collections. Write failures are logged, never
// rolled back: in-memory state stays the source of truth for the session.
func (s *ThreadStore) persist() {
	if err := s.storage.Save(KeyThreads, s.threads); err != nil {
		s.logger.Error("persisting threads", "error", err)
	}
	if err := s.storage.Save(KeyActiveThread, s.active); err != nil {
		s.logger.Error("persisting active thread", "error", err)
	}
}

func (s *ThreadStore) indexOf(id string) int {
	for i := range s.threads {
		if s.threads[i].ID == id {
			return i
		}
	}
	return -1
}

// firstUnpinnedIndex returns the index of the first unpinned thread, or
// len(threads) when all are pinned.
func (s *ThreadStore) firstUnpinnedIndex() int {
	for i := range s.threads {
		if !s.threads[i].Pinned {
			return i
		}
	}
	return len(s.threads)
}

func (s *ThreadStore) insertUnpinnedFront(thread Thread) {
	s.insertAt(s.firstUnpinnedIndex(), thread)
}

// insertUnpinnedByCreation places an unpinned thread among the unpinned
// segment so that newer-created threads stay first.
func (s *ThreadStore) insertUnpinnedByCreation(thread Thread) {
	at := len(s.threads)
	for i := s.firstUnpinnedIndex(); i < len(s.threads); i++ {
		if s.threads[i].CreatedAt.Before(thread.CreatedAt) {
			at = i
			break
		}
	}
	s.insertAt(at, thread)
}

func (s *ThreadStore) insertAt(i int, thread Thread) {
	s.threads = append(s.threads, Thread{})
	copy(s.threads[i+1:], s.threads[i:])
	s.threads[i] = thread
}
