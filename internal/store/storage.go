package store

// Persisted document keys. Each key maps to one whole JSON document.
const (
	KeyThreads       = "threads"
	KeyActiveThread  = "active_thread"
	KeyPinnedCharts  = "pinned_charts"
	KeyLegacyHistory = "chart_history"
)

// Storage is whole-document key-value persistence. Implementations must
// make each Save atomic: a reader never observes a partially written
// document.
type Storage interface {
	// Load reads the document at key into out. Returns false when the key
	// does not exist, which is not an error.
	Load(key string, out any) (bool, error)

	// Save writes the document at key, replacing any previous value.
	Save(key string, value any) error

	// Delete removes the document at key. Deleting an absent key is a no-op.
	Delete(key string) error
}
