package store

import (
	"encoding/json"
	"fmt"
)

// MemoryStorage is an in-memory Storage for tests. Documents round-trip
// through JSON so tests exercise the same coercion paths as the file
// backend.
type MemoryStorage struct {
	docs map[string][]byte

	// SaveErr, when set, is returned by every Save. Tests use it to check
	// that write failures never roll back in-memory state.
	SaveErr error
}

// NewMemoryStorage creates empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{docs: make(map[string][]byte)}
}

// Load implements Storage.
func (m *MemoryStorage) Load(key string, out any) (bool, error) {
	data, ok := m.docs[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Save implements Storage.
func (m *MemoryStorage) Save(key string, value any) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	m.docs[key] = data
	return nil
}

// Delete implements Storage.
func (m *MemoryStorage) Delete(key string) error {
	delete(m.docs, key)
	return nil
}

// SetRaw stores a raw JSON document, bypassing marshalling. Tests use it to
// seed legacy or malformed documents.
func (m *MemoryStorage) SetRaw(key string, data []byte) {
	m.docs[key] = data
}
