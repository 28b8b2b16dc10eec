package tracelog

import (
	"sync"

	"github.com/nicola-lissandrini/modflow/pkg/modflow"
)

// MemoryStore is an in-memory trace store for testing.
// Entries are lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []modflow.TraceEntry
	closed  bool
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory trace store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record implements modflow.TraceRecorder.
func (m *MemoryStore) Record(e modflow.TraceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.entries = append(m.entries, e)
	return nil
}

// List implements Store.
func (m *MemoryStore) List() ([]modflow.TraceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	out := make([]modflow.TraceEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// ListChannel implements Store.
func (m *MemoryStore) ListChannel(channel string) ([]modflow.TraceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	var out []modflow.TraceEntry
	for _, e := range m.entries {
		if e.Channel == channel {
			out = append(out, e)
		}
	}
	return out, nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.entries = nil
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.entries = nil
	return nil
}

// Len returns the number of recorded entries. Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
