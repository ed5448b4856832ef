package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used for unit tests and local development.
// It mirrors the merge semantics of the Mongo backend, including resolution
// of ServerTimestamp sentinels at write time.
type MemoryStore struct {
	mu   sync.RWMutex
	cols map[string]map[string]map[string]any

	// now is the clock used to resolve ServerTimestamp; tests may override.
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cols: make(map[string]map[string]map[string]any),
		now:  time.Now,
	}
}

// SetClock overrides the store clock. Test helper.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryStore) resolve(v any) any {
	if _, ok := v.(serverTimestamp); ok {
		return m.now().UTC()
	}
	return v
}

func (m *MemoryStore) SetMerge(_ context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.cols[collection]
	if !ok {
		col = make(map[string]map[string]any)
		m.cols[collection] = col
	}
	doc, ok := col[id]
	if !ok {
		doc = make(map[string]any, len(fields))
		col[id] = doc
	}
	for k, v := range fields {
		doc[k] = m.resolve(v)
	}
	return nil
}

func (m *MemoryStore) Set(_ context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.cols[collection]
	if !ok {
		col = make(map[string]map[string]any)
		m.cols[collection] = col
	}
	doc := make(map[string]any, len(fields))
	for k, v := range fields {
		doc[k] = m.resolve(v)
	}
	col[id] = doc
	return nil
}

func (m *MemoryStore) Get(_ context.Context, collection, id string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	col, ok := m.cols[collection]
	if !ok {
		return nil, ErrNotFound
	}
	doc, ok := col[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}

// Docs returns the ids present in a collection. Test helper.
func (m *MemoryStore) Docs(collection string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []string{}
	for id := range m.cols[collection] {
		out = append(out, id)
	}
	return out
}
