package testing

import (
	"context"
	"maps"
	"sync"
)

// MemoryStorage is an in-memory key-value store with injectable failures.
type MemoryStorage struct {
	mu        sync.Mutex
	values    map[string]string
	GetErr    error
	SetErr    error
	RemoveErr error
}

func NewMemoryStorage(initial map[string]string) *MemoryStorage {
	values := make(map[string]string, len(initial))
	maps.Copy(values, initial)
	return &MemoryStorage{values: values}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	maps.Copy(m.values, entries)
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Snapshot returns a copy of the stored values.
func (m *MemoryStorage) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.values)
}
