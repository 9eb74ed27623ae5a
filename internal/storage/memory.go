// internal/storage/memory.go
package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps values in a map. It records the keys written and lets
// tests inject failures for individual operations.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	errs   map[string]error
	writes []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
		errs:   make(map[string]error),
	}
}

// WithError makes every call to op ("get", "set", "delete", "keys") fail with err.
// A nil err clears the injected failure.
func (m *MemoryStore) WithError(op string, err error) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
	} else {
		m.errs[op] = err
	}
	return m
}

// Writes returns the keys passed to Set, in call order.
func (m *MemoryStore) Writes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs["get"]; err != nil {
		return nil, err
	}
	value, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, key)
	if err := m.errs["set"]; err != nil {
		return err
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[key] = stored
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["delete"]; err != nil {
		return err
	}
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs["keys"]; err != nil {
		return nil, err
	}
	var keys []string
	for key := range m.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Close() error { return nil }
