// internal/blobstore/memory.go
package blobstore

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	errs    map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]Object),
		errs:    make(map[string]error),
	}
}

// WithError makes every call to op ("put", "get", "delete") fail with err.
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

// Len reports how many objects are stored across buckets.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

func (m *MemoryStore) Put(_ context.Context, bucket, id string, payload *Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["put"]; err != nil {
		return err
	}
	data := make([]byte, len(payload.Data))
	copy(data, payload.Data)
	m.objects[bucket+"/"+id] = Object{Data: data, ContentType: contentTypeOf(payload)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, bucket, id string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs["get"]; err != nil {
		return nil, err
	}
	obj, ok := m.objects[bucket+"/"+id]
	if !ok {
		return nil, ErrNotFound
	}
	return &obj, nil
}

func (m *MemoryStore) Delete(_ context.Context, bucket, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["delete"]; err != nil {
		return err
	}
	delete(m.objects, bucket+"/"+id)
	return nil
}
