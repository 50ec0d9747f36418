package kv

import (
	"context"
	"sync"
)

// Memory is an in-process blob store. Contents are lost on restart; it
// exists for tests and for running the demo without any storage at all.
type Memory struct {
	blobs map[string][]byte
	mu    sync.RWMutex
}

// NewMemory creates an empty in-memory blob store
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Get returns the blob stored under key, or (nil, nil) when absent
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)
	return cp, nil
}

// Put stores value under key, replacing any previous blob
func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	m.blobs[key] = cp
	return nil
}

// Delete removes the blob under key. Deleting an absent key is a no-op.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, key)
	return nil
}
