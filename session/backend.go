package session

import (
	"context"
	"errors"
	"sync"
)

// ErrBackendUnavailable wraps any I/O failure reported by a [Backend].
var ErrBackendUnavailable = errors.New("session backend unavailable")

// Backend is the string-keyed durable storage a [Store] persists into.
//
// Implementations must make SetAll atomic (all entries or none) and Delete
// idempotent (deleting missing keys is not an error).
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetAll(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// MemoryBackend is a process-local [Backend]. It survives Manager restarts
// within one process and is used by tests and ephemeral clients.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryBackend) SetAll(_ context.Context, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.data[k] = v
	}
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Len reports how many keys are stored.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
