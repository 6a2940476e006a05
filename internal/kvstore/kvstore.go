// Package kvstore is the opaque key-value store holding the auth token, the
// cached user profile and the cached location set. Both execution contexts may
// read it and either may overwrite it; writes are wholesale refreshes of
// derived data, so last-writer-wins is acceptable.
package kvstore

import (
	"context"
	"encoding/json"
	"sync"
)

const (
	KeyToken     = "token"
	KeyUser      = "user"
	KeyLocations = "locations"
)

type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Clear(ctx context.Context, key string) error
}

// Memory is an in-process Store used in tests and single-node deployments.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	b, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *Memory) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = b
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}
