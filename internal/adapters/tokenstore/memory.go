// Package tokenstore keeps the sign token handed out by a peer app.
package tokenstore

import (
	"sync"

	"handoff/internal/ports"
)

// Memory is a process-local token store.
type Memory struct {
	mu     sync.RWMutex
	tokens map[string]string
}

var _ ports.TokenStore = (*Memory)(nil)

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{tokens: make(map[string]string)}
}

// Get returns the token stored under key.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.tokens[key]
	return token, ok, nil
}

// Set replaces the token under key.
func (m *Memory) Set(key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[key] = token
	return nil
}
