// Package channel provides SharedChannel implementations.
package channel

import (
	"sync"

	"handoff/internal/domain"
	"handoff/internal/ports"
)

// Memory is an in-process shared channel.
type Memory struct {
	mu    sync.RWMutex
	items domain.ChannelItems
}

var _ ports.SharedChannel = (*Memory)(nil)

// NewMemory creates an empty channel.
func NewMemory() *Memory {
	return &Memory{}
}

// Write replaces the stored items with a copy of items.
func (m *Memory) Write(items domain.ChannelItems) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items.Clone()
	return nil
}

// Read returns a copy of the stored items.
func (m *Memory) Read() (domain.ChannelItems, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items.Clone(), nil
}
