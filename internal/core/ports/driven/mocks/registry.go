package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

// MockRegistry is an in-memory ProviderRegistry for testing
type MockRegistry struct {
	mu      sync.RWMutex
	configs map[domain.Provider]*domain.ProviderConfig
}

// NewMockRegistry creates a registry pre-loaded with the given configs.
func NewMockRegistry(configs ...*domain.ProviderConfig) *MockRegistry {
	m := &MockRegistry{configs: make(map[domain.Provider]*domain.ProviderConfig)}
	for _, c := range configs {
		m.configs[c.Provider] = c
	}
	return m
}

func (m *MockRegistry) Get(ctx context.Context, provider domain.Provider) (*domain.ProviderConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configs[provider], nil
}

func (m *MockRegistry) List(ctx context.Context) ([]*domain.ProviderConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.ProviderConfig, 0, len(m.configs))
	for _, c := range m.configs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out, nil
}
