package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

// MockStateStore is an in-memory StateStore for testing
type MockStateStore struct {
	mu     sync.Mutex
	states map[string]*domain.FlowState

	// SaveErr, when set, is returned by Save
	SaveErr error
	// ConsumeErr, when set, is returned by Consume
	ConsumeErr error
}

// NewMockStateStore creates a new MockStateStore
func NewMockStateStore() *MockStateStore {
	return &MockStateStore{
		states: make(map[string]*domain.FlowState),
	}
}

func (m *MockStateStore) Save(ctx context.Context, state *domain.FlowState) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.State] = state
	return nil
}

func (m *MockStateStore) Consume(ctx context.Context, token string) (*domain.FlowState, error) {
	if m.ConsumeErr != nil {
		return nil, m.ConsumeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[token]
	if !ok {
		return nil, nil
	}
	delete(m.states, token)
	if s.Expired(time.Now()) {
		return nil, nil
	}
	return s, nil
}

func (m *MockStateStore) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for k, v := range m.states {
		if v.Expired(now) {
			delete(m.states, k)
		}
	}
	return nil
}

// Len returns the number of stored states.
func (m *MockStateStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}

// Get returns a stored state without consuming it.
func (m *MockStateStore) Get(token string) *domain.FlowState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[token]
}
