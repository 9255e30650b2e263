package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

// MockCredentialVault is an in-memory CredentialVault for testing
type MockCredentialVault struct {
	mu    sync.Mutex
	creds map[string]*domain.PendingCredential

	// PutErr, when set, is returned by Put
	PutErr error
}

// NewMockCredentialVault creates a new MockCredentialVault
func NewMockCredentialVault() *MockCredentialVault {
	return &MockCredentialVault{
		creds: make(map[string]*domain.PendingCredential),
	}
}

func (m *MockCredentialVault) Put(ctx context.Context, cred *domain.PendingCredential) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[cred.ID] = cred
	return nil
}

func (m *MockCredentialVault) Take(ctx context.Context, id string) (*domain.PendingCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[id]
	if !ok {
		return nil, nil
	}
	delete(m.creds, id)
	if c.Expired(time.Now()) {
		return nil, nil
	}
	return c, nil
}

func (m *MockCredentialVault) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for k, v := range m.creds {
		if v.Expired(now) {
			delete(m.creds, k)
		}
	}
	return nil
}

// Len returns the number of parked credentials.
func (m *MockCredentialVault) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.creds)
}

// Get returns a parked credential without consuming it.
func (m *MockCredentialVault) Get(id string) *domain.PendingCredential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds[id]
}
