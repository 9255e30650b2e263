package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

// MockCredentialStore is an in-memory durable CredentialStore for testing
type MockCredentialStore struct {
	mu      sync.Mutex
	records []*domain.CredentialRecord

	// SaveErr, when set, is returned by Save. Used to exercise the
	// non-fatal save failure path.
	SaveErr error
}

// NewMockCredentialStore creates a new MockCredentialStore
func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{}
}

func (m *MockCredentialStore) Save(ctx context.Context, rec *domain.CredentialRecord) (string, error) {
	if m.SaveErr != nil {
		return "", m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return fmt.Sprintf("rec-%d", len(m.records)), nil
}

// Records returns a copy of the saved records.
func (m *MockCredentialStore) Records() []*domain.CredentialRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.CredentialRecord, len(m.records))
	copy(out, m.records)
	return out
}
