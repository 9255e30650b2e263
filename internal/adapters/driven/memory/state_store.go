// Package memory provides in-process implementations of the flow stores.
// Single-instance deployments and tests only: nothing here survives a
// restart, and consume-once is guaranteed per process, not per cluster.
package memory

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentic-hub/hub-core/internal/core/domain"
	"github.com/agentic-hub/hub-core/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore keeps flow states in an expiring in-process cache.
type StateStore struct {
	// mu serializes Consume so the get+delete pair is atomic.
	mu sync.Mutex
	c  *gocache.Cache
}

// NewStateStore creates an in-process state store.
func NewStateStore(defaultTTL time.Duration) *StateStore {
	return &StateStore{c: gocache.New(defaultTTL, time.Minute)}
}

func (s *StateStore) Save(ctx context.Context, state *domain.FlowState) error {
	s.c.Set(state.State, state, time.Until(state.ExpiresAt))
	return nil
}

func (s *StateStore) Consume(ctx context.Context, token string) (*domain.FlowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.c.Get(token)
	if !ok {
		return nil, nil
	}
	s.c.Delete(token)

	state, ok := v.(*domain.FlowState)
	if !ok || state.Expired(time.Now()) {
		return nil, nil
	}
	return state, nil
}

// Cleanup is a no-op: the cache janitor evicts expired entries itself.
func (s *StateStore) Cleanup(ctx context.Context) error {
	return nil
}
