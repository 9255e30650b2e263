// Package redis implements the flow stores on Redis. Entries carry a native
// TTL, and GETDEL makes the consume-once guarantee hold across instances.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentic-hub/hub-core/internal/core/domain"
	"github.com/agentic-hub/hub-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.StateStore = (*StateStore)(nil)

const statePrefix = "oauth:state:"

// StateStore implements driven.StateStore using Redis.
type StateStore struct {
	client *redis.Client
}

// NewStateStore creates a new Redis-backed StateStore.
func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client}
}

// Save stores a flow state with TTL based on ExpiresAt.
func (s *StateStore) Save(ctx context.Context, state *domain.FlowState) error {
	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal flow state: %w", err)
	}

	if err := s.client.Set(ctx, statePrefix+state.State, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save flow state: %w", err)
	}
	return nil
}

// Consume atomically retrieves and deletes the state via GETDEL, so two
// concurrent callers presenting the same token cannot both succeed.
func (s *StateStore) Consume(ctx context.Context, token string) (*domain.FlowState, error) {
	data, err := s.client.GetDel(ctx, statePrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume flow state: %w", err)
	}

	var state domain.FlowState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow state: %w", err)
	}
	if state.Expired(time.Now()) {
		return nil, nil
	}
	return &state, nil
}

// Cleanup is a no-op: Redis expires the keys itself.
func (s *StateStore) Cleanup(ctx context.Context) error {
	return nil
}
