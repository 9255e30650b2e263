package driven

import (
	"context"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

// StateStore manages OAuth flow state for CSRF protection.
// States are single-use and expire after a fixed TTL (default one hour).
type StateStore interface {
	// Save stores a new flow state keyed by its state token.
	Save(ctx context.Context, state *domain.FlowState) error

	// Consume atomically retrieves and deletes the state. Two concurrent
	// callers presenting the same token must not both succeed.
	// Returns nil, nil when the token is unknown, already consumed or
	// expired - the three cases are indistinguishable to callers.
	Consume(ctx context.Context, token string) (*domain.FlowState, error)

	// Cleanup removes expired states. Called periodically by the sweeper;
	// stores with native TTL may treat it as a no-op.
	Cleanup(ctx context.Context) error
}
