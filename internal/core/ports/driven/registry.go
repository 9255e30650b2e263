package driven

import (
	"context"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

// ProviderRegistry resolves per-provider OAuth configuration.
// Pure lookup, no side effects.
type ProviderRegistry interface {
	// Get returns the config for a provider with secrets populated.
	// Returns nil, nil when the provider is unknown.
	Get(ctx context.Context, provider domain.Provider) (*domain.ProviderConfig, error)

	// List returns every catalog entry, configured or not, in stable order.
	List(ctx context.Context) ([]*domain.ProviderConfig, error)
}
