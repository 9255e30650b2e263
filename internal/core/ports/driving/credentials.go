package driving

import (
	"context"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

// CredentialService hands a parked credential to its caller exactly once,
// optionally persisting it to durable storage on the way out.
type CredentialService interface {
	// Finalize retrieves and erases the pending credential. The ephemeral
	// copy is gone after the first call regardless of the save outcome.
	Finalize(ctx context.Context, credentialID string, opts FinalizeOptions) (*domain.FormattedCredential, error)
}

// FinalizeOptions are retrieval-time save options. They take precedence over
// anything recorded at initiation time.
type FinalizeOptions struct {
	// Save requests persistence to durable storage. Nil means "use the
	// initiation-time choice".
	Save *bool

	UserID string
	Name   string
}
