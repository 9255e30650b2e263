package driven

import (
	"context"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

// CredentialVault parks completed exchanges under a one-time retrieval ID.
// These are secrets in transit: at-most-once retrieval is a hard invariant.
type CredentialVault interface {
	// Put stores a pending credential keyed by its ID.
	Put(ctx context.Context, cred *domain.PendingCredential) error

	// Take atomically retrieves and deletes the credential. The delete
	// happens whether or not the caller's follow-up steps succeed.
	// Returns nil, nil when the ID is unknown, already consumed or expired.
	Take(ctx context.Context, id string) (*domain.PendingCredential, error)

	// Cleanup removes expired entries that were never retrieved.
	Cleanup(ctx context.Context) error
}
