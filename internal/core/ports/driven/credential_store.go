package driven

import (
	"context"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

// CredentialStore is the durable storage collaborator for the save path.
// A save failure is non-fatal to credential retrieval: the finalizer reports
// it as saved=false and still returns the tokens.
type CredentialStore interface {
	// Save persists a credential record and returns the stored record's ID.
	Save(ctx context.Context, rec *domain.CredentialRecord) (string, error)
}
