package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/agentic-hub/hub-core/internal/core/domain"
	"github.com/agentic-hub/hub-core/internal/core/ports/driven"
)

// Ensure CredentialStore implements the interface.
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore implements the durable save path using PostgreSQL.
type CredentialStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewCredentialStore creates a new PostgreSQL-backed credential store.
func NewCredentialStore(db *DB, encryptor *SecretEncryptor) *CredentialStore {
	return &CredentialStore{db: db, encryptor: encryptor}
}

// storedTokens is the encrypted portion of a saved credential.
type storedTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Save persists a credential record and returns its generated ID.
func (s *CredentialStore) Save(ctx context.Context, rec *domain.CredentialRecord) (string, error) {
	blob, err := s.encryptor.Encrypt(storedTokens{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
	})
	if err != nil {
		return "", fmt.Errorf("encrypt credential: %w", err)
	}

	id := uuid.NewString()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO saved_credentials
			(id, user_id, integration_id, name, provider, secret_blob,
			 token_type, expires_at, scopes, profile_id, profile_name,
			 profile_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.db.ExecContext(ctx, query,
		id,
		rec.UserID,
		rec.IntegrationID,
		rec.Name,
		string(rec.Provider),
		blob,
		rec.TokenType,
		rec.ExpiresAt,
		pq.Array(rec.Scopes),
		rec.Profile.ExternalID,
		rec.Profile.DisplayName,
		rec.Profile.Email,
		createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("save credential: %w", err)
	}
	return id, nil
}
