package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/agentic-hub/hub-core/internal/core/domain"
	"github.com/agentic-hub/hub-core/internal/core/ports/driven"
)

// Ensure CredentialVault implements the interface.
var _ driven.CredentialVault = (*CredentialVault)(nil)

// CredentialVault implements driven.CredentialVault using PostgreSQL.
// Tokens and profile are sealed into an encrypted blob; the flow metadata
// stays in plain columns for operability.
type CredentialVault struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewCredentialVault creates a new PostgreSQL-backed credential vault.
func NewCredentialVault(db *DB, encryptor *SecretEncryptor) *CredentialVault {
	return &CredentialVault{db: db, encryptor: encryptor}
}

// vaultSecret is the encrypted portion of a pending credential.
type vaultSecret struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	TokenType    string             `json:"token_type"`
	Scope        string             `json:"scope"`
	ExpiresAt    *time.Time         `json:"expires_at,omitempty"`
	Profile      domain.UserProfile `json:"profile"`
}

// Put stores a pending credential keyed by its ID.
func (v *CredentialVault) Put(ctx context.Context, cred *domain.PendingCredential) error {
	blob, err := v.encryptor.Encrypt(vaultSecret{
		AccessToken:  cred.Grant.AccessToken,
		RefreshToken: cred.Grant.RefreshToken,
		TokenType:    cred.Grant.TokenType,
		Scope:        cred.Grant.Scope,
		ExpiresAt:    cred.Grant.ExpiresAt,
		Profile:      cred.Profile,
	})
	if err != nil {
		return fmt.Errorf("encrypt pending credential: %w", err)
	}

	query := `
		INSERT INTO pending_credentials
			(id, provider, integration_id, secret_blob, requested_scopes,
			 user_id, save, display_name, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = v.db.ExecContext(ctx, query,
		cred.ID,
		string(cred.Provider),
		cred.IntegrationID,
		blob,
		pq.Array(cred.RequestedScopes),
		cred.UserID,
		cred.Save,
		cred.DisplayName,
		cred.CreatedAt,
		cred.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save pending credential: %w", err)
	}
	return nil
}

// Take atomically retrieves and deletes the credential.
// Uses DELETE ... RETURNING so concurrent retrievals yield one winner.
func (v *CredentialVault) Take(ctx context.Context, id string) (*domain.PendingCredential, error) {
	query := `
		DELETE FROM pending_credentials
		WHERE id = $1 AND expires_at > NOW()
		RETURNING id, provider, integration_id, secret_blob, requested_scopes,
		          user_id, save, display_name, created_at, expires_at
	`

	var cred domain.PendingCredential
	var provider string
	var blob []byte
	var scopes pq.StringArray
	err := v.db.QueryRowContext(ctx, query, id).Scan(
		&cred.ID,
		&provider,
		&cred.IntegrationID,
		&blob,
		&scopes,
		&cred.UserID,
		&cred.Save,
		&cred.DisplayName,
		&cred.CreatedAt,
		&cred.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Unknown, consumed or expired
	}
	if err != nil {
		return nil, fmt.Errorf("take pending credential: %w", err)
	}

	var secret vaultSecret
	if err := v.encryptor.Decrypt(blob, &secret); err != nil {
		return nil, fmt.Errorf("decrypt pending credential: %w", err)
	}

	cred.Provider = domain.Provider(provider)
	cred.RequestedScopes = scopes
	cred.Grant = domain.TokenGrant{
		AccessToken:  secret.AccessToken,
		RefreshToken: secret.RefreshToken,
		TokenType:    secret.TokenType,
		Scope:        secret.Scope,
		ExpiresAt:    secret.ExpiresAt,
	}
	cred.Profile = secret.Profile
	return &cred, nil
}

// Cleanup removes expired entries that were never retrieved.
func (v *CredentialVault) Cleanup(ctx context.Context) error {
	_, err := v.db.ExecContext(ctx, `DELETE FROM pending_credentials WHERE expires_at < NOW()`)
	if err != nil {
		return fmt.Errorf("cleanup pending credentials: %w", err)
	}
	return nil
}
