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
var _ driven.CredentialVault = (*CredentialVault)(nil)

const credentialPrefix = "oauth:credential:"

// CredentialVault implements driven.CredentialVault using Redis.
// Pending credentials hold live tokens, so entries are short-lived and
// removed on first read.
type CredentialVault struct {
	client *redis.Client
}

// NewCredentialVault creates a new Redis-backed CredentialVault.
func NewCredentialVault(client *redis.Client) *CredentialVault {
	return &CredentialVault{client: client}
}

// Put stores a pending credential with TTL based on ExpiresAt.
func (v *CredentialVault) Put(ctx context.Context, cred *domain.PendingCredential) error {
	ttl := time.Until(cred.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(redisPendingCredential(cred))
	if err != nil {
		return fmt.Errorf("failed to marshal pending credential: %w", err)
	}

	if err := v.client.Set(ctx, credentialPrefix+cred.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save pending credential: %w", err)
	}
	return nil
}

// Take atomically retrieves and deletes the credential via GETDEL.
func (v *CredentialVault) Take(ctx context.Context, id string) (*domain.PendingCredential, error) {
	data, err := v.client.GetDel(ctx, credentialPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take pending credential: %w", err)
	}

	var stored storedCredential
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending credential: %w", err)
	}
	cred := stored.toDomain()
	if cred.Expired(time.Now()) {
		return nil, nil
	}
	return cred, nil
}

// Cleanup is a no-op: Redis expires the keys itself.
func (v *CredentialVault) Cleanup(ctx context.Context) error {
	return nil
}

// storedCredential is the Redis persistence shape. The domain type hides
// tokens from JSON on purpose, so the vault needs its own envelope that
// carries them.
type storedCredential struct {
	Credential   domain.PendingCredential `json:"credential"`
	AccessToken  string                   `json:"access_token"`
	RefreshToken string                   `json:"refresh_token"`
}

func redisPendingCredential(cred *domain.PendingCredential) *storedCredential {
	return &storedCredential{
		Credential:   *cred,
		AccessToken:  cred.Grant.AccessToken,
		RefreshToken: cred.Grant.RefreshToken,
	}
}

func (s *storedCredential) toDomain() *domain.PendingCredential {
	cred := s.Credential
	cred.Grant.AccessToken = s.AccessToken
	cred.Grant.RefreshToken = s.RefreshToken
	return &cred
}
