package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agentic-hub/hub-core/internal/core/domain"
	"github.com/agentic-hub/hub-core/internal/core/ports/driven"
	"github.com/agentic-hub/hub-core/internal/core/ports/driving"
)

// Ensure credentialService implements CredentialService
var _ driving.CredentialService = (*credentialService)(nil)

// CredentialServiceConfig holds configuration for the credential service.
type CredentialServiceConfig struct {
	// Vault is the ephemeral one-time store written by the callback.
	Vault driven.CredentialVault

	// Registry is used for display names on the save path.
	Registry driven.ProviderRegistry

	// Store is the durable storage collaborator. May be nil when no
	// durable backend is configured; save requests then report saved=false.
	Store driven.CredentialStore

	Logger *slog.Logger
}

type credentialService struct {
	vault    driven.CredentialVault
	registry driven.ProviderRegistry
	store    driven.CredentialStore
	logger   *slog.Logger
}

// NewCredentialService creates a new credential finalizer.
func NewCredentialService(cfg CredentialServiceConfig) driving.CredentialService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &credentialService{
		vault:    cfg.Vault,
		registry: cfg.Registry,
		store:    cfg.Store,
		logger:   logger,
	}
}

// Finalize retrieves the pending credential exactly once. The ephemeral copy
// is deleted by the vault as part of the read, so a failed save afterwards
// must not hide the tokens from the caller: the formatted credential is
// returned with saved=false instead.
func (s *credentialService) Finalize(ctx context.Context, credentialID string, opts driving.FinalizeOptions) (*domain.FormattedCredential, error) {
	pending, err := s.vault.Take(ctx, credentialID)
	if err != nil {
		return nil, fmt.Errorf("take pending credential: %w", err)
	}
	if pending == nil {
		return nil, domain.ErrCredentialNotFound
	}

	formatted := formatCredential(pending)

	save := pending.Save
	if opts.Save != nil {
		save = *opts.Save
	}
	userID := pending.UserID
	if opts.UserID != "" {
		userID = opts.UserID
	}
	name := pending.DisplayName
	if opts.Name != "" {
		name = opts.Name
	}

	if save && userID != "" {
		if err := s.save(ctx, pending, userID, name); err != nil {
			// Non-fatal: the ephemeral copy is already gone, so the
			// tokens must still reach the caller.
			s.logger.Error("credential save failed",
				"provider", pending.Provider,
				"integration_id", pending.IntegrationID,
				"error", err,
			)
			formatted.Saved = false
			formatted.SaveError = domain.ErrPersistenceFailed.Error()
		} else {
			formatted.Saved = true
		}
	}

	return formatted, nil
}

func (s *credentialService) save(ctx context.Context, pending *domain.PendingCredential, userID, name string) error {
	if s.store == nil {
		return fmt.Errorf("no durable credential store configured")
	}

	if name == "" {
		cfg, _ := s.registry.Get(ctx, pending.Provider)
		name = domain.DefaultRecordName(cfg, pending.Provider)
	}

	scopes := pending.RequestedScopes
	if len(scopes) == 0 {
		scopes = splitScopes(pending.Grant.Scope)
	}

	rec := &domain.CredentialRecord{
		UserID:        userID,
		IntegrationID: pending.IntegrationID,
		Name:          name,
		Provider:      pending.Provider,
		AccessToken:   pending.Grant.AccessToken,
		RefreshToken:  pending.Grant.RefreshToken,
		TokenType:     pending.Grant.TokenType,
		ExpiresAt:     pending.Grant.ExpiresAt,
		Scopes:        scopes,
		Profile:       pending.Profile,
		CreatedAt:     time.Now(),
	}

	id, err := s.store.Save(ctx, rec)
	if err != nil {
		return err
	}

	s.logger.Info("credential saved",
		"provider", pending.Provider,
		"integration_id", pending.IntegrationID,
		"record_id", id,
	)
	return nil
}

// formatCredential builds the wire form of a pending credential.
func formatCredential(p *domain.PendingCredential) *domain.FormattedCredential {
	tokenType := p.Grant.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	var expiresAt *int64
	if p.Grant.ExpiresAt != nil {
		ms := p.Grant.ExpiresAt.UnixMilli()
		expiresAt = &ms
	}

	scopes := p.RequestedScopes
	if scopes == nil {
		scopes = []string{}
	}

	return &domain.FormattedCredential{
		Provider:      p.Provider,
		IntegrationID: p.IntegrationID,
		AccessToken:   p.Grant.AccessToken,
		RefreshToken:  p.Grant.RefreshToken,
		UserID:        p.Profile.ExternalID,
		UserName:      p.Profile.DisplayName,
		UserEmail:     p.Profile.Email,
		ExpiresAt:     expiresAt,
		Scope:         p.Grant.Scope,
		Scopes:        scopes,
		TokenType:     tokenType,
	}
}
