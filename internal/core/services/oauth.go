package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agentic-hub/hub-core/internal/core/domain"
	"github.com/agentic-hub/hub-core/internal/core/ports/driven"
	"github.com/agentic-hub/hub-core/internal/core/ports/driving"
)

// Ensure oauthService implements OAuthService
var _ driving.OAuthService = (*oauthService)(nil)

// DefaultFlowTTL is how long a flow state or pending credential stays valid.
const DefaultFlowTTL = time.Hour

// OAuthServiceConfig holds configuration for the OAuth service.
type OAuthServiceConfig struct {
	// Registry resolves provider configuration.
	Registry driven.ProviderRegistry

	// States holds pending flow states for CSRF validation.
	States driven.StateStore

	// Vault parks completed exchanges for one-time retrieval.
	Vault driven.CredentialVault

	// Client performs authorization URL building, code exchange and
	// profile fetch against the provider.
	Client driven.OAuthClient

	// BaseURL is the application base URL for OAuth callbacks.
	// Example: "https://hub.example.com" or "http://localhost:3001"
	BaseURL string

	// ClientURL is the default redirect target when the caller supplies no
	// redirect_client.
	ClientURL string

	// FlowTTL overrides DefaultFlowTTL when positive.
	FlowTTL time.Duration

	// AllowStatelessCallback enables the reduced-security fallback where a
	// callback with an unknown state is still exchanged. Off by default;
	// such flows have no CSRF protection and carry no initiation metadata.
	AllowStatelessCallback bool

	Logger *slog.Logger
}

type oauthService struct {
	registry       driven.ProviderRegistry
	states         driven.StateStore
	vault          driven.CredentialVault
	client         driven.OAuthClient
	baseURL        string
	clientURL      string
	flowTTL        time.Duration
	allowStateless bool
	logger         *slog.Logger
}

// NewOAuthService creates a new OAuth service.
func NewOAuthService(cfg OAuthServiceConfig) driving.OAuthService {
	ttl := cfg.FlowTTL
	if ttl <= 0 {
		ttl = DefaultFlowTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &oauthService{
		registry:       cfg.Registry,
		states:         cfg.States,
		vault:          cfg.Vault,
		client:         cfg.Client,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		clientURL:      strings.TrimRight(cfg.ClientURL, "/"),
		flowTTL:        ttl,
		allowStateless: cfg.AllowStatelessCallback,
		logger:         logger,
	}
}

// Initiate starts an OAuth authorization flow: it persists a single-use flow
// state and returns the provider authorization URL. No provider network call
// happens here; the authorization leg runs in the user's browser.
func (s *oauthService) Initiate(ctx context.Context, req driving.InitiateRequest) (*driving.InitiateResponse, error) {
	cfg, err := s.registry.Get(ctx, req.Provider)
	if err != nil {
		return nil, fmt.Errorf("get provider config: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, req.Provider)
	}
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotConfigured, req.Provider)
	}

	state, err := generateStateToken()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	now := time.Now()
	flow := &domain.FlowState{
		State:           state,
		Provider:        req.Provider,
		IntegrationID:   req.IntegrationID,
		RedirectClient:  req.RedirectClient,
		RequestedScopes: req.Scopes,
		UserID:          req.UserID,
		Save:            req.Save,
		DisplayName:     req.Name,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.flowTTL),
	}
	if err := s.states.Save(ctx, flow); err != nil {
		return nil, fmt.Errorf("save flow state: %w", err)
	}

	scopes := ResolveScopes(cfg, req.Scopes)
	authURL := s.client.AuthCodeURL(cfg, s.callbackURL(req.Provider), state, scopes)

	s.logger.Info("oauth flow initiated",
		"provider", req.Provider,
		"integration_id", req.IntegrationID,
		"scopes", len(scopes),
	)

	return &driving.InitiateResponse{
		RedirectURL: authURL,
		State:       state,
	}, nil
}

// HandleCallback runs the callback leg: consume state, match provider,
// exchange the code, fetch the profile best-effort and park the result.
func (s *oauthService) HandleCallback(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResult, error) {
	if req.Error != "" {
		if req.Error == "access_denied" {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccessDenied, req.ErrorDescription)
		}
		return nil, fmt.Errorf("%w: provider returned %s", domain.ErrExchangeFailed, req.Error)
	}

	flow, err := s.states.Consume(ctx, req.State)
	if err != nil {
		return nil, fmt.Errorf("consume flow state: %w", err)
	}
	if flow == nil {
		if !s.allowStateless {
			return nil, domain.ErrInvalidState
		}
		// Reduced-security fallback: fabricate a throwaway flow for the
		// provider named in the callback path. No initiation metadata.
		s.logger.Warn("stateless callback accepted", "provider", req.Provider)
		flow = &domain.FlowState{Provider: req.Provider}
	}

	if flow.Provider != req.Provider {
		return nil, fmt.Errorf("%w: state for %s presented on %s callback",
			domain.ErrProviderMismatch, flow.Provider, req.Provider)
	}

	cfg, err := s.registry.Get(ctx, req.Provider)
	if err != nil {
		return nil, fmt.Errorf("get provider config: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, req.Provider)
	}
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotConfigured, req.Provider)
	}

	grant, err := s.client.Exchange(ctx, cfg, req.Code, s.callbackURL(req.Provider))
	if err != nil {
		// Terminal: authorization codes are single-use, retrying would
		// fail identically.
		return nil, fmt.Errorf("%w: %v", domain.ErrExchangeFailed, err)
	}

	profile := s.fetchProfile(ctx, cfg, grant.AccessToken)

	now := time.Now()
	pending := &domain.PendingCredential{
		ID:              uuid.NewString(),
		Provider:        req.Provider,
		IntegrationID:   flow.IntegrationID,
		Grant:           *grant,
		Profile:         profile,
		RequestedScopes: flow.RequestedScopes,
		UserID:          flow.UserID,
		Save:            flow.Save,
		DisplayName:     flow.DisplayName,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.flowTTL),
	}
	if err := s.vault.Put(ctx, pending); err != nil {
		return nil, fmt.Errorf("store pending credential: %w", err)
	}

	s.logger.Info("oauth flow completed",
		"provider", req.Provider,
		"integration_id", flow.IntegrationID,
		"has_refresh_token", grant.RefreshToken != "",
	)

	return &driving.CallbackResult{
		RedirectURL:  s.clientRedirectURL(flow, pending.ID),
		CredentialID: pending.ID,
	}, nil
}

// Providers lists the catalog with configured flags.
func (s *oauthService) Providers(ctx context.Context) ([]domain.ProviderStatus, error) {
	configs, err := s.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	statuses := make([]domain.ProviderStatus, 0, len(configs))
	for _, cfg := range configs {
		statuses = append(statuses, domain.ProviderStatus{
			Provider:   cfg.Provider,
			Name:       cfg.DisplayName(),
			Configured: cfg.IsConfigured(),
		})
	}
	return statuses, nil
}

// ProviderScopes returns the scope catalog for one provider.
func (s *oauthService) ProviderScopes(ctx context.Context, provider domain.Provider) (*domain.ScopeCatalog, error) {
	cfg, err := s.registry.Get(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("get provider config: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, provider)
	}
	return &domain.ScopeCatalog{
		Provider:      cfg.Provider,
		DefaultScopes: cfg.DefaultScopes,
		Categories:    cfg.ScopeCategories,
	}, nil
}

// fetchProfile fetches the user profile best-effort. Token possession is the
// primary goal; a profile failure downgrades to an empty profile with a
// surrogate ID instead of failing the flow.
func (s *oauthService) fetchProfile(ctx context.Context, cfg *domain.ProviderConfig, accessToken string) domain.UserProfile {
	var profile domain.UserProfile
	if cfg.ProfileURL != "" {
		p, err := s.client.FetchProfile(ctx, cfg, accessToken)
		if err != nil {
			s.logger.Warn("profile fetch failed, continuing without profile",
				"provider", cfg.Provider, "error", err)
		} else if p != nil {
			profile = *p
		}
	}
	if profile.ExternalID == "" {
		profile.ExternalID = uuid.NewString()
	}
	return profile
}

// callbackURL is the fixed, server-controlled OAuth redirect_uri.
// Never caller-supplied, to prevent open-redirect abuse.
func (s *oauthService) callbackURL(provider domain.Provider) string {
	return fmt.Sprintf("%s/oauth/%s/callback", s.baseURL, provider)
}

// clientRedirectURL builds the post-flow browser redirect:
// {redirect_client}/{integration_id}?credential_id=... plus the pass-through
// save options recorded at initiation.
func (s *oauthService) clientRedirectURL(flow *domain.FlowState, credentialID string) string {
	base := flow.RedirectClient
	if base == "" {
		base = s.clientURL
	}
	base = strings.TrimRight(base, "/")
	if flow.IntegrationID != "" {
		base += "/" + url.PathEscape(flow.IntegrationID)
	}

	params := url.Values{"credential_id": {credentialID}}
	if flow.Save {
		params.Set("save", "true")
	}
	if flow.UserID != "" {
		params.Set("userId", flow.UserID)
	}
	if flow.DisplayName != "" {
		params.Set("name", flow.DisplayName)
	}
	return base + "?" + params.Encode()
}

// generateStateToken generates a cryptographically random state token
// (256 bits of entropy, hex encoded).
func generateStateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
