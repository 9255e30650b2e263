package driving

import (
	"context"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

// OAuthService orchestrates third-party account connection flows: it builds
// authorization redirects, validates callbacks and parks the resulting
// credentials for one-time retrieval.
type OAuthService interface {
	// Initiate starts an OAuth authorization flow.
	// Returns the provider authorization URL to redirect the user to.
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)

	// HandleCallback validates the provider callback, exchanges the code and
	// stores a pending credential. Returns where to send the browser next.
	HandleCallback(ctx context.Context, req CallbackRequest) (*CallbackResult, error)

	// Providers lists the catalog with per-provider configured flags.
	Providers(ctx context.Context) ([]domain.ProviderStatus, error)

	// ProviderScopes returns the default scopes and scope categories for a
	// provider, for scope pickers.
	ProviderScopes(ctx context.Context, provider domain.Provider) (*domain.ScopeCatalog, error)
}

// InitiateRequest starts an authorization flow.
// @Description Request to start an OAuth authorization flow
type InitiateRequest struct {
	Provider domain.Provider `json:"provider" example:"google"`

	// IntegrationID identifies the target integration in the hub.
	IntegrationID string `json:"integration_id" example:"abc"`

	// RedirectClient is the caller page to return the browser to afterwards.
	RedirectClient string `json:"redirect_client" example:"http://localhost:5173/integrations"`

	// Scopes are category names or literal scope strings.
	Scopes []string `json:"scopes" example:"gmail"`

	// Optional save-path options, recorded with the flow.
	UserID string `json:"userId,omitempty"`
	Save   bool   `json:"save,omitempty"`
	Name   string `json:"name,omitempty"`
}

// InitiateResponse carries the authorization redirect.
// @Description Response containing the OAuth authorization URL
type InitiateResponse struct {
	// RedirectURL is the provider authorization URL.
	RedirectURL string `json:"redirect_url"`

	// State is the CSRF token the provider will echo back in the callback.
	State string `json:"state"`
}

// CallbackRequest represents the OAuth callback from the provider.
type CallbackRequest struct {
	// Provider is taken from the callback path, not from the state.
	Provider domain.Provider

	Code  string
	State string

	// Error is set when the provider reported an error instead of a code.
	Error            string
	ErrorDescription string
}

// CallbackResult tells the HTTP layer where to send the browser.
type CallbackResult struct {
	// RedirectURL is the caller's redirect_client with credential_id and
	// pass-through parameters appended.
	RedirectURL string

	// CredentialID is the one-time retrieval key for the pending credential.
	CredentialID string
}
