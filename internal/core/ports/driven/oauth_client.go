package driven

import (
	"context"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

// OAuthClient performs the provider-facing legs of the flow. A single
// implementation is parameterized by ProviderConfig rather than registering
// a strategy object per provider.
type OAuthClient interface {
	// AuthCodeURL builds the authorization URL the user's browser is sent to.
	// redirectURI is the server-controlled callback URL, never caller input.
	AuthCodeURL(cfg *domain.ProviderConfig, redirectURI, state string, scopes []string) string

	// Exchange swaps an authorization code for tokens. Single attempt,
	// bounded timeout; authorization codes are single-use so a retry would
	// fail identically.
	Exchange(ctx context.Context, cfg *domain.ProviderConfig, code, redirectURI string) (*domain.TokenGrant, error)

	// FetchProfile fetches the user profile with the access token.
	// Only called when the provider has a ProfileURL.
	FetchProfile(ctx context.Context, cfg *domain.ProviderConfig, accessToken string) (*domain.UserProfile, error)
}
