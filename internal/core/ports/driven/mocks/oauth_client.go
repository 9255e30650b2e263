package mocks

import (
	"context"
	"net/url"
	"strings"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

// MockOAuthClient is a configurable OAuthClient for testing
type MockOAuthClient struct {
	// ExchangeFunc, when set, handles Exchange calls.
	ExchangeFunc func(ctx context.Context, cfg *domain.ProviderConfig, code, redirectURI string) (*domain.TokenGrant, error)

	// ProfileFunc, when set, handles FetchProfile calls.
	ProfileFunc func(ctx context.Context, cfg *domain.ProviderConfig, accessToken string) (*domain.UserProfile, error)

	// ExchangeCalls records the codes passed to Exchange.
	ExchangeCalls []string
}

// NewMockOAuthClient creates a MockOAuthClient that returns a fixed grant.
func NewMockOAuthClient() *MockOAuthClient {
	return &MockOAuthClient{}
}

func (m *MockOAuthClient) AuthCodeURL(cfg *domain.ProviderConfig, redirectURI, state string, scopes []string) string {
	params := url.Values{
		"client_id":     {cfg.ClientID},
		"redirect_uri":  {redirectURI},
		"scope":         {strings.Join(scopes, " ")},
		"state":         {state},
		"response_type": {"code"},
	}
	for k, v := range cfg.AuthParams {
		params.Set(k, v)
	}
	return cfg.AuthURL + "?" + params.Encode()
}

func (m *MockOAuthClient) Exchange(ctx context.Context, cfg *domain.ProviderConfig, code, redirectURI string) (*domain.TokenGrant, error) {
	m.ExchangeCalls = append(m.ExchangeCalls, code)
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, cfg, code, redirectURI)
	}
	return &domain.TokenGrant{AccessToken: "mock-access-token", TokenType: "Bearer"}, nil
}

func (m *MockOAuthClient) FetchProfile(ctx context.Context, cfg *domain.ProviderConfig, accessToken string) (*domain.UserProfile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, cfg, accessToken)
	}
	return &domain.UserProfile{ExternalID: "mock-user", DisplayName: "Mock User"}, nil
}
