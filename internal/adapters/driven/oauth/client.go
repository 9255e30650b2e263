// Package oauth implements the provider-facing OAuth client. A single
// implementation is driven by ProviderConfig instead of one handler type per
// provider, so adding a provider is a registry entry, not new code.
package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentic-hub/hub-core/internal/core/domain"
	"github.com/agentic-hub/hub-core/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.OAuthClient = (*Client)(nil)

const maxResponseBytes = 1 << 20

// Client performs authorization URL construction, code exchange and profile
// fetch against any configured provider.
type Client struct {
	httpClient *http.Client
}

// ClientConfig holds configuration for the OAuth client.
type ClientConfig struct {
	// Timeout bounds every provider request. Defaults to 30s.
	Timeout time.Duration

	// HTTPClient overrides the underlying client, mainly for tests.
	HTTPClient *http.Client
}

// NewClient creates a new provider-facing OAuth client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.HTTPClient != nil {
		return &Client{httpClient: cfg.HTTPClient}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// AuthCodeURL constructs the provider authorization URL.
func (c *Client) AuthCodeURL(cfg *domain.ProviderConfig, redirectURI, state string, scopes []string) string {
	params := url.Values{
		"client_id":     {cfg.ClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"state":         {state},
		"scope":         {strings.Join(scopes, " ")},
	}
	for k, v := range cfg.AuthParams {
		params.Set(k, v)
	}
	return cfg.AuthURL + "?" + params.Encode()
}

// Exchange swaps an authorization code for tokens. The request body encoding
// follows the provider config; the response is always expected as JSON.
// Single attempt: authorization codes are one-time use, so retrying a failed
// exchange would fail identically.
func (c *Client) Exchange(ctx context.Context, cfg *domain.ProviderConfig, code, redirectURI string) (*domain.TokenGrant, error) {
	req, err := c.tokenRequest(ctx, cfg, code, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		Scope        string `json:"scope"`
		ExpiresIn    int    `json:"expires_in"`
		Error        string `json:"error"`
		ErrorDesc    string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if tokenResp.Error != "" {
		return nil, fmt.Errorf("oauth error: %s - %s", tokenResp.Error, tokenResp.ErrorDesc)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	grant := &domain.TokenGrant{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		TokenType:    tokenResp.TokenType,
		Scope:        tokenResp.Scope,
	}
	if grant.TokenType == "" {
		grant.TokenType = "Bearer"
	}
	if tokenResp.ExpiresIn > 0 {
		exp := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
		grant.ExpiresAt = &exp
	}
	return grant, nil
}

func (c *Client) tokenRequest(ctx context.Context, cfg *domain.ProviderConfig, code, redirectURI string) (*http.Request, error) {
	if cfg.TokenEncoding == domain.TokenEncodingJSON {
		payload, err := json.Marshal(map[string]string{
			"client_id":     cfg.ClientID,
			"client_secret": cfg.ClientSecret,
			"code":          code,
			"redirect_uri":  redirectURI,
			"grant_type":    "authorization_code",
		})
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	params := url.Values{
		"client_id":     {cfg.ClientID},
		"client_secret": {cfg.ClientSecret},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"grant_type":    {"authorization_code"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

// FetchProfile fetches the user profile with the access token. Provider
// payloads differ; only the common identity fields are extracted.
func (c *Client) FetchProfile(ctx context.Context, cfg *domain.ProviderConfig, accessToken string) (*domain.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.ProfileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile endpoint returned %d", resp.StatusCode)
	}

	// GitHub returns a numeric id, Google a string one. Decode loosely.
	var raw struct {
		ID          any    `json:"id"`
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Login       string `json:"login"`
		Email       string `json:"email"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	profile := &domain.UserProfile{
		ExternalID:  stringifyID(raw.ID),
		DisplayName: raw.Name,
		Email:       raw.Email,
	}
	if profile.DisplayName == "" {
		profile.DisplayName = raw.DisplayName
	}
	if profile.DisplayName == "" {
		profile.DisplayName = raw.Login
	}
	return profile, nil
}

func stringifyID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
