// Package registry holds the static provider catalog. Endpoints, default
// scopes and scope categories are compiled in; client credentials are
// resolved through a SecretSource at lookup time so rotation never needs a
// catalog change.
package registry

import (
	"context"
	"os"
	"strings"

	"github.com/agentic-hub/hub-core/internal/core/domain"
	"github.com/agentic-hub/hub-core/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ProviderRegistry = (*Registry)(nil)

// SecretSource resolves client credentials for a provider.
type SecretSource interface {
	ClientCredentials(provider domain.Provider) (clientID, clientSecret string)
}

// EnvSecretSource reads {PROVIDER}_CLIENT_ID / {PROVIDER}_CLIENT_SECRET
// from the environment.
type EnvSecretSource struct{}

func (EnvSecretSource) ClientCredentials(provider domain.Provider) (string, string) {
	prefix := strings.ToUpper(string(provider))
	return os.Getenv(prefix + "_CLIENT_ID"), os.Getenv(prefix + "_CLIENT_SECRET")
}

// Registry is the static catalog backed by a secret source.
type Registry struct {
	secrets SecretSource
	order   []domain.Provider
	catalog map[domain.Provider]domain.ProviderConfig
}

// New creates a registry over the built-in catalog.
func New(secrets SecretSource) *Registry {
	if secrets == nil {
		secrets = EnvSecretSource{}
	}
	return &Registry{
		secrets: secrets,
		order:   catalogOrder,
		catalog: catalog,
	}
}

// Get returns the config for a provider with secrets populated.
// Returns nil, nil when the provider is unknown.
func (r *Registry) Get(ctx context.Context, provider domain.Provider) (*domain.ProviderConfig, error) {
	entry, ok := r.catalog[provider]
	if !ok {
		return nil, nil
	}
	cfg := entry // copy, callers never see the catalog entry itself
	cfg.ClientID, cfg.ClientSecret = r.secrets.ClientCredentials(provider)
	return &cfg, nil
}

// List returns every catalog entry in stable order, secrets populated.
func (r *Registry) List(ctx context.Context) ([]*domain.ProviderConfig, error) {
	out := make([]*domain.ProviderConfig, 0, len(r.order))
	for _, p := range r.order {
		cfg, err := r.Get(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}

var catalogOrder = []domain.Provider{
	domain.ProviderGoogle,
	domain.ProviderGitHub,
	domain.ProviderSlack,
	domain.ProviderFacebook,
}

var catalog = map[domain.Provider]domain.ProviderConfig{
	domain.ProviderGoogle: {
		Provider:      domain.ProviderGoogle,
		Name:          "Google",
		AuthURL:       "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:      "https://oauth2.googleapis.com/token",
		ProfileURL:    "https://www.googleapis.com/oauth2/v1/userinfo",
		DefaultScopes: []string{"profile", "email"},
		ScopeCategories: map[string][]string{
			"gmail": {
				"https://www.googleapis.com/auth/gmail.send",
				"https://www.googleapis.com/auth/gmail.readonly",
			},
			"sheets": {
				"https://www.googleapis.com/auth/spreadsheets",
			},
			"drive": {
				"https://www.googleapis.com/auth/drive.readonly",
				"https://www.googleapis.com/auth/drive.file",
			},
			"calendar": {
				"https://www.googleapis.com/auth/calendar",
			},
			"youtube": {
				"https://www.googleapis.com/auth/youtube.readonly",
			},
		},
		// Google accepts a JSON token request and needs the offline
		// params to issue a refresh token.
		TokenEncoding: domain.TokenEncodingJSON,
		AuthParams: map[string]string{
			"access_type": "offline",
			"prompt":      "consent",
		},
	},
	domain.ProviderGitHub: {
		Provider:      domain.ProviderGitHub,
		Name:          "GitHub",
		AuthURL:       "https://github.com/login/oauth/authorize",
		TokenURL:      "https://github.com/login/oauth/access_token",
		ProfileURL:    "https://api.github.com/user",
		DefaultScopes: []string{"read:user", "user:email"},
		ScopeCategories: map[string][]string{
			"repos": {"repo"},
			"gists": {"gist"},
		},
		TokenEncoding: domain.TokenEncodingForm,
	},
	domain.ProviderSlack: {
		Provider:      domain.ProviderSlack,
		Name:          "Slack",
		AuthURL:       "https://slack.com/oauth/v2/authorize",
		TokenURL:      "https://slack.com/api/oauth.v2.access",
		DefaultScopes: []string{"channels:read", "chat:write"},
		ScopeCategories: map[string][]string{
			"messaging": {"chat:write", "chat:write.public"},
			"channels":  {"channels:read", "channels:history"},
			"users":     {"users:read", "users:read.email"},
		},
		TokenEncoding: domain.TokenEncodingForm,
	},
	domain.ProviderFacebook: {
		Provider:      domain.ProviderFacebook,
		Name:          "Facebook",
		AuthURL:       "https://www.facebook.com/v18.0/dialog/oauth",
		TokenURL:      "https://graph.facebook.com/v18.0/oauth/access_token",
		ProfileURL:    "https://graph.facebook.com/me",
		DefaultScopes: []string{"public_profile", "email"},
		ScopeCategories: map[string][]string{
			"pages": {"pages_show_list", "pages_read_engagement"},
		},
		TokenEncoding: domain.TokenEncodingForm,
	},
}
