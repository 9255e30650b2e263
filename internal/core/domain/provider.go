package domain

// Provider identifies an OAuth provider
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderGitHub   Provider = "github"
	ProviderSlack    Provider = "slack"
	ProviderFacebook Provider = "facebook"
)

// TokenEncoding selects how a provider's token endpoint expects the
// code-exchange request to be encoded.
type TokenEncoding string

const (
	// TokenEncodingForm sends application/x-www-form-urlencoded (the OAuth2 default).
	TokenEncodingForm TokenEncoding = "form"

	// TokenEncodingJSON sends a JSON body. Some providers accept or prefer this.
	TokenEncodingJSON TokenEncoding = "json"
)

// ProviderConfig holds the static OAuth configuration for one provider.
// Client credentials come from an external secret source; the registry
// never generates or mutates them.
type ProviderConfig struct {
	Provider Provider `json:"provider"`
	Name     string   `json:"name"` // Display name

	// AuthURL is the OAuth authorization endpoint.
	AuthURL string `json:"auth_url"`

	// TokenURL is the OAuth token exchange endpoint.
	TokenURL string `json:"token_url"`

	// ProfileURL is the endpoint to fetch user information (optional).
	ProfileURL string `json:"profile_url,omitempty"`

	ClientID     string `json:"client_id"`
	ClientSecret string `json:"-"` // Never serialize

	// DefaultScopes are always requested, regardless of what the caller asks for.
	DefaultScopes []string `json:"default_scopes"`

	// ScopeCategories maps caller-friendly category names to concrete scope
	// strings (e.g. "gmail" -> gmail.send, gmail.readonly for google).
	ScopeCategories map[string][]string `json:"scope_categories,omitempty"`

	// TokenEncoding selects the code-exchange request encoding.
	// Empty means TokenEncodingForm.
	TokenEncoding TokenEncoding `json:"-"`

	// AuthParams are extra query parameters for the authorization URL
	// (google needs access_type=offline&prompt=consent for refresh tokens).
	AuthParams map[string]string `json:"-"`
}

// IsConfigured reports whether client credentials are present.
// Unconfigured providers are listed but cannot start flows.
func (c *ProviderConfig) IsConfigured() bool {
	return c != nil && c.ClientID != "" && c.ClientSecret != ""
}

// DisplayName returns the human-readable provider name.
func (c *ProviderConfig) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return string(c.Provider)
}

// ProviderStatus is the safe public view of a catalog entry.
type ProviderStatus struct {
	Provider   Provider `json:"provider"`
	Name       string   `json:"name"`
	Configured bool     `json:"configured"`
}

// ScopeCatalog describes the scopes available for a provider.
type ScopeCatalog struct {
	Provider      Provider            `json:"provider"`
	DefaultScopes []string            `json:"default"`
	Categories    map[string][]string `json:"categories,omitempty"`
}
