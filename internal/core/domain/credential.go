package domain

import "time"

// TokenGrant is the result of exchanging an authorization code.
type TokenGrant struct {
	AccessToken  string `json:"-"` // Never serialize
	RefreshToken string `json:"-"` // Never serialize

	// TokenType is the token scheme, normally "Bearer".
	TokenType string `json:"token_type"`

	// Scope is the space-delimited scope string the provider actually
	// granted. It may differ from what was requested.
	Scope string `json:"scope"`

	// ExpiresAt is the absolute expiry computed from the provider's
	// expires_in. Nil for tokens that do not expire.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// UserProfile is the normalized, provider-agnostic account identity.
type UserProfile struct {
	// ExternalID is the provider's user identifier. When the provider gives
	// none, a random surrogate is generated so the credential is still keyed.
	ExternalID string `json:"external_id"`

	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// PendingCredential is a completed exchange parked in the vault under a
// one-time retrieval ID. It is consumable exactly once and expires even if
// never retrieved.
type PendingCredential struct {
	ID string `json:"id"`

	Provider      Provider `json:"provider"`
	IntegrationID string   `json:"integration_id"`

	Grant   TokenGrant  `json:"grant"`
	Profile UserProfile `json:"profile"`

	RequestedScopes []string `json:"requested_scopes"`

	// Save options recorded at initiation time. Retrieval-time options
	// take precedence over these.
	UserID      string `json:"user_id,omitempty"`
	Save        bool   `json:"save,omitempty"`
	DisplayName string `json:"display_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the pending credential is past its TTL.
func (p *PendingCredential) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// FormattedCredential is the provider-agnostic wire form handed to the
// caller at retrieval. Field names match the hub's credential API.
type FormattedCredential struct {
	Provider      Provider `json:"provider"`
	IntegrationID string   `json:"integration_id"`

	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`

	// ExpiresAt is epoch milliseconds, null for non-expiring tokens.
	ExpiresAt *int64 `json:"expires_at"`

	// Scope is what the provider granted; Scopes is what the caller requested.
	Scope  string   `json:"scope"`
	Scopes []string `json:"scopes"`

	TokenType string `json:"token_type"`

	// Saved reports whether the durable save succeeded. A failed save is
	// non-fatal: the tokens above are still valid and returned.
	Saved     bool   `json:"saved"`
	SaveError string `json:"save_error,omitempty"`
}

// CredentialRecord is what the durable storage collaborator persists when
// the caller asks for the credential to be saved.
type CredentialRecord struct {
	UserID        string `json:"user_id"`
	IntegrationID string `json:"integration_id"`

	// Name is the user-facing label, defaulting to "<Provider> Connection".
	Name string `json:"name"`

	Provider     Provider   `json:"provider"`
	AccessToken  string     `json:"-"` // Never serialize
	RefreshToken string     `json:"-"` // Never serialize
	TokenType    string     `json:"token_type"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Scopes       []string   `json:"scopes,omitempty"`

	Profile UserProfile `json:"profile"`

	CreatedAt time.Time `json:"created_at"`
}

// DefaultRecordName builds the fallback label for a saved credential.
func DefaultRecordName(cfg *ProviderConfig, provider Provider) string {
	if cfg != nil {
		return cfg.DisplayName() + " Connection"
	}
	return string(provider) + " Connection"
}
