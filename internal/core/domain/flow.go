package domain

import "time"

// FlowState represents a pending OAuth authorization flow.
// It is keyed by the opaque state token and exists for CSRF protection:
// the callback must present the same token the initiation created.
type FlowState struct {
	// State is a cryptographically random single-use token.
	State string `json:"state"`

	Provider      Provider `json:"provider"`
	IntegrationID string   `json:"integration_id"`

	// RedirectClient is where the end user's browser is sent after the flow
	// completes. This is the caller's page, not the OAuth redirect_uri.
	RedirectClient string `json:"redirect_client"`

	// RequestedScopes are the raw caller entries (categories or literal
	// scopes), kept in input order.
	RequestedScopes []string `json:"requested_scopes"`

	// Options recorded at initiation time for the save path.
	UserID      string `json:"user_id,omitempty"`
	Save        bool   `json:"save,omitempty"`
	DisplayName string `json:"display_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the state becomes invalid whether or not consumed.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the state is past its TTL.
func (f *FlowState) Expired(now time.Time) bool {
	return now.After(f.ExpiresAt)
}
