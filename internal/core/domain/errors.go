package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrUnsupportedProvider indicates the provider name resolves to no catalog entry
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrProviderNotConfigured indicates the provider exists but has no client credentials
	ErrProviderNotConfigured = errors.New("provider not configured")

	// ErrInvalidState indicates the state token is unknown, already consumed or expired.
	// Callers cannot distinguish the three cases.
	ErrInvalidState = errors.New("invalid or expired state")

	// ErrProviderMismatch indicates a state token was presented on a different
	// provider's callback than the one that created it
	ErrProviderMismatch = errors.New("state provider mismatch")

	// ErrAccessDenied indicates the end user declined authorization at the provider
	ErrAccessDenied = errors.New("access denied by user")

	// ErrExchangeFailed indicates the code-for-token exchange did not yield an access token
	ErrExchangeFailed = errors.New("token exchange failed")

	// ErrCredentialNotFound indicates the pending credential is absent, expired
	// or already consumed
	ErrCredentialNotFound = errors.New("credentials not found or expired")

	// ErrPersistenceFailed indicates the durable save step failed. It is
	// surfaced as saved=false on the response, never as a request error.
	ErrPersistenceFailed = errors.New("credential persistence failed")
)
