package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-hub/hub-core/internal/core/domain"
	"github.com/agentic-hub/hub-core/internal/core/ports/driven/mocks"
	"github.com/agentic-hub/hub-core/internal/core/ports/driving"
)

func pendingCredential(id string) *domain.PendingCredential {
	now := time.Now()
	exp := now.Add(time.Hour)
	return &domain.PendingCredential{
		ID:            id,
		Provider:      domain.ProviderGoogle,
		IntegrationID: "abc",
		Grant: domain.TokenGrant{
			AccessToken:  "T1",
			RefreshToken: "R1",
			TokenType:    "Bearer",
			Scope:        "profile email",
			ExpiresAt:    &exp,
		},
		Profile: domain.UserProfile{
			ExternalID:  "user-1",
			DisplayName: "Test User",
			Email:       "test@example.com",
		},
		RequestedScopes: []string{"gmail"},
		CreatedAt:       now,
		ExpiresAt:       exp,
	}
}

type credentialFixture struct {
	vault   *mocks.MockCredentialVault
	store   *mocks.MockCredentialStore
	service driving.CredentialService
}

func newCredentialFixture(t *testing.T) *credentialFixture {
	t.Helper()
	f := &credentialFixture{
		vault: mocks.NewMockCredentialVault(),
		store: mocks.NewMockCredentialStore(),
	}
	google := googleConfig()
	google.Name = "Google"
	f.service = NewCredentialService(CredentialServiceConfig{
		Vault:    f.vault,
		Registry: mocks.NewMockRegistry(google),
		Store:    f.store,
	})
	return f
}

func TestFinalize_ReturnsFormattedCredential(t *testing.T) {
	f := newCredentialFixture(t)
	require.NoError(t, f.vault.Put(context.Background(), pendingCredential("cred-1")))

	fc, err := f.service.Finalize(context.Background(), "cred-1", driving.FinalizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderGoogle, fc.Provider)
	assert.Equal(t, "abc", fc.IntegrationID)
	assert.Equal(t, "T1", fc.AccessToken)
	assert.Equal(t, "R1", fc.RefreshToken)
	assert.Equal(t, "user-1", fc.UserID)
	assert.Equal(t, "Test User", fc.UserName)
	assert.Equal(t, "test@example.com", fc.UserEmail)
	assert.Equal(t, "profile email", fc.Scope)
	assert.Equal(t, []string{"gmail"}, fc.Scopes)
	assert.Equal(t, "Bearer", fc.TokenType)
	require.NotNil(t, fc.ExpiresAt)
	assert.False(t, fc.Saved)
}

func TestFinalize_AtMostOnce(t *testing.T) {
	f := newCredentialFixture(t)
	require.NoError(t, f.vault.Put(context.Background(), pendingCredential("cred-1")))

	_, err := f.service.Finalize(context.Background(), "cred-1", driving.FinalizeOptions{})
	require.NoError(t, err)

	_, err = f.service.Finalize(context.Background(), "cred-1", driving.FinalizeOptions{})
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

func TestFinalize_UnknownID(t *testing.T) {
	f := newCredentialFixture(t)

	_, err := f.service.Finalize(context.Background(), "nope", driving.FinalizeOptions{})
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

func TestFinalize_SavesWhenRequested(t *testing.T) {
	f := newCredentialFixture(t)
	pending := pendingCredential("cred-1")
	pending.Save = true
	pending.UserID = "hub-user"
	require.NoError(t, f.vault.Put(context.Background(), pending))

	fc, err := f.service.Finalize(context.Background(), "cred-1", driving.FinalizeOptions{})
	require.NoError(t, err)
	assert.True(t, fc.Saved)

	records := f.store.Records()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "hub-user", rec.UserID)
	assert.Equal(t, "abc", rec.IntegrationID)
	assert.Equal(t, "Google Connection", rec.Name)
	assert.Equal(t, "T1", rec.AccessToken)
	assert.Equal(t, "R1", rec.RefreshToken)
	assert.Equal(t, []string{"gmail"}, rec.Scopes)
	assert.Equal(t, "user-1", rec.Profile.ExternalID)
}

func TestFinalize_RetrievalOptionsTakePrecedence(t *testing.T) {
	f := newCredentialFixture(t)
	pending := pendingCredential("cred-1")
	pending.Save = false
	pending.UserID = "initiation-user"
	pending.DisplayName = "Initiation Name"
	require.NoError(t, f.vault.Put(context.Background(), pending))

	save := true
	fc, err := f.service.Finalize(context.Background(), "cred-1", driving.FinalizeOptions{
		Save:   &save,
		UserID: "retrieval-user",
		Name:   "Retrieval Name",
	})
	require.NoError(t, err)
	assert.True(t, fc.Saved)

	records := f.store.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "retrieval-user", records[0].UserID)
	assert.Equal(t, "Retrieval Name", records[0].Name)
}

func TestFinalize_NoSaveWithoutUserID(t *testing.T) {
	f := newCredentialFixture(t)
	pending := pendingCredential("cred-1")
	pending.Save = true
	require.NoError(t, f.vault.Put(context.Background(), pending))

	fc, err := f.service.Finalize(context.Background(), "cred-1", driving.FinalizeOptions{})
	require.NoError(t, err)
	assert.False(t, fc.Saved)
	assert.Empty(t, f.store.Records())
}

// A failing durable store must not cost the caller the tokens: the ephemeral
// copy is already gone by the time the save runs.
func TestFinalize_SaveFailureIsNonFatal(t *testing.T) {
	f := newCredentialFixture(t)
	f.store.SaveErr = errors.New("database unreachable")

	pending := pendingCredential("cred-1")
	pending.Save = true
	pending.UserID = "hub-user"
	require.NoError(t, f.vault.Put(context.Background(), pending))

	fc, err := f.service.Finalize(context.Background(), "cred-1", driving.FinalizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "T1", fc.AccessToken)
	assert.Equal(t, "R1", fc.RefreshToken)
	assert.False(t, fc.Saved)
	assert.NotEmpty(t, fc.SaveError)

	// The ephemeral copy stays gone regardless.
	_, err = f.service.Finalize(context.Background(), "cred-1", driving.FinalizeOptions{})
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

func TestFinalize_NoStoreConfigured(t *testing.T) {
	f := newCredentialFixture(t)
	f.service = NewCredentialService(CredentialServiceConfig{
		Vault:    f.vault,
		Registry: mocks.NewMockRegistry(googleConfig()),
		Store:    nil,
	})

	pending := pendingCredential("cred-1")
	pending.Save = true
	pending.UserID = "hub-user"
	require.NoError(t, f.vault.Put(context.Background(), pending))

	fc, err := f.service.Finalize(context.Background(), "cred-1", driving.FinalizeOptions{})
	require.NoError(t, err)
	assert.False(t, fc.Saved)
	assert.NotEmpty(t, fc.SaveError)
}

// Two concurrent retrievals of the same ID: exactly one wins.
func TestFinalize_ConcurrentRetrieval(t *testing.T) {
	f := newCredentialFixture(t)
	require.NoError(t, f.vault.Put(context.Background(), pendingCredential("cred-1")))

	const goroutines = 8
	var wg sync.WaitGroup
	results := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Finalize(context.Background(), "cred-1", driving.FinalizeOptions{})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, notFound int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrCredentialNotFound):
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, goroutines-1, notFound)
}
