package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

func flowState(token string, ttl time.Duration) *domain.FlowState {
	now := time.Now()
	return &domain.FlowState{
		State:          token,
		Provider:       domain.ProviderGoogle,
		IntegrationID:  "abc",
		RedirectClient: "http://localhost:5173",
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}
}

func pending(id string, ttl time.Duration) *domain.PendingCredential {
	now := time.Now()
	return &domain.PendingCredential{
		ID:        id,
		Provider:  domain.ProviderGoogle,
		Grant:     domain.TokenGrant{AccessToken: "T1"},
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestStateStore_ConsumeOnce(t *testing.T) {
	s := NewStateStore(time.Hour)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, flowState("st-1", time.Hour)))

	got, err := s.Consume(ctx, "st-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ProviderGoogle, got.Provider)
	assert.Equal(t, "abc", got.IntegrationID)

	again, err := s.Consume(ctx, "st-1")
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestStateStore_UnknownToken(t *testing.T) {
	s := NewStateStore(time.Hour)

	got, err := s.Consume(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStateStore_ExpiredToken(t *testing.T) {
	s := NewStateStore(time.Hour)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, flowState("st-old", -time.Minute)))

	got, err := s.Consume(ctx, "st-old")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStateStore_ConcurrentConsume(t *testing.T) {
	s := NewStateStore(time.Hour)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, flowState("st-race", time.Hour)))

	const goroutines = 16
	var wg sync.WaitGroup
	wins := make(chan *domain.FlowState, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Consume(ctx, "st-race")
			assert.NoError(t, err)
			if got != nil {
				wins <- got
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)
}

func TestCredentialVault_TakeOnce(t *testing.T) {
	v := NewCredentialVault(time.Hour)
	ctx := context.Background()
	require.NoError(t, v.Put(ctx, pending("cred-1", time.Hour)))

	got, err := v.Take(ctx, "cred-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "T1", got.Grant.AccessToken)

	again, err := v.Take(ctx, "cred-1")
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestCredentialVault_Expired(t *testing.T) {
	v := NewCredentialVault(time.Hour)
	ctx := context.Background()
	require.NoError(t, v.Put(ctx, pending("cred-old", -time.Minute)))

	got, err := v.Take(ctx, "cred-old")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCredentialVault_ConcurrentTake(t *testing.T) {
	v := NewCredentialVault(time.Hour)
	ctx := context.Background()
	require.NoError(t, v.Put(ctx, pending("cred-race", time.Hour)))

	const goroutines = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := v.Take(ctx, "cred-race")
			assert.NoError(t, err)
			if got != nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)
}
