package memory

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentic-hub/hub-core/internal/core/domain"
	"github.com/agentic-hub/hub-core/internal/core/ports/driven"
)

// Ensure CredentialVault implements the interface.
var _ driven.CredentialVault = (*CredentialVault)(nil)

// CredentialVault parks pending credentials in an expiring in-process cache.
type CredentialVault struct {
	// mu serializes Take so concurrent retrievals of one ID cannot both win.
	mu sync.Mutex
	c  *gocache.Cache
}

// NewCredentialVault creates an in-process credential vault.
func NewCredentialVault(defaultTTL time.Duration) *CredentialVault {
	return &CredentialVault{c: gocache.New(defaultTTL, time.Minute)}
}

func (v *CredentialVault) Put(ctx context.Context, cred *domain.PendingCredential) error {
	v.c.Set(cred.ID, cred, time.Until(cred.ExpiresAt))
	return nil
}

func (v *CredentialVault) Take(ctx context.Context, id string) (*domain.PendingCredential, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	val, ok := v.c.Get(id)
	if !ok {
		return nil, nil
	}
	v.c.Delete(id)

	cred, ok := val.(*domain.PendingCredential)
	if !ok || cred.Expired(time.Now()) {
		return nil, nil
	}
	return cred, nil
}

// Cleanup is a no-op: the cache janitor evicts expired entries itself.
func (v *CredentialVault) Cleanup(ctx context.Context) error {
	return nil
}
