package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

// countingStore counts Cleanup calls on both interfaces.
type countingStore struct {
	cleanups atomic.Int64
}

func (c *countingStore) Save(ctx context.Context, state *domain.FlowState) error { return nil }
func (c *countingStore) Consume(ctx context.Context, token string) (*domain.FlowState, error) {
	return nil, nil
}
func (c *countingStore) Put(ctx context.Context, cred *domain.PendingCredential) error { return nil }
func (c *countingStore) Take(ctx context.Context, id string) (*domain.PendingCredential, error) {
	return nil, nil
}
func (c *countingStore) Cleanup(ctx context.Context) error {
	c.cleanups.Add(1)
	return nil
}

func TestSweeper_RunsCleanupPeriodically(t *testing.T) {
	states := &countingStore{}
	vault := &countingStore{}

	s := NewSweeper(SweeperConfig{
		States:   states,
		Vault:    vault,
		Interval: 10 * time.Millisecond,
	})
	s.Start(context.Background())

	assert.Eventually(t, func() bool {
		return states.cleanups.Load() >= 2 && vault.cleanups.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	s.Stop()
}

func TestSweeper_StopIsIdempotent(t *testing.T) {
	s := NewSweeper(SweeperConfig{
		States:   &countingStore{},
		Vault:    &countingStore{},
		Interval: time.Hour,
	})
	s.Start(context.Background())
	s.Stop()
	s.Stop() // second call is a no-op

	// Start after stop works again.
	s.Start(context.Background())
	s.Stop()
}

func TestSweeper_ContextCancellationStopsLoop(t *testing.T) {
	states := &countingStore{}
	s := NewSweeper(SweeperConfig{
		States:   states,
		Vault:    &countingStore{},
		Interval: 5 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	// The loop exits; doneCh closes without Stop.
	select {
	case <-s.doneCh:
	case <-time.After(time.Second):
		t.Fatal("sweeper loop did not exit on context cancellation")
	}
}
