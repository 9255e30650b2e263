// Package worker runs background maintenance for the flow stores.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/agentic-hub/hub-core/internal/core/ports/driven"
)

// DefaultSweepInterval is how often expired entries are removed.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper periodically removes expired flow states and pending credentials.
// Stores with native TTL treat Cleanup as a no-op; the sweeper exists for
// backends that only filter expiry on read.
type Sweeper struct {
	states driven.StateStore
	vault  driven.CredentialVault
	logger *slog.Logger

	interval time.Duration

	// Internal state
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// SweeperConfig holds configuration for the sweeper.
type SweeperConfig struct {
	States   driven.StateStore
	Vault    driven.CredentialVault
	Logger   *slog.Logger
	Interval time.Duration
}

// NewSweeper creates a new store sweeper.
func NewSweeper(cfg SweeperConfig) *Sweeper {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		states:   cfg.States,
		vault:    cfg.Vault,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the sweep loop. It runs until Stop is called or the context
// is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("sweeper starting", "interval", s.interval)

	go s.loop(ctx)
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if err := s.states.Cleanup(ctx); err != nil {
		s.logger.Error("flow state cleanup failed", "error", err)
	}
	if err := s.vault.Cleanup(ctx); err != nil {
		s.logger.Error("pending credential cleanup failed", "error", err)
	}
}

// Stop gracefully stops the sweeper and waits for the loop to exit.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	<-s.doneCh
	s.logger.Info("sweeper stopped")
}
