package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/agentic-hub/hub-core/internal/core/domain"
	"github.com/agentic-hub/hub-core/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore implements driven.StateStore using PostgreSQL.
type StateStore struct {
	db *DB
}

// NewStateStore creates a new PostgreSQL-backed state store.
func NewStateStore(db *DB) *StateStore {
	return &StateStore{db: db}
}

// Save stores a new flow state.
func (s *StateStore) Save(ctx context.Context, state *domain.FlowState) error {
	query := `
		INSERT INTO oauth_flow_states
			(state, provider, integration_id, redirect_client, requested_scopes,
			 user_id, save, display_name, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		state.State,
		string(state.Provider),
		state.IntegrationID,
		state.RedirectClient,
		pq.Array(state.RequestedScopes),
		state.UserID,
		state.Save,
		state.DisplayName,
		state.CreatedAt,
		state.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save flow state: %w", err)
	}
	return nil
}

// Consume atomically retrieves and deletes the state.
// Uses DELETE ... RETURNING for atomic single-use semantics.
func (s *StateStore) Consume(ctx context.Context, token string) (*domain.FlowState, error) {
	query := `
		DELETE FROM oauth_flow_states
		WHERE state = $1 AND expires_at > NOW()
		RETURNING state, provider, integration_id, redirect_client, requested_scopes,
		          user_id, save, display_name, created_at, expires_at
	`

	var state domain.FlowState
	var provider string
	var scopes pq.StringArray
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&state.State,
		&provider,
		&state.IntegrationID,
		&state.RedirectClient,
		&scopes,
		&state.UserID,
		&state.Save,
		&state.DisplayName,
		&state.CreatedAt,
		&state.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Unknown, consumed or expired
	}
	if err != nil {
		return nil, fmt.Errorf("consume flow state: %w", err)
	}

	state.Provider = domain.Provider(provider)
	state.RequestedScopes = scopes
	return &state, nil
}

// Cleanup removes expired states.
func (s *StateStore) Cleanup(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM oauth_flow_states WHERE expires_at < NOW()`)
	if err != nil {
		return fmt.Errorf("cleanup flow states: %w", err)
	}
	return nil
}
