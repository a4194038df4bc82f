package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/renohub/renohub/internal/domain"
)

// AlertStateRepository persists the alert dispatcher's baseline so that a
// restart does not duplicate alerts
type AlertStateRepository struct {
	db *sql.DB
}

// NewAlertStateRepository creates a new alert state repository
func NewAlertStateRepository(db *sql.DB) *AlertStateRepository {
	return &AlertStateRepository{db: db}
}

// Get returns the persisted alert state. A missing row means a fresh,
// empty baseline.
func (r *AlertStateRepository) Get(ctx context.Context) (*domain.AlertState, error) {
	query := `
		SELECT last_sent_alerts, last_summary_date, updated_at
		FROM alert_state
		WHERE id = 1
	`

	var (
		state  domain.AlertState
		alerts []byte
	)
	err := r.db.QueryRowContext(ctx, query).Scan(&alerts, &state.LastSummaryDate, &state.UpdatedAt)

	if err == sql.ErrNoRows {
		return &domain.AlertState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert state: %w", err)
	}

	if len(alerts) > 0 {
		if err := json.Unmarshal(alerts, &state.LastSentAlerts); err != nil {
			return nil, fmt.Errorf("failed to decode alert state: %w", err)
		}
	}

	return &state, nil
}

// Put replaces the persisted alert state
func (r *AlertStateRepository) Put(ctx context.Context, state *domain.AlertState) error {
	alerts, err := json.Marshal(state.LastSentAlerts)
	if err != nil {
		return fmt.Errorf("failed to encode alert state: %w", err)
	}

	query := `
		INSERT INTO alert_state (id, last_sent_alerts, last_summary_date, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			last_sent_alerts = EXCLUDED.last_sent_alerts,
			last_summary_date = EXCLUDED.last_summary_date,
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, alerts, state.LastSummaryDate); err != nil {
		return fmt.Errorf("failed to put alert state: %w", err)
	}

	return nil
}
