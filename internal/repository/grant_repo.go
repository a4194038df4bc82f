package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/renohub/renohub/internal/domain"
)

// GrantRepository handles time-boxed grant persistence
type GrantRepository struct {
	db *sql.DB
}

// NewGrantRepository creates a new grant repository
func NewGrantRepository(db *sql.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// GetGrants returns all grants for an account, expired ones included.
// Expiry pruning is the resolver's job (read-time compaction).
func (r *GrantRepository) GetGrants(ctx context.Context, account string) ([]domain.Grant, error) {
	query := `
		SELECT id, account, feature, granted_at, granted_days, expires_at
		FROM grants
		WHERE account = $1
		ORDER BY granted_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, account)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	defer rows.Close()

	var grants []domain.Grant
	for rows.Next() {
		var grant domain.Grant
		err := rows.Scan(
			&grant.ID,
			&grant.Account,
			&grant.Feature,
			&grant.GrantedAt,
			&grant.GrantedDays,
			&grant.ExpiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		grants = append(grants, grant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}

	return grants, nil
}

// PutGrants replaces the stored grant list for an account
func (r *GrantRepository) PutGrants(ctx context.Context, account string, grants []domain.Grant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM grants WHERE account = $1`, account); err != nil {
		return fmt.Errorf("failed to clear grants: %w", err)
	}

	insertQuery := `
		INSERT INTO grants (id, account, feature, granted_at, granted_days, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, grant := range grants {
		_, err := tx.ExecContext(ctx, insertQuery,
			grant.ID,
			grant.Account,
			grant.Feature,
			grant.GrantedAt,
			grant.GrantedDays,
			grant.ExpiresAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert grant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit grants: %w", err)
	}

	return nil
}
