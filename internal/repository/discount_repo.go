package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/renohub/renohub/internal/domain"
)

// DiscountRepository handles discount code persistence
type DiscountRepository struct {
	db *sql.DB
}

// NewDiscountRepository creates a new discount repository
func NewDiscountRepository(db *sql.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

// GetCode finds a discount code by its value
func (r *DiscountRepository) GetCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	query := `
		SELECT code, owner_account, discount_percent, created_at, expires_at, used_at
		FROM discount_codes
		WHERE code = $1
	`

	var dc domain.DiscountCode
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&dc.Code,
		&dc.OwnerAccount,
		&dc.DiscountPercent,
		&dc.CreatedAt,
		&dc.ExpiresAt,
		&dc.UsedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find discount code: %w", err)
	}

	return &dc, nil
}

// MarkUsed sets used_at on a code, conditioned on it still being unset.
// Returns false when another caller got there first (or the code does not
// exist) so concurrent redemption attempts resolve to exactly one winner.
func (r *DiscountRepository) MarkUsed(ctx context.Context, code string) (bool, error) {
	query := `
		UPDATE discount_codes
		SET used_at = NOW()
		WHERE code = $1 AND used_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, code)
	if err != nil {
		return false, fmt.Errorf("failed to mark discount code used: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to mark discount code used: %w", err)
	}

	return affected == 1, nil
}
