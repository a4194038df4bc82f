package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/renohub/renohub/internal/domain"
)

// TransactionRepository records applied provider notifications for auditing
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Insert records a transaction. Duplicate transaction ids are ignored so
// redelivered notifications do not error here.
func (r *TransactionRepository) Insert(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, account, product_class, amount_cents, status, discount_code, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NOW())
		ON CONFLICT (transaction_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.TransactionID,
		tx.Account,
		tx.ProductClass,
		tx.AmountCents,
		tx.Status,
		tx.DiscountCode,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}
