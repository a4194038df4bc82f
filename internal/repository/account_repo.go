package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/renohub/renohub/internal/domain"
)

// AccountRepository handles account entitlement persistence
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new account repository and opens the
// database connection shared by the other repositories
func NewAccountRepository(databaseURL string) (*AccountRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &AccountRepository{db: db}, nil
}

// GetDB returns the underlying database connection for sharing with other repositories
func (r *AccountRepository) GetDB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *AccountRepository) Close() error {
	return r.db.Close()
}

// GetAccount finds an account by its normalized identity
func (r *AccountRepository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	query := `
		SELECT id, permanent_flag, purchased_at, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var account domain.Account
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.PermanentFlag,
		&account.PurchasedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	return &account, nil
}

// SetPermanentFlag sets or clears the permanent entitlement flag. The
// purchase timestamp is kept from the first set; clearing the flag (an
// explicit admin action) clears it too. Single-statement upsert so
// concurrent callers never race a read-modify-write.
func (r *AccountRepository) SetPermanentFlag(ctx context.Context, id string, flag bool) error {
	query := `
		INSERT INTO accounts (id, permanent_flag, purchased_at, created_at, updated_at)
		VALUES ($1, $2, CASE WHEN $2 THEN NOW() END, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			permanent_flag = EXCLUDED.permanent_flag,
			purchased_at = CASE WHEN EXCLUDED.permanent_flag
				THEN COALESCE(accounts.purchased_at, NOW())
				ELSE NULL END,
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, id, flag); err != nil {
		return fmt.Errorf("failed to set permanent flag: %w", err)
	}

	return nil
}

// GetSubscriptionStatus returns the subscription status for an account and
// feature. A missing row means inactive.
func (r *AccountRepository) GetSubscriptionStatus(ctx context.Context, id string, feature domain.Feature) (domain.SubscriptionStatus, error) {
	query := `
		SELECT status
		FROM subscriptions
		WHERE account = $1 AND feature = $2
	`

	var raw string
	err := r.db.QueryRowContext(ctx, query, id, feature).Scan(&raw)

	if err == sql.ErrNoRows {
		return domain.SubscriptionInactive, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get subscription status: %w", err)
	}

	return normalizeStatus(raw), nil
}

// SetSubscriptionStatus upserts the subscription status for an account and feature
func (r *AccountRepository) SetSubscriptionStatus(ctx context.Context, id string, feature domain.Feature, status domain.SubscriptionStatus) error {
	query := `
		INSERT INTO subscriptions (account, feature, status, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (account, feature) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, id, feature, status); err != nil {
		return fmt.Errorf("failed to set subscription status: %w", err)
	}

	return nil
}

// Stats returns aggregate account counts
func (r *AccountRepository) Stats(ctx context.Context) (*domain.StatsReport, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM accounts),
			(SELECT COUNT(*) FROM accounts WHERE permanent_flag = true),
			(SELECT COUNT(*) FROM subscriptions WHERE status = 'active')
	`

	var report domain.StatsReport
	err := r.db.QueryRowContext(ctx, query).Scan(
		&report.TotalAccounts,
		&report.PremiumAccounts,
		&report.ActiveSubscriptions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get account stats: %w", err)
	}

	return &report, nil
}

// normalizeStatus converts legacy status representations to the tri-state
// enum. Older rows stored booleans ("true"/"t") instead of status strings;
// the conversion happens once here so nothing downstream branches on the
// raw representation.
func normalizeStatus(raw string) domain.SubscriptionStatus {
	switch raw {
	case "active", "true", "t", "1":
		return domain.SubscriptionActive
	case "canceled", "cancelled":
		return domain.SubscriptionCanceled
	default:
		return domain.SubscriptionInactive
	}
}
