package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// appliedTTL bounds the dedup set. The provider stops redelivering a
// notification long before this.
const appliedTTL = 90 * 24 * time.Hour

// AppliedRepository tracks which provider transaction ids have already
// been applied, backed by Redis
type AppliedRepository struct {
	client *redis.Client
}

// NewAppliedRepository creates a new applied-transaction repository
func NewAppliedRepository(redisURL string) (*AppliedRepository, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &AppliedRepository{client: client}, nil
}

// MarkApplied atomically claims a transaction id. Returns false when the
// id was already claimed by an earlier delivery.
func (r *AppliedRepository) MarkApplied(ctx context.Context, transactionID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, appliedKey(transactionID), 1, appliedTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark transaction applied: %w", err)
	}
	return ok, nil
}

// Release gives a claimed transaction id back, used when the entitlement
// write behind it failed and the whole notification will be retried.
func (r *AppliedRepository) Release(ctx context.Context, transactionID string) error {
	if err := r.client.Del(ctx, appliedKey(transactionID)).Err(); err != nil {
		return fmt.Errorf("failed to release transaction: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *AppliedRepository) Close() error {
	return r.client.Close()
}

func appliedKey(transactionID string) string {
	return "applied_tx:" + transactionID
}
