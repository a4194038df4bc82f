package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/renohub/renohub/internal/domain"
)

// DiscountStore is the discount code surface of the entitlement store
type DiscountStore interface {
	GetCode(ctx context.Context, code string) (*domain.DiscountCode, error)
	MarkUsed(ctx context.Context, code string) (bool, error)
}

// DiscountService validates and consumes single-use discount codes.
// Every failed validation returns the one generic invalid result: callers
// must not learn whether a code exists, who owns it, or whether it merely
// expired.
type DiscountService struct {
	codes DiscountStore
	now   func() time.Time
}

// NewDiscountService creates a new discount service
func NewDiscountService(codes DiscountStore) *DiscountService {
	return &DiscountService{
		codes: codes,
		now:   time.Now,
	}
}

// Redeem checks whether a code is redeemable by the given account. It is
// read-only and may be called any number of times before the purchase
// completes.
func (s *DiscountService) Redeem(ctx context.Context, code, account string) (*domain.RedeemResult, error) {
	code = normalizeCode(code)
	account = domain.NormalizeAccount(account)
	if code == "" || account == "" {
		return domain.InvalidCode(), nil
	}

	dc, err := s.codes.GetCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem code: %w", err)
	}

	now := s.now()

	switch {
	case dc == nil:
		return domain.InvalidCode(), nil
	case domain.NormalizeAccount(dc.OwnerAccount) != account:
		return domain.InvalidCode(), nil
	case dc.UsedAt != nil:
		return domain.InvalidCode(), nil
	case !dc.ExpiresAt.After(now):
		return domain.InvalidCode(), nil
	}

	return &domain.RedeemResult{Valid: true, DiscountPercent: dc.DiscountPercent}, nil
}

// MarkUsed consumes a code after the purchase it discounted is confirmed.
// The store update is conditioned on used_at still being unset; the loser
// of a concurrent race gets the same generic invalid result.
func (s *DiscountService) MarkUsed(ctx context.Context, code string) (*domain.RedeemResult, error) {
	code = normalizeCode(code)
	if code == "" {
		return domain.InvalidCode(), nil
	}

	applied, err := s.codes.MarkUsed(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to mark code used: %w", err)
	}
	if !applied {
		return domain.InvalidCode(), nil
	}

	return &domain.RedeemResult{Valid: true}, nil
}

// normalizeCode canonicalizes a discount code. Codes are stored upper-case.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
