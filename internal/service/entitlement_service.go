package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/renohub/renohub/internal/domain"
)

// AccountStore is the account read surface the resolver needs
type AccountStore interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetSubscriptionStatus(ctx context.Context, id string, feature domain.Feature) (domain.SubscriptionStatus, error)
}

// GrantStore is the whole-list grant surface of the entitlement store
type GrantStore interface {
	GetGrants(ctx context.Context, account string) ([]domain.Grant, error)
	PutGrants(ctx context.Context, account string, grants []domain.Grant) error
}

// EntitlementService resolves feature access from the independent
// entitlement sources and manages time-boxed grants
type EntitlementService struct {
	accounts AccountStore
	grants   GrantStore
	now      func() time.Time
}

// NewEntitlementService creates a new entitlement service
func NewEntitlementService(accounts AccountStore, grants GrantStore) *EntitlementService {
	return &EntitlementService{
		accounts: accounts,
		grants:   grants,
		now:      time.Now,
	}
}

// ResolveAccess combines the entitlement sources into one access decision.
// Precedence, first match wins: permanent flag, active subscription,
// active grant. The clock is read once so every expiry comparison within
// one resolution agrees.
func (s *EntitlementService) ResolveAccess(ctx context.Context, account string, feature domain.Feature) (*domain.AccessDecision, error) {
	account = domain.NormalizeAccount(account)
	if account == "" {
		return nil, ErrInvalidAccount
	}

	now := s.now()

	acct, err := s.accounts.GetAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve access: %w", err)
	}
	if acct != nil && acct.PermanentFlag {
		return &domain.AccessDecision{HasAccess: true, Source: domain.SourcePermanentFlag}, nil
	}

	status, err := s.accounts.GetSubscriptionStatus(ctx, account, feature)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve access: %w", err)
	}
	if status == domain.SubscriptionActive {
		return &domain.AccessDecision{HasAccess: true, Source: domain.SourceActiveSubscription}, nil
	}

	grants, err := s.activeGrants(ctx, account, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve access: %w", err)
	}
	for i := range grants {
		if grants[i].Feature == feature {
			expiresAt := grants[i].ExpiresAt
			return &domain.AccessDecision{
				HasAccess: true,
				Source:    domain.SourceActiveGrant,
				ExpiresAt: &expiresAt,
			}, nil
		}
	}

	return &domain.AccessDecision{HasAccess: false}, nil
}

// ExtendGrant issues days of feature access. An active grant for the same
// feature is extended cumulatively; a lapsed or missing one is replaced
// outright with a fresh window.
func (s *EntitlementService) ExtendGrant(ctx context.Context, account string, feature domain.Feature, days int) (*domain.Grant, error) {
	account = domain.NormalizeAccount(account)
	if account == "" {
		return nil, ErrInvalidAccount
	}
	if days <= 0 {
		return nil, ErrInvalidGrant
	}

	now := s.now()

	all, err := s.grants.GetGrants(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to extend grant: %w", err)
	}

	keep := make([]domain.Grant, 0, len(all)+1)
	for _, grant := range all {
		if grant.Active(now) {
			keep = append(keep, grant)
		}
	}

	var result *domain.Grant
	for i := range keep {
		if keep[i].Feature == feature {
			keep[i].GrantedDays += days
			keep[i].ExpiresAt = keep[i].ExpiresAt.Add(time.Duration(days) * 24 * time.Hour)
			result = &keep[i]
			break
		}
	}

	if result == nil {
		grant := domain.Grant{
			ID:          uuid.New(),
			Account:     account,
			Feature:     feature,
			GrantedAt:   now,
			GrantedDays: days,
			ExpiresAt:   now.Add(time.Duration(days) * 24 * time.Hour),
		}
		keep = append(keep, grant)
		result = &keep[len(keep)-1]
	}

	if err := s.grants.PutGrants(ctx, account, keep); err != nil {
		return nil, fmt.Errorf("failed to extend grant: %w", err)
	}

	granted := *result
	return &granted, nil
}

// activeGrants reads the grant list and compacts it: anything expired is
// dropped from the persisted list before comparisons happen, so the store
// never accumulates history. A failed compaction write is logged, not
// fatal — the access decision only needs the pruned in-memory view.
func (s *EntitlementService) activeGrants(ctx context.Context, account string, now time.Time) ([]domain.Grant, error) {
	all, err := s.grants.GetGrants(ctx, account)
	if err != nil {
		return nil, err
	}

	keep := make([]domain.Grant, 0, len(all))
	for _, grant := range all {
		if grant.Active(now) {
			keep = append(keep, grant)
		}
	}

	if len(keep) != len(all) {
		if err := s.grants.PutGrants(ctx, account, keep); err != nil {
			log.Error().Err(err).Str("account", account).Msg("Failed to compact expired grants")
		}
	}

	return keep, nil
}
