package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/renohub/renohub/internal/domain"
)

// EntitlementWriter is the mutating account surface of the entitlement store
type EntitlementWriter interface {
	SetPermanentFlag(ctx context.Context, id string, flag bool) error
	SetSubscriptionStatus(ctx context.Context, id string, feature domain.Feature, status domain.SubscriptionStatus) error
}

// GrantExtender issues or extends time-boxed grants
type GrantExtender interface {
	ExtendGrant(ctx context.Context, account string, feature domain.Feature, days int) (*domain.Grant, error)
}

// AppliedSet tracks provider transaction ids that already mutated state
type AppliedSet interface {
	MarkApplied(ctx context.Context, transactionID string) (bool, error)
	Release(ctx context.Context, transactionID string) error
}

// DiscountConsumer marks a discount code used once its purchase completes
type DiscountConsumer interface {
	MarkUsed(ctx context.Context, code string) (*domain.RedeemResult, error)
}

// TransactionLog records applied notifications for auditing
type TransactionLog interface {
	Insert(ctx context.Context, tx *domain.Transaction) error
}

// PaymentService reconciles payment-provider notifications against the
// application's entitlement state. The provider delivers at least once and
// a polling fallback feeds the same entry point, so every mutation here
// must tolerate duplicate and racing deliveries.
type PaymentService struct {
	accounts  EntitlementWriter
	grants    GrantExtender
	discounts DiscountConsumer
	applied   AppliedSet
	audit     TransactionLog
}

// NewPaymentService creates a new payment service
func NewPaymentService(accounts EntitlementWriter, grants GrantExtender, discounts DiscountConsumer, applied AppliedSet, audit TransactionLog) *PaymentService {
	return &PaymentService{
		accounts:  accounts,
		grants:    grants,
		discounts: discounts,
		applied:   applied,
		audit:     audit,
	}
}

// ApplyNotification applies one provider notification to entitlement
// state. Non-success status codes are reported without mutating anything;
// the provider or the poll schedule retries them. A store failure aborts
// with no partial mutation and the whole notification is expected again.
func (s *PaymentService) ApplyNotification(ctx context.Context, event *domain.ProviderEvent) (*domain.ReconcileResult, error) {
	account := domain.NormalizeAccount(event.Account)
	if event.TransactionID == "" || account == "" {
		return nil, ErrInvalidEvent
	}

	result := &domain.ReconcileResult{Account: account}

	if event.Cancellation {
		// Canceled means "will not renew". Access already paid for is not
		// revoked here; the resolver simply stops honoring the subscription
		// once its status is no longer active.
		if err := s.accounts.SetSubscriptionStatus(ctx, account, domain.FeatureVision, domain.SubscriptionCanceled); err != nil {
			return nil, fmt.Errorf("failed to apply cancellation: %w", err)
		}
		result.Applied = true
		result.Feature = domain.FeatureVision
		s.recordTransaction(ctx, event, account, "cancelled")
		return result, nil
	}

	if !event.Succeeded() {
		log.Info().
			Str("transaction_id", event.TransactionID).
			Str("status_code", event.StatusCode).
			Msg("Provider transaction not yet successful, nothing applied")
		return result, nil
	}

	switch event.ProductClass {
	case domain.ProductPremium:
		// Setting the flag is naturally idempotent, no dedup needed
		if err := s.accounts.SetPermanentFlag(ctx, account, true); err != nil {
			return nil, fmt.Errorf("failed to apply premium purchase: %w", err)
		}
		result.Feature = domain.FeaturePremium

	case domain.ProductPremiumPlus:
		if err := s.accounts.SetPermanentFlag(ctx, account, true); err != nil {
			return nil, fmt.Errorf("failed to apply premium purchase: %w", err)
		}
		if err := s.accounts.SetSubscriptionStatus(ctx, account, domain.FeatureVision, domain.SubscriptionActive); err != nil {
			return nil, fmt.Errorf("failed to apply bundled subscription: %w", err)
		}
		result.Feature = domain.FeaturePremium

	case domain.ProductVision:
		if err := s.accounts.SetSubscriptionStatus(ctx, account, domain.FeatureVision, domain.SubscriptionActive); err != nil {
			return nil, fmt.Errorf("failed to apply subscription: %w", err)
		}
		result.Feature = domain.FeatureVision

	case domain.ProductVisionPass:
		// Extending a window is not idempotent, so the transaction id is
		// claimed before the additive mutation.
		claimed, err := s.applied.MarkApplied(ctx, event.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("failed to check applied transactions: %w", err)
		}
		if !claimed {
			log.Info().
				Str("transaction_id", event.TransactionID).
				Msg("Duplicate delivery for already-applied transaction, skipping")
			return result, nil
		}
		if _, err := s.grants.ExtendGrant(ctx, account, domain.FeatureVision, domain.VisionPassDays); err != nil {
			// Give the claim back so the provider's retry can reapply
			if releaseErr := s.applied.Release(ctx, event.TransactionID); releaseErr != nil {
				log.Error().Err(releaseErr).
					Str("transaction_id", event.TransactionID).
					Msg("Failed to release transaction claim after failed grant write")
			}
			return nil, fmt.Errorf("failed to apply vision pass: %w", err)
		}
		result.Feature = domain.FeatureVision

	default:
		// Unknown product classes are ignored rather than upserted blindly;
		// a future product must not corrupt entitlement state.
		log.Warn().
			Str("transaction_id", event.TransactionID).
			Str("product_class", string(event.ProductClass)).
			Msg("Unknown product class in provider notification, ignoring")
		return result, nil
	}

	result.Applied = true

	if event.DiscountCode != "" {
		// Best effort: the purchase already went through, so a failure to
		// consume the code must not fail the reconciliation.
		if _, err := s.discounts.MarkUsed(ctx, event.DiscountCode); err != nil {
			log.Error().Err(err).
				Str("transaction_id", event.TransactionID).
				Msg("Failed to mark discount code used")
		}
	}

	s.recordTransaction(ctx, event, account, "completed")

	return result, nil
}

func (s *PaymentService) recordTransaction(ctx context.Context, event *domain.ProviderEvent, account, status string) {
	if s.audit == nil {
		return
	}

	tx := &domain.Transaction{
		TransactionID: event.TransactionID,
		Account:       account,
		ProductClass:  event.ProductClass,
		AmountCents:   event.AmountCents,
		Status:        status,
		DiscountCode:  event.DiscountCode,
	}
	if err := s.audit.Insert(ctx, tx); err != nil {
		log.Error().Err(err).
			Str("transaction_id", event.TransactionID).
			Msg("Failed to record transaction")
	}
}
