package domain

import (
	"fmt"
	"strings"
	"time"
)

// Feature is a gated product feature
type Feature string

const (
	// FeaturePremium is the one-time-purchase feature set
	FeaturePremium Feature = "premium"
	// FeatureVision is the subscription-backed visualization feature
	FeatureVision Feature = "vision"
)

// ParseFeature validates a feature name from external input
func ParseFeature(s string) (Feature, error) {
	switch Feature(strings.ToLower(strings.TrimSpace(s))) {
	case FeaturePremium:
		return FeaturePremium, nil
	case FeatureVision:
		return FeatureVision, nil
	default:
		return "", fmt.Errorf("unknown feature: %q", s)
	}
}

// SubscriptionStatus represents the status of a feature subscription
type SubscriptionStatus string

const (
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// NormalizeAccount canonicalizes an account identity. All entitlement
// sources join on this value; comparisons are case-insensitive.
func NormalizeAccount(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Account represents an account's persisted entitlement state
type Account struct {
	ID            string     `json:"id"`
	PermanentFlag bool       `json:"permanent_flag"`
	PurchasedAt   *time.Time `json:"purchased_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AccessSource identifies which entitlement source granted access
type AccessSource string

const (
	SourcePermanentFlag      AccessSource = "permanent_flag"
	SourceActiveSubscription AccessSource = "active_subscription"
	SourceActiveGrant        AccessSource = "active_grant"
)

// AccessDecision is the resolved access decision for one account/feature pair
type AccessDecision struct {
	HasAccess bool         `json:"has_access"`
	Source    AccessSource `json:"source,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}
