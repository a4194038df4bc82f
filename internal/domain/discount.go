package domain

import "time"

// DiscountCode is a single-use, owner-bound discount code. UsedAt is set
// exactly once and is terminal.
type DiscountCode struct {
	Code            string     `json:"code"`
	OwnerAccount    string     `json:"owner_account"`
	DiscountPercent int        `json:"discount_percent"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	UsedAt          *time.Time `json:"used_at,omitempty"`
}

// RedeemResult is the outcome of a redemption attempt
type RedeemResult struct {
	Valid           bool `json:"valid"`
	DiscountPercent int  `json:"discount_percent,omitempty"`
}

// InvalidCode returns the single failure payload used for every failed
// redemption. Callers must not be able to tell a missing code from a
// foreign, used, or expired one.
func InvalidCode() *RedeemResult {
	return &RedeemResult{}
}
