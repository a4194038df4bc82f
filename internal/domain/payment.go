package domain

import "time"

// ProductClass identifies the purchased product in a provider notification
type ProductClass string

const (
	// ProductPremium is the one-time lifetime purchase
	ProductPremium ProductClass = "premium"
	// ProductPremiumPlus is premium bundled with a vision subscription
	ProductPremiumPlus ProductClass = "premium_plus"
	// ProductVision is the recurring vision subscription
	ProductVision ProductClass = "vision"
	// ProductVisionPass is a prepaid, time-boxed vision window
	ProductVisionPass ProductClass = "vision_pass"
)

// VisionPassDays is the window length one vision pass purchase adds.
const VisionPassDays = 30

// ProviderEvent is a payment-provider notification, either pushed to the
// webhook or pulled from the provider's status endpoint. Both paths
// normalize to this shape before reconciliation.
type ProviderEvent struct {
	TransactionID string       `json:"transaction_id"`
	StatusCode    string       `json:"status_code"`
	Account       string       `json:"account"`
	ProductClass  ProductClass `json:"product_class"`
	DiscountCode  string       `json:"discount_code,omitempty"`
	Cancellation  bool         `json:"cancellation,omitempty"`
	AmountCents   int          `json:"amount_cents,omitempty"`
}

// Succeeded reports whether the provider considers the transaction
// complete. The provider uses "0" on callbacks and "000" on the status
// endpoint; everything else is not-yet-successful.
func (e *ProviderEvent) Succeeded() bool {
	return e.StatusCode == "0" || e.StatusCode == "000"
}

// ReconcileResult reports what a notification did to entitlement state
type ReconcileResult struct {
	Applied bool    `json:"applied"`
	Account string  `json:"account"`
	Feature Feature `json:"feature,omitempty"`
}

// Transaction is an audit record of an applied provider notification
type Transaction struct {
	TransactionID string       `json:"transaction_id"`
	Account       string       `json:"account"`
	ProductClass  ProductClass `json:"product_class"`
	AmountCents   int          `json:"amount_cents"`
	Status        string       `json:"status"`
	DiscountCode  string       `json:"discount_code,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
