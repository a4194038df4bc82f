package domain

import (
	"time"

	"github.com/google/uuid"
)

// Grant is a manually issued, time-boxed access window for a feature,
// independent of payment-provider state. An account holds at most one
// active grant per feature; new grants extend the active window
// cumulatively rather than replacing it.
type Grant struct {
	ID          uuid.UUID `json:"id"`
	Account     string    `json:"account"`
	Feature     Feature   `json:"feature"`
	GrantedAt   time.Time `json:"granted_at"`
	GrantedDays int       `json:"granted_days"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Active reports whether the grant window is still open. A grant whose
// expiry equals now is already expired.
func (g *Grant) Active(now time.Time) bool {
	return g.ExpiresAt.After(now)
}
