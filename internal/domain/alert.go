package domain

import "time"

// AlertState is the dispatcher's persisted baseline. Keeping it in the
// store means a restart does not re-send alerts that already went out.
type AlertState struct {
	LastSentAlerts  []string  `json:"last_sent_alerts"`
	LastSummaryDate string    `json:"last_summary_date"` // UTC, "2006-01-02"
	UpdatedAt       time.Time `json:"updated_at"`
}

// StatsReport aggregates account totals for the admin stats endpoint and
// the daily summary message
type StatsReport struct {
	TotalAccounts       int `json:"total_accounts"`
	PremiumAccounts     int `json:"premium_accounts"`
	ActiveSubscriptions int `json:"active_subscriptions"`
}
