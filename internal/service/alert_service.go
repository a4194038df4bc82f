package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/renohub/renohub/internal/domain"
)

// Channel delivers alert text to the external messaging channel. A
// positive retryAfter means the channel is throttling and the message was
// not delivered.
type Channel interface {
	Send(ctx context.Context, text string) (retryAfter time.Duration, err error)
}

// AlertStateStore persists the dispatcher baseline between ticks
type AlertStateStore interface {
	Get(ctx context.Context) (*domain.AlertState, error)
	Put(ctx context.Context, state *domain.AlertState) error
}

// SnapshotProvider supplies the current telemetry window
type SnapshotProvider interface {
	Snapshot() *domain.UsageSnapshot
}

// StatsProvider supplies account totals for alert context and summaries
type StatsProvider interface {
	Stats(ctx context.Context) (*domain.StatsReport, error)
}

// AlertService diffs the current alert set against the previously sent
// one, dispatches only the new members, and posts a daily summary once per
// UTC day
type AlertService struct {
	state     AlertStateStore
	channel   Channel
	telemetry SnapshotProvider
	stats     StatsProvider

	summaryHour int
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewAlertService creates a new alert service. summaryHour is the UTC
// hour-of-day at which the daily summary fires.
func NewAlertService(state AlertStateStore, channel Channel, telemetry SnapshotProvider, stats StatsProvider, summaryHour int) *AlertService {
	return &AlertService{
		state:       state,
		channel:     channel,
		telemetry:   telemetry,
		stats:       stats,
		summaryHour: summaryHour,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Tick runs one dispatch cycle and returns the alerts that were sent.
// The full current alert set becomes the new baseline regardless of what
// was dispatched, so a condition that clears and later recurs re-notifies.
func (s *AlertService) Tick(ctx context.Context) ([]string, error) {
	snap := s.telemetry.Snapshot()

	report, err := s.stats.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to gather stats: %w", err)
	}

	state, err := s.state.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert state: %w", err)
	}

	current := snap.Alerts

	var sent []string
	if newAlerts := difference(current, state.LastSentAlerts); len(newAlerts) > 0 {
		if err := s.deliver(ctx, formatAlerts(newAlerts, report, snap)); err != nil {
			log.Error().Err(err).Int("alerts", len(newAlerts)).Msg("Failed to deliver alerts")
		} else {
			sent = newAlerts
		}
	}

	now := s.now().UTC()
	today := now.Format("2006-01-02")
	if now.Hour() == s.summaryHour && state.LastSummaryDate != today {
		if err := s.deliver(ctx, formatSummary(report, snap)); err != nil {
			log.Error().Err(err).Msg("Failed to deliver daily summary")
		} else {
			state.LastSummaryDate = today
		}
	}

	state.LastSentAlerts = current
	if err := s.state.Put(ctx, state); err != nil {
		return sent, fmt.Errorf("failed to save alert state: %w", err)
	}

	return sent, nil
}

// Run ticks on the given interval until the context is cancelled
func (s *AlertService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				log.Error().Err(err).Msg("Alert tick failed")
			}
		}
	}
}

// deliver sends one message, honoring a throttle signal with a single
// retry. A message is never dropped without at least that one retry.
func (s *AlertService) deliver(ctx context.Context, text string) error {
	retryAfter, err := s.channel.Send(ctx, text)
	if err != nil {
		return err
	}
	if retryAfter <= 0 {
		return nil
	}

	if err := s.sleep(ctx, retryAfter); err != nil {
		return err
	}

	retryAfter, err = s.channel.Send(ctx, text)
	if err != nil {
		return err
	}
	if retryAfter > 0 {
		return ErrChannelThrottled
	}
	return nil
}

// difference returns the members of current that are not in previous,
// preserving order
func difference(current, previous []string) []string {
	seen := make(map[string]struct{}, len(previous))
	for _, alert := range previous {
		seen[alert] = struct{}{}
	}

	var diff []string
	for _, alert := range current {
		if _, ok := seen[alert]; !ok {
			diff = append(diff, alert)
		}
	}
	return diff
}

func formatAlerts(alerts []string, report *domain.StatsReport, snap *domain.UsageSnapshot) string {
	lines := []string{"**RenoHub Alert**", ""}
	for _, alert := range alerts {
		lines = append(lines, "• "+alert)
	}
	lines = append(lines, "",
		fmt.Sprintf("Accounts: %d (%d premium, %d active subscriptions)",
			report.TotalAccounts, report.PremiumAccounts, report.ActiveSubscriptions),
		fmt.Sprintf("This hour: %d requests, %.1f%% errors", snap.Requests, snap.ErrorRate()),
	)
	return strings.Join(lines, "\n")
}

func formatSummary(report *domain.StatsReport, snap *domain.UsageSnapshot) string {
	lines := []string{
		"**RenoHub Daily Summary**",
		"",
		fmt.Sprintf("Total accounts: %d", report.TotalAccounts),
		fmt.Sprintf("Premium: %d", report.PremiumAccounts),
		fmt.Sprintf("Active subscriptions: %d", report.ActiveSubscriptions),
		"",
		fmt.Sprintf("Current hour: %d requests, %d errors", snap.Requests, snap.Errors),
	}
	return strings.Join(lines, "\n")
}

// sleepContext waits for the duration or until the context is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
