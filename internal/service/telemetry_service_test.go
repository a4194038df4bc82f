package service

import (
	"strings"
	"testing"
	"time"
)

func TestTelemetryCountsRequestsAndErrors(t *testing.T) {
	s := NewTelemetryService(500, 10)

	s.Record("/api/v1/entitlements/vision", false)
	s.Record("/api/v1/entitlements/vision", false)
	s.Record("/api/v1/discount/redeem", true)

	snap := s.Snapshot()
	if snap.Requests != 3 {
		t.Fatalf("expected 3 requests, got %d", snap.Requests)
	}
	if snap.Errors != 1 {
		t.Fatalf("expected 1 error, got %d", snap.Errors)
	}
	if snap.ByEndpoint["/api/v1/entitlements/vision"] != 2 {
		t.Fatalf("expected 2 requests for the entitlement endpoint, got %d", snap.ByEndpoint["/api/v1/entitlements/vision"])
	}
}

func TestTelemetryErrorRateZeroGuard(t *testing.T) {
	s := NewTelemetryService(500, 10)

	snap := s.Snapshot()
	if rate := snap.ErrorRate(); rate != 0 {
		t.Fatalf("empty window should report 0%% error rate, got %.1f", rate)
	}
	if len(snap.Alerts) != 0 {
		t.Fatalf("empty window should raise no alerts, got %v", snap.Alerts)
	}
}

func TestTelemetryTrafficAlertAboveThreshold(t *testing.T) {
	s := NewTelemetryService(5, 100)

	for i := 0; i < 5; i++ {
		s.Record("/x", false)
	}
	if alerts := s.Snapshot().Alerts; len(alerts) != 0 {
		t.Fatalf("at the threshold no alert should fire, got %v", alerts)
	}

	s.Record("/x", false)
	alerts := s.Snapshot().Alerts
	if len(alerts) != 1 || !strings.Contains(alerts[0], "High traffic") {
		t.Fatalf("expected one traffic alert above the threshold, got %v", alerts)
	}
}

func TestTelemetryErrorRateAlert(t *testing.T) {
	s := NewTelemetryService(500, 10)

	// 2 errors out of 10 requests: 20%
	for i := 0; i < 8; i++ {
		s.Record("/x", false)
	}
	s.Record("/x", true)
	s.Record("/x", true)

	alerts := s.Snapshot().Alerts
	if len(alerts) != 1 || !strings.Contains(alerts[0], "High error rate: 20.0%") {
		t.Fatalf("expected error rate alert, got %v", alerts)
	}
}

func TestTelemetryWindowRollsOverAfterAnHour(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewTelemetryService(500, 10)
	s.now = func() time.Time { return current }
	s.windowStart = current

	s.Record("/x", true)

	// Exactly one hour old still counts as the same window
	current = current.Add(time.Hour)
	s.Record("/x", false)
	if snap := s.Snapshot(); snap.Requests != 2 {
		t.Fatalf("window exactly an hour old should still accumulate, got %d requests", snap.Requests)
	}

	current = current.Add(time.Second)
	snap := s.Snapshot()
	if snap.Requests != 0 || snap.Errors != 0 {
		t.Fatalf("expected fresh window after rollover, got %d requests %d errors", snap.Requests, snap.Errors)
	}
	if !snap.WindowStart.Equal(current) {
		t.Fatalf("rolled window should start now, got %v", snap.WindowStart)
	}
}
