package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/renohub/renohub/internal/domain"
)

// TelemetryService keeps rolling request and error counters for the
// current hour. One global window for the whole process; it resets
// wholesale once it is older than an hour, checked lazily on every call.
// Nothing here is persisted — a restart starts a fresh window.
type TelemetryService struct {
	mu          sync.Mutex
	windowStart time.Time
	requests    int
	errors      int
	byEndpoint  map[string]int

	requestThreshold int
	errorRatePercent float64
	now              func() time.Time
}

// NewTelemetryService creates a new telemetry service with the given
// alert thresholds
func NewTelemetryService(requestThreshold int, errorRatePercent float64) *TelemetryService {
	s := &TelemetryService{
		requestThreshold: requestThreshold,
		errorRatePercent: errorRatePercent,
		now:              time.Now,
		byEndpoint:       make(map[string]int),
	}
	s.windowStart = s.now()
	return s
}

// Record counts one request against the current window
func (s *TelemetryService) Record(endpoint string, isError bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.maybeReset()

	s.requests++
	s.byEndpoint[endpoint]++
	if isError {
		s.errors++
	}
}

// Snapshot returns the current window with threshold alerts derived at
// call time
func (s *TelemetryService) Snapshot() *domain.UsageSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.maybeReset()

	byEndpoint := make(map[string]int, len(s.byEndpoint))
	for endpoint, count := range s.byEndpoint {
		byEndpoint[endpoint] = count
	}

	snap := &domain.UsageSnapshot{
		WindowStart: s.windowStart,
		Requests:    s.requests,
		Errors:      s.errors,
		ByEndpoint:  byEndpoint,
	}

	if snap.Requests > s.requestThreshold {
		snap.Alerts = append(snap.Alerts,
			fmt.Sprintf("High traffic: %d requests in the last hour", snap.Requests))
	}

	if rate := snap.ErrorRate(); rate > s.errorRatePercent {
		snap.Alerts = append(snap.Alerts,
			fmt.Sprintf("High error rate: %.1f%%", rate))
	}

	return snap
}

// maybeReset rolls the window over once it is older than an hour.
// Caller must hold the lock.
func (s *TelemetryService) maybeReset() {
	now := s.now()
	if now.Sub(s.windowStart) <= time.Hour {
		return
	}

	s.windowStart = now
	s.requests = 0
	s.errors = 0
	s.byEndpoint = make(map[string]int)
}
