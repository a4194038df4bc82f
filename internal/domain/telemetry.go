package domain

import "time"

// UsageSnapshot is a point-in-time view of the current telemetry window
type UsageSnapshot struct {
	WindowStart time.Time      `json:"window_start"`
	Requests    int            `json:"requests"`
	Errors      int            `json:"errors"`
	ByEndpoint  map[string]int `json:"by_endpoint"`
	Alerts      []string       `json:"alerts"`
}

// ErrorRate returns the error percentage for the window. Zero requests
// means a zero rate, never a division by zero.
func (s *UsageSnapshot) ErrorRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Requests) * 100
}
