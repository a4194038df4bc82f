package middleware

import (
	"net/http"

	"github.com/renohub/renohub/internal/service"
)

// TelemetryMiddleware records request and error volume per endpoint
type TelemetryMiddleware struct {
	telemetryService *service.TelemetryService
}

// NewTelemetryMiddleware creates a new telemetry middleware
func NewTelemetryMiddleware(telemetryService *service.TelemetryService) *TelemetryMiddleware {
	return &TelemetryMiddleware{
		telemetryService: telemetryService,
	}
}

// Track counts the request in the current telemetry window. 5xx responses
// count as errors; 4xx is caller fault and stays out of the error rate.
func (m *TelemetryMiddleware) Track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		m.telemetryService.Record(r.URL.Path, wrapped.statusCode >= http.StatusInternalServerError)
	})
}
