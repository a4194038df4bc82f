package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/renohub/renohub/internal/service"
)

// RateLimitMiddleware provides fixed-window rate limiting per caller
type RateLimitMiddleware struct {
	rateLimitService *service.RateLimitService
	limit            int
	window           time.Duration
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(rateLimitService *service.RateLimitService, limit int, window time.Duration) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		limit:            limit,
		window:           window,
	}
}

// RateLimit checks and enforces rate limits
func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result := m.rateLimitService.Allow(ClientID(r), m.limit, m.window)

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", m.limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetAt.Unix()))

		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			http.Error(w, `{"error": "Rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientID resolves the caller identity for rate limiting. Requests
// without a reliable client address all share the "unknown" bucket.
func ClientID(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	return "unknown"
}
