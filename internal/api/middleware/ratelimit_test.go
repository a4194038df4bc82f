package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/renohub/renohub/internal/service"
)

func TestClientID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := ClientID(r); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded address, got %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Real-IP", "203.0.113.8")
	if got := ClientID(r); got != "203.0.113.8" {
		t.Fatalf("expected real ip, got %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	if got := ClientID(r); got != "unknown" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	m := NewRateLimitMiddleware(service.NewRateLimitService(), 2, time.Minute)
	handler := m.RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	makeRequest := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Real-IP", "203.0.113.9")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	first := makeRequest()
	if first.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", first.Code)
	}
	if first.Header().Get("X-RateLimit-Remaining") != "1" {
		t.Fatalf("expected remaining 1, got %q", first.Header().Get("X-RateLimit-Remaining"))
	}

	makeRequest()

	third := makeRequest()
	if third.Code != http.StatusTooManyRequests {
		t.Fatalf("third request should be limited, got %d", third.Code)
	}
	if third.Header().Get("Retry-After") == "" {
		t.Fatal("limited response should carry Retry-After")
	}
}
