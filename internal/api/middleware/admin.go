package middleware

import (
	"net/http"

	"github.com/renohub/renohub/internal/service"
)

// AdminMiddleware gates privileged operations behind the single admin
// policy object
type AdminMiddleware struct {
	authorizer *service.Authorizer
}

// NewAdminMiddleware creates a new admin middleware
func NewAdminMiddleware(authorizer *service.Authorizer) *AdminMiddleware {
	return &AdminMiddleware{
		authorizer: authorizer,
	}
}

// RequireAdmin rejects callers that are not operators
func (m *AdminMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := GetAccount(r.Context())
		if account == "" || !m.authorizer.IsAdmin(account) {
			http.Error(w, `{"error": "Forbidden"}`, http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
