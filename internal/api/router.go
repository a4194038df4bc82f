package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/renohub/renohub/internal/api/handlers"
	"github.com/renohub/renohub/internal/api/middleware"
	"github.com/renohub/renohub/internal/config"
	"github.com/renohub/renohub/internal/provider"
	"github.com/renohub/renohub/internal/repository"
	"github.com/renohub/renohub/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	authService *service.AuthService,
	authorizer *service.Authorizer,
	rateLimitService *service.RateLimitService,
	telemetryService *service.TelemetryService,
	entitlementService *service.EntitlementService,
	discountService *service.DiscountService,
	paymentService *service.PaymentService,
	providerClient *provider.Client,
	accountRepo *repository.AccountRepository,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)

	// Create handlers
	healthHandler := handlers.NewHealthHandler(accountRepo.GetDB())
	entitlementHandler := handlers.NewEntitlementHandler(entitlementService)
	discountHandler := handlers.NewDiscountHandler(discountService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, providerClient)
	adminHandler := handlers.NewAdminHandler(accountRepo, entitlementService, telemetryService)

	// Create middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)
	adminMiddleware := middleware.NewAdminMiddleware(authorizer)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(rateLimitService, cfg.RateLimit, cfg.RateLimitWindow)
	telemetryMiddleware := middleware.NewTelemetryMiddleware(telemetryService)

	// Health checks (no auth, no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(telemetryMiddleware.Track)
		r.Use(rateLimitMiddleware.RateLimit)

		// Provider callback (authenticated by payload, not by token)
		r.Post("/webhooks/payment", paymentHandler.Webhook)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/entitlements/{feature}", entitlementHandler.Check)

			r.Post("/discount/redeem", discountHandler.Redeem)
			r.Post("/discount/consume", discountHandler.Consume)

			r.Post("/payments/check", paymentHandler.Check)

			// Operator endpoints
			r.Route("/admin", func(r chi.Router) {
				r.Use(adminMiddleware.RequireAdmin)

				r.Post("/premium", adminHandler.AddPremium)
				r.Delete("/premium", adminHandler.RemovePremium)
				r.Post("/grants", adminHandler.AddGrant)
				r.Get("/stats", adminHandler.Stats)
			})
		})
	})

	return r
}
