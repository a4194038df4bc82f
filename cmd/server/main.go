package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/renohub/renohub/internal/api"
	"github.com/renohub/renohub/internal/config"
	"github.com/renohub/renohub/internal/notify"
	"github.com/renohub/renohub/internal/provider"
	"github.com/renohub/renohub/internal/repository"
	"github.com/renohub/renohub/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogging(cfg.LogLevel)

	// Initialize repositories
	accountRepo, err := repository.NewAccountRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer accountRepo.Close()

	// Shared database connection for the other repositories
	db := accountRepo.GetDB()

	grantRepo := repository.NewGrantRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	alertStateRepo := repository.NewAlertStateRepository(db)

	appliedRepo, err := repository.NewAppliedRepository(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer appliedRepo.Close()

	// Initialize services
	authService := service.NewAuthService(cfg.JWTSecret)
	authorizer := service.NewAuthorizer(cfg.AdminEmails)
	rateLimitService := service.NewRateLimitService()
	telemetryService := service.NewTelemetryService(cfg.RequestThreshold, cfg.ErrorRatePercent)
	entitlementService := service.NewEntitlementService(accountRepo, grantRepo)
	discountService := service.NewDiscountService(discountRepo)
	paymentService := service.NewPaymentService(accountRepo, entitlementService, discountService, appliedRepo, transactionRepo)

	providerClient := provider.NewClient(cfg.ProviderAPIKey, cfg.ProviderSecretKey, cfg.ProviderBaseURL)
	discordChannel := notify.NewDiscordChannel(cfg.DiscordBotToken, cfg.DiscordChannelID)

	alertService := service.NewAlertService(alertStateRepo, discordChannel, telemetryService, accountRepo, cfg.SummaryHourUTC)

	// Background loops stop with the server
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	rateLimitService.StartGC(bgCtx, cfg.RateLimitWindow)
	go alertService.Run(bgCtx, cfg.TickInterval)

	// Set up router
	router := api.NewRouter(
		cfg,
		authService,
		authorizer,
		rateLimitService,
		telemetryService,
		entitlementService,
		discountService,
		paymentService,
		providerClient,
		accountRepo,
	)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting RenoHub entitlement server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	bgCancel()

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
