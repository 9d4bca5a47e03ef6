package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hackclub/hermes/internal/adapter/gateway/hcb"
	httpAdapter "github.com/hackclub/hermes/internal/adapter/http"
	"github.com/hackclub/hermes/internal/adapter/http/handler"
	"github.com/hackclub/hermes/internal/adapter/notifier"
	postgresRepo "github.com/hackclub/hermes/internal/adapter/repository/postgres"
	redisRepo "github.com/hackclub/hermes/internal/adapter/repository/redis"
	"github.com/hackclub/hermes/internal/infrastructure/config"
	"github.com/hackclub/hermes/internal/infrastructure/logger"
	"github.com/hackclub/hermes/internal/infrastructure/metrics"
	"github.com/hackclub/hermes/internal/infrastructure/postgres"
	"github.com/hackclub/hermes/internal/infrastructure/redis"
	"github.com/hackclub/hermes/internal/infrastructure/security"
	"github.com/hackclub/hermes/internal/infrastructure/worker"
	"github.com/hackclub/hermes/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup loggers. The HTTP layer logs through zerolog, background
	// workers through slog; both honor the configured level.
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	})))

	ctx := context.Background()

	// Run migrations
	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	orgRepo := postgresRepo.NewOrganizationRepository(pool)
	itemRepo := postgresRepo.NewItemRepository(pool)
	disbRepo := postgresRepo.NewDisbursementRepository(pool)
	runRepo := postgresRepo.NewRunRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	runLock := redisRepo.NewRunLock(redisClient)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()
	keyGen := postgresRepo.NewUUIDKeyGenerator()

	// Payment gateway
	gateway := hcb.NewClient(hcb.Config{
		BaseURL:      cfg.HCBBaseURL,
		TokenURL:     cfg.HCBTokenURL,
		ClientID:     cfg.HCBClientID,
		ClientSecret: cfg.HCBClientSecret,
		AccessToken:  cfg.HCBAccessToken,
		RefreshToken: cfg.HCBRefreshToken,
		Timeout:      cfg.HCBTimeout,
	})
	checkFulfillmentOrg(ctx, gateway, cfg.FulfillmentOrg)

	appMetrics := metrics.New()

	// Initialize use cases
	orgUC := usecase.NewOrganizationUseCase(orgRepo, idGen)
	itemUC := usecase.NewItemUseCase(itemRepo, orgRepo, idGen)
	disbUC := usecase.NewDisbursementUseCase(disbRepo, orgRepo, gateway)
	billingUC := usecase.NewBillingUseCase(
		txManager,
		orgRepo,
		itemRepo,
		disbRepo,
		runRepo,
		gateway,
		notifierFromConfig(cfg, appLogger),
		idGen,
		keyGen,
		cfg.FulfillmentOrg,
		appMetrics,
	)

	// Initialize handlers
	orgHandler := handler.NewOrganizationHandler(orgUC)
	itemHandler := handler.NewItemHandler(itemUC)
	disbHandler := handler.NewDisbursementHandler(disbUC)
	billingHandler := handler.NewBillingHandler(billingUC, runLock, cfg.BillingRunLockTTL)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	verifier := apiKeyVerifierFromConfig(cfg)
	if verifier == nil {
		log.Warn().Msg("ADMIN_API_KEY_HASH not set, admin API is unauthenticated")
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		OrganizationHandler: orgHandler,
		ItemHandler:         itemHandler,
		DisbursementHandler: disbHandler,
		BillingHandler:      billingHandler,
		HealthHandler:       healthHandler,
		Logger:              appLogger,
		APIKeyVerifier:      verifier,
		IdempotencyStore:    idempotencyStore,
		IdempotencyTTL:      cfg.IdempotencyTTL,
	})

	// Start the billing worker
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()

	if cfg.BillingEnabled {
		billingWorker := worker.NewBillingWorker(worker.Config{
			Billing:  billingUC,
			Lock:     runLock,
			Retrier:  retrier,
			Metrics:  appMetrics,
			Interval: cfg.BillingInterval,
			LockTTL:  cfg.BillingRunLockTTL,
		})
		go func() {
			if err := billingWorker.Start(workerCtx); err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("billing worker stopped")
			}
		}()
		log.Info().Dur("interval", cfg.BillingInterval).Msg("billing worker enabled")
	} else {
		log.Warn().Msg("billing worker disabled, only manual runs will bill")
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// notifierFromConfig picks Slack when a webhook is configured, otherwise
// notices go to the log.
func notifierFromConfig(cfg *config.Config, appLogger zerolog.Logger) usecase.Notifier {
	if cfg.SlackWebhookURL != "" {
		return notifier.NewSlack(cfg.SlackWebhookURL, nil)
	}
	return notifier.NewLog(appLogger)
}

// apiKeyVerifierFromConfig returns nil when no admin key hash is configured.
func apiKeyVerifierFromConfig(cfg *config.Config) *security.KeyVerifier {
	if cfg.AdminAPIKeyHash == "" {
		return nil
	}
	return security.NewKeyVerifier(cfg.AdminAPIKeyHash)
}

// checkFulfillmentOrg confirms the fulfillment account is reachable on the
// payment platform. Startup proceeds either way; billing surfaces the same
// failure per pass if the account really is wrong.
func checkFulfillmentOrg(ctx context.Context, gateway *hcb.Client, slug string) {
	info, err := gateway.GetOrganization(ctx, slug)
	if err != nil {
		log.Warn().Err(err).Str("org", slug).Msg("could not verify fulfillment org at startup")
		return
	}
	log.Info().Str("org", info.Slug).Str("name", info.Name).Msg("fulfillment org verified")
}

// slogLevel maps the configured level name onto slog's levels.
func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
