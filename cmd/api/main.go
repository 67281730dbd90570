// Package main provides the entrypoint for the Petrol Prices Near Me API
// server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/petrolnearme/petrolnearme/internal/api"
	"github.com/petrolnearme/petrolnearme/internal/api/handler"
	"github.com/petrolnearme/petrolnearme/internal/api/middleware"
	"github.com/petrolnearme/petrolnearme/internal/auth"
	"github.com/petrolnearme/petrolnearme/internal/baserow"
	"github.com/petrolnearme/petrolnearme/internal/database"
	"github.com/petrolnearme/petrolnearme/internal/featureflags"
	"github.com/petrolnearme/petrolnearme/internal/provider/resilience"
	"github.com/petrolnearme/petrolnearme/internal/station"
	"github.com/petrolnearme/petrolnearme/internal/telemetry"
	"github.com/petrolnearme/petrolnearme/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "petrolnearme-api"

	// Load .env for local development; ignored when absent.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Petrol Prices Near Me API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	providerMetrics, err := middleware.NewProviderMetrics(baserow.ProviderName)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Connect to database when configured. The API runs without one,
	// trading snapshot persistence for the bundled sample fallback.
	pool := connectDatabase(ctx, log)
	if pool != nil {
		defer pool.Close()
	}

	// Initialize JWT service for admin endpoints
	jwtSigningKey := os.Getenv("ADMIN_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
	})

	// Initialize feature flags repository and service
	var ffRepo featureflags.Repository
	if pool != nil {
		ffRepo = featureflags.NewPostgresRepository(pool)
	} else {
		ffRepo = featureflags.NewInMemoryRepository()
	}
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: ffRepo,
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})
	log.Info().Msg("feature flags service initialized")

	// Initialize the Baserow table client. The token comes from the
	// environment only; without one the sample dataset carries the API.
	baserowToken := os.Getenv("BASEROW_API_TOKEN")
	if baserowToken == "" {
		log.Warn().Msg("BASEROW_API_TOKEN not set - remote fetches will fail and sample data will be served")
	}

	httpClient := resilience.NewClient(resilience.ClientConfig{
		Name:            baserow.ProviderName,
		Timeout:         15 * time.Second,
		MaxRetries:      4,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
	})
	resilience.GlobalRegistry.Register(baserow.ProviderName, httpClient)

	baserowClient := baserow.NewClient(baserow.ClientConfig{
		BaseURL:    os.Getenv("BASEROW_API_URL"),
		Token:      baserowToken,
		HTTPClient: httpClient,
	})

	pageSize := 0
	if raw := os.Getenv("BASEROW_PAGE_SIZE"); raw != "" {
		pageSize, _ = strconv.Atoi(raw)
	}

	provider := station.NewTableProvider(station.TableProviderConfig{
		Source:     baserowClient,
		Normalizer: station.NewNormalizer(station.NormalizerConfig{Logger: log}),
		TableID:    os.Getenv("BASEROW_TABLE_ID"),
		PageSize:   pageSize,
	})

	// Initialize the station repository and service
	var stationRepo station.Repository
	if pool != nil {
		stationRepo = station.NewPostgresRepository(pool)
	} else {
		stationRepo = station.NewMemoryRepository()
	}

	stationService := station.NewService(station.ServiceConfig{
		Provider:        provider,
		Cache:           station.NewCache(),
		Repository:      stationRepo,
		Flags:           ffService,
		Metrics:         providerMetrics,
		Logger:          log,
		CacheTTL:        durationFromEnv("DIRECTORY_CACHE_TTL"),
		StaleIfErrorTTL: durationFromEnv("STALE_IF_ERROR_TTL"),
	})
	log.Info().Msg("station service initialized")

	// Start the scheduled directory refresh
	refresher := worker.NewRefresher(worker.RefresherConfig{
		Config:    worker.RefreshConfigFromEnv(),
		Directory: stationService,
		Flags:     ffService,
		Logger:    log,
	})
	refresher.Start(ctx)
	defer refresher.Stop()

	// Create router with configuration
	var dbPinger handler.Pinger
	if pool != nil {
		dbPinger = pool
	}

	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		JWTService:         jwtService,
		StationService:     stationService,
		FeatureFlagService: ffService,
		Database:           dbPinger,
		ProviderRegistry:   resilience.GlobalRegistry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// durationFromEnv parses a duration environment variable, returning zero
// (meaning: use the service default) when unset or unparsable.
func durationFromEnv(key string) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// connectDatabase connects to PostgreSQL when DB_HOST is set. Returns nil
// when the deployment runs without persistence.
func connectDatabase(ctx context.Context, log zerolog.Logger) *pgxpool.Pool {
	if os.Getenv("DB_HOST") == "" {
		log.Warn().Msg("DB_HOST not set - running without snapshot persistence")
		return nil
	}

	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	return pool
}
