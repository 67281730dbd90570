// Package main provides the entrypoint for the directory refresh worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/petrolnearme/petrolnearme/internal/baserow"
	"github.com/petrolnearme/petrolnearme/internal/database"
	"github.com/petrolnearme/petrolnearme/internal/featureflags"
	"github.com/petrolnearme/petrolnearme/internal/provider/resilience"
	"github.com/petrolnearme/petrolnearme/internal/station"
	"github.com/petrolnearme/petrolnearme/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "petrolnearme-worker"

	// Load .env for local development; ignored when absent.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Petrol Prices Near Me worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database when configured
	var ffRepo featureflags.Repository = featureflags.NewInMemoryRepository()
	var stationRepo station.Repository = station.NewMemoryRepository()
	if os.Getenv("DB_HOST") != "" {
		pool, err := database.Connect(ctx, database.ConfigFromEnv())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		ffRepo = featureflags.NewPostgresRepository(pool)
		stationRepo = station.NewPostgresRepository(pool)
		log.Info().Msg("database connected")
	} else {
		log.Warn().Msg("DB_HOST not set - refreshed snapshots will not be persisted")
	}

	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: ffRepo,
		Logger:     log,
	})

	// Initialize the Baserow table client
	baserowToken := os.Getenv("BASEROW_API_TOKEN")
	if baserowToken == "" {
		log.Warn().Msg("BASEROW_API_TOKEN not set - refreshes will fail")
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

	stationService := station.NewService(station.ServiceConfig{
		Provider:   provider,
		Cache:      station.NewCache(),
		Repository: stationRepo,
		Flags:      ffService,
		Logger:     log,
	})

	refresher := worker.NewRefresher(worker.RefresherConfig{
		Config:    worker.RefreshConfigFromEnv(),
		Directory: stationService,
		Flags:     ffService,
		Logger:    log,
	})

	// When a Pub/Sub subscription is configured, jobs arrive as messages
	// from Cloud Scheduler. Otherwise fall back to the internal ticker.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID != "" && subscription != "" {
		pubsubHandler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			Refresher:        refresher,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer pubsubHandler.Close()

		go func() {
			if err := pubsubHandler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Fatal().Err(err).Msg("pubsub handler error")
			}
		}()
	} else {
		log.Info().Msg("pubsub not configured, using internal refresh schedule")
		refresher.Start(ctx)
		defer refresher.Stop()
	}

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
