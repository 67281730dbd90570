// Package api provides the HTTP API for Petrol Prices Near Me.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/petrolnearme/petrolnearme/internal/api/handler"
	"github.com/petrolnearme/petrolnearme/internal/api/middleware"
	"github.com/petrolnearme/petrolnearme/internal/auth"
	"github.com/petrolnearme/petrolnearme/internal/featureflags"
	"github.com/petrolnearme/petrolnearme/internal/provider/resilience"
	"github.com/petrolnearme/petrolnearme/internal/station"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version            string
	BuildTime          string
	Logger             zerolog.Logger
	ServiceName        string
	Metrics            *middleware.Metrics
	JWTService         *auth.JWTService
	StationService     *station.Service
	FeatureFlagService *featureflags.Service
	Database           handler.Pinger
	ProviderRegistry   *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "petrolnearme-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.StationService, cfg.Database, cfg.ProviderRegistry)
	stationsHandler := handler.NewStationsHandler(cfg.StationService)
	regionsHandler := handler.NewRegionsHandler()
	adminHandler := handler.NewAdminHandler(cfg.StationService, cfg.FeatureFlagService, cfg.Logger)

	// Create auth middleware for admin endpoints
	adminAuth := middleware.AdminAuth(cfg.JWTService)

	// Create rate limit middleware for different endpoint categories
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min
	adminRateLimit := middleware.RateLimitByAdmin(middleware.AdminRateLimit)    // 10 req/min

	// Ops endpoints (public, except status)
	r.Get("/health", opsHandler.HealthCheck)
	r.Get("/ready", opsHandler.ReadinessCheck)
	r.With(adminAuth).Get("/status", opsHandler.SystemStatus)

	// Directory endpoints (public) - standard rate limiting
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)

			r.Route("/stations", func(r chi.Router) {
				r.Get("/", stationsHandler.ListStations)
				r.Get("/all", stationsHandler.AllStations)
				r.Get("/{stationID}", stationsHandler.GetStation)
			})

			r.Get("/regions", regionsHandler.ListRegions)
		})

		// Admin endpoints (authenticated) - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth)
			r.Use(adminRateLimit)

			r.Post("/refresh", adminHandler.RefreshDirectory)
			r.Post("/cache/invalidate", adminHandler.InvalidateDirectoryCache)

			// Feature flags management
			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", adminHandler.ListFeatureFlags)
				r.Put("/", adminHandler.UpsertFeatureFlags)
				r.Post("/invalidate", adminHandler.InvalidateFlagCache)
			})
		})
	})

	return r
}
