package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/petrolnearme/petrolnearme/internal/api/models"
	"github.com/petrolnearme/petrolnearme/internal/api/response"
	"github.com/petrolnearme/petrolnearme/internal/provider/resilience"
	"github.com/petrolnearme/petrolnearme/internal/station"
)

// CacheStatusReporter reports the directory cache state.
type CacheStatusReporter interface {
	CacheStatus() station.CacheStatus
}

// Pinger checks a dependency's connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	cache     CacheStatusReporter
	db        Pinger
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. db and registry may be nil when
// the deployment runs without them.
func NewOpsHandler(version, buildTime string, cache CacheStatusReporter, db Pinger, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		cache:     cache,
		db:        db,
		registry:  registry,
	}
}

// HealthCheck handles GET /health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now(),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /ready - readiness check with dependency pings.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now(),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"database": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /status - cache and provider circuit status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   time.Now(),
	}

	if h.cache != nil {
		cs := h.cache.CacheStatus()
		status.Cache = models.CacheStatusResponse{
			HasData:      cs.HasData,
			IsExpired:    cs.IsExpired,
			StationCount: cs.StationCount,
			DataSource:   string(cs.Source),
		}
		if cs.HasData {
			fetchedAt := cs.FetchedAt
			expiresAt := cs.ExpiresAt
			status.Cache.FetchedAt = &fetchedAt
			status.Cache.ExpiresAt = &expiresAt
		}
		if cs.Source != station.SnapshotSourceLive && cs.HasData {
			status.Status = models.HealthStatusDegraded
		}
	}

	if h.registry != nil {
		for _, ph := range h.registry.GetAllHealth() {
			status.Breakers = append(status.Breakers, models.BreakerStatus{
				Name:  ph.Name,
				State: ph.CircuitState.String(),
			})
			if ph.IsUnhealthy() {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}
