package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/rs/zerolog"

	"github.com/petrolnearme/petrolnearme/internal/api/middleware"
	"github.com/petrolnearme/petrolnearme/internal/api/models"
	"github.com/petrolnearme/petrolnearme/internal/api/response"
	"github.com/petrolnearme/petrolnearme/internal/featureflags"
)

// DirectoryAdmin exposes the administrative directory operations.
type DirectoryAdmin interface {
	Refresh(ctx context.Context) error
	InvalidateCache()
}

// FlagStore manages feature flags.
type FlagStore interface {
	GetAllFlags(ctx context.Context) map[string]*featureflags.Flag
	SetFlags(ctx context.Context, flags []*featureflags.Flag) error
	InvalidateCache()
}

// AdminHandler handles administrative endpoints.
type AdminHandler struct {
	directory DirectoryAdmin
	flags     FlagStore
	logger    zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(directory DirectoryAdmin, flags FlagStore, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		directory: directory,
		flags:     flags,
		logger:    logger,
	}
}

// RefreshDirectory handles POST /api/admin/refresh - force a remote fetch.
func (h *AdminHandler) RefreshDirectory(w http.ResponseWriter, r *http.Request) {
	h.logger.Info().
		Str("subject", middleware.GetAdminSubject(r.Context())).
		Msg("manual directory refresh requested")

	if err := h.directory.Refresh(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("manual directory refresh failed")
		response.ServiceUnavailable(w, r, "refresh failed: station data source unavailable")
		return
	}

	response.NoContent(w, r)
}

// InvalidateDirectoryCache handles POST /api/admin/cache/invalidate.
func (h *AdminHandler) InvalidateDirectoryCache(w http.ResponseWriter, r *http.Request) {
	h.logger.Info().
		Str("subject", middleware.GetAdminSubject(r.Context())).
		Msg("directory cache invalidation requested")

	h.directory.InvalidateCache()
	response.NoContent(w, r)
}

// ListFeatureFlags handles GET /api/admin/feature-flags - list all feature flags.
func (h *AdminHandler) ListFeatureFlags(w http.ResponseWriter, r *http.Request) {
	flags := h.flags.GetAllFlags(r.Context())

	items := make([]featureflags.Flag, 0, len(flags))
	for _, flag := range flags {
		items = append(items, *flag)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })

	response.JSON(w, r, http.StatusOK, featureflags.FlagList{Items: items})
}

// UpsertFeatureFlags handles PUT /api/admin/feature-flags - update feature flags.
func (h *AdminHandler) UpsertFeatureFlags(w http.ResponseWriter, r *http.Request) {
	var input featureflags.FlagUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if len(input.Updates) == 0 {
		response.BadRequest(w, r, "updates must not be empty", []models.FieldError{
			{Field: "updates", Message: "must not be empty", Code: "required"},
		})
		return
	}

	flags := make([]*featureflags.Flag, 0, len(input.Updates))
	for _, u := range input.Updates {
		if u.Key == "" {
			response.BadRequest(w, r, "flag key must not be empty", []models.FieldError{
				{Field: "updates.key", Message: "must not be empty", Code: "required"},
			})
			return
		}
		flags = append(flags, &featureflags.Flag{Key: u.Key, Value: u.Value})
	}

	if err := h.flags.SetFlags(r.Context(), flags); err != nil {
		h.logger.Error().Err(err).Msg("failed to update feature flags")
		response.InternalError(w, r, "failed to update feature flags")
		return
	}

	h.logger.Info().
		Str("subject", middleware.GetAdminSubject(r.Context())).
		Str("reason", input.Reason).
		Int("count", len(flags)).
		Msg("feature flags updated")

	response.NoContent(w, r)
}

// InvalidateFlagCache handles POST /api/admin/feature-flags/invalidate.
func (h *AdminHandler) InvalidateFlagCache(w http.ResponseWriter, r *http.Request) {
	h.flags.InvalidateCache()
	response.NoContent(w, r)
}
