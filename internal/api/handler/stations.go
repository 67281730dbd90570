// Package handler provides HTTP handlers for the Petrol Prices Near Me API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/petrolnearme/petrolnearme/internal/api/models"
	"github.com/petrolnearme/petrolnearme/internal/api/response"
	"github.com/petrolnearme/petrolnearme/internal/baserow"
	"github.com/petrolnearme/petrolnearme/internal/station"
)

// DirectoryService provides the station directory.
type DirectoryService interface {
	Directory(ctx context.Context, q station.DirectoryQuery) (*station.DirectoryPage, error)
	AllStations(ctx context.Context) (*station.Snapshot, error)
	GetStation(ctx context.Context, id string) (*station.Station, station.SnapshotSource, error)
}

// StationsHandler handles station directory endpoints.
type StationsHandler struct {
	service DirectoryService
}

// NewStationsHandler creates a new StationsHandler.
func NewStationsHandler(service DirectoryService) *StationsHandler {
	return &StationsHandler{service: service}
}

// ListStations handles GET /api/stations - filtered, paginated directory.
func (h *StationsHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	query := station.DirectoryQuery{
		RegionID: r.URL.Query().Get("region"),
		Search:   r.URL.Query().Get("q"),
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			response.BadRequest(w, r, "page must be a non-negative integer", []models.FieldError{
				{Field: "page", Message: "must be a non-negative integer", Code: "invalid"},
			})
			return
		}
		query.Page = page
	}

	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > 100 {
			response.BadRequest(w, r, "pageSize must be between 1 and 100", []models.FieldError{
				{Field: "pageSize", Message: "must be between 1 and 100", Code: "invalid"},
			})
			return
		}
		query.PageSize = size
	}

	page, err := h.service.Directory(r.Context(), query)
	if err != nil {
		h.writeDirectoryError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.DirectoryResponse{
		Items:      models.FromStations(page.Stations),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
		DataSource: string(page.Source),
		Warning:    page.Warning,
	})
}

// AllStations handles GET /api/stations/all - complete unfiltered list.
func (h *StationsHandler) AllStations(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.AllStations(r.Context())
	if err != nil {
		h.writeDirectoryError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.StationListResponse{
		Items:      models.FromStations(snap.Stations),
		Count:      len(snap.Stations),
		FetchedAt:  snap.FetchedAt,
		DataSource: string(snap.Source),
	})
}

// GetStation handles GET /api/stations/{stationID} - single station lookup.
func (h *StationsHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "stationID")
	if stationID == "" {
		response.BadRequest(w, r, "stationID is required", nil)
		return
	}

	st, source, err := h.service.GetStation(r.Context(), stationID)
	if err != nil {
		if errors.Is(err, station.ErrStationNotFound) {
			response.NotFound(w, r, "no station with id "+stationID)
			return
		}
		h.writeDirectoryError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.StationDetailResponse{
		Station:    models.FromStation(st),
		DataSource: string(source),
	})
}

// writeDirectoryError maps domain errors to problem responses.
func (h *StationsHandler) writeDirectoryError(w http.ResponseWriter, r *http.Request, err error) {
	var remoteErr *baserow.RemoteFetchError

	switch {
	case errors.Is(err, station.ErrUnknownRegion):
		response.BadRequest(w, r, "unknown region", []models.FieldError{
			{Field: "region", Message: "unknown region", Code: "invalid"},
		})
	case errors.Is(err, station.ErrSourceUnavailable), errors.As(err, &remoteErr):
		response.ServiceUnavailable(w, r, "station data is temporarily unavailable")
	default:
		response.InternalError(w, r, "failed to load station directory")
	}
}
