package handler

import (
	"net/http"

	"github.com/petrolnearme/petrolnearme/internal/api/models"
	"github.com/petrolnearme/petrolnearme/internal/api/response"
	"github.com/petrolnearme/petrolnearme/internal/region"
)

// RegionsHandler handles region listing endpoints.
type RegionsHandler struct{}

// NewRegionsHandler creates a new RegionsHandler.
func NewRegionsHandler() *RegionsHandler {
	return &RegionsHandler{}
}

// ListRegions handles GET /api/regions - list configured regions.
func (h *RegionsHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	defs := region.All()
	items := make([]models.RegionResponse, 0, len(defs))
	for _, def := range defs {
		items = append(items, models.FromRegion(def))
	}
	response.JSON(w, r, http.StatusOK, models.RegionListResponse{Items: items})
}
