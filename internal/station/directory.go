package station

import (
	"strings"

	"github.com/petrolnearme/petrolnearme/internal/region"
)

// DirectoryQuery describes one directory page request.
type DirectoryQuery struct {
	// RegionID selects a configured region filter; empty means all regions.
	RegionID string

	// Search is a free-text filter over name, suburb, and address.
	Search string

	// Page is the 0-based page index.
	Page int

	// PageSize is the number of records per page.
	PageSize int
}

// DirectoryPage is one page of filtered results.
type DirectoryPage struct {
	Stations   []*Station
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int

	// Source reports where the underlying snapshot came from.
	Source SnapshotSource

	// Warning carries a non-fatal degradation note (e.g. stale data served
	// after a failed refresh).
	Warning string
}

// FilterStations applies the region and free-text filters. Both are
// optional; the input slice is never mutated. The layer is stateless and
// recomputes from the full set on every call, which is fine at directory
// scale.
func FilterStations(stations []*Station, def *region.Definition, search string) []*Station {
	search = strings.ToLower(strings.TrimSpace(search))
	if def == nil && search == "" {
		return stations
	}

	filtered := make([]*Station, 0, len(stations))
	for _, st := range stations {
		if def != nil && !def.Matches(st.Suburb, st.Latitude, st.Longitude, st.HasValidCoordinates) {
			continue
		}
		if search != "" && !matchesSearch(st, search) {
			continue
		}
		filtered = append(filtered, st)
	}
	return filtered
}

func matchesSearch(st *Station, lowered string) bool {
	return strings.Contains(strings.ToLower(st.Name), lowered) ||
		strings.Contains(strings.ToLower(st.Suburb), lowered) ||
		strings.Contains(strings.ToLower(st.Address), lowered)
}

// PageOf slices one page out of the filtered set. Out-of-range pages yield
// an empty slice, not an error.
func PageOf(stations []*Station, page, pageSize int) []*Station {
	if page < 0 || pageSize <= 0 {
		return []*Station{}
	}
	start := page * pageSize
	if start >= len(stations) {
		return []*Station{}
	}
	end := start + pageSize
	if end > len(stations) {
		end = len(stations)
	}
	return stations[start:end]
}

// TotalPages returns ceil(count / pageSize).
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}
