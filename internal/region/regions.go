// Package region holds the static Melbourne region definitions used to
// bucket stations for directory filtering. Definitions are read-only for
// the lifetime of the process; they are a UI grouping, not a data-model
// authority.
package region

import (
	"strings"

	"github.com/petrolnearme/petrolnearme/pkg/geo"
)

// MatchMode selects how a station is assigned to a region.
type MatchMode string

const (
	// MatchSuburbs matches on the station's suburb against the region's
	// suburb list (case-insensitive, exact after normalization).
	MatchSuburbs MatchMode = "suburbs"

	// MatchBoundingBox matches on a point-in-box test against the
	// station's coordinates.
	MatchBoundingBox MatchMode = "bbox"
)

// Definition is one named region.
type Definition struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Color   string    `json:"color"`
	Suburbs []string  `json:"suburbs"`
	Box     geo.Box   `json:"-"`
	Mode    MatchMode `json:"-"`

	suburbSet map[string]struct{}
}

// Definitions are the configured Melbourne regions, keyed by ID.
var Definitions = buildDefinitions([]*Definition{
	{
		ID:    "inner",
		Name:  "Inner Melbourne",
		Color: "#2563eb",
		Suburbs: []string{
			"Melbourne", "Carlton", "Fitzroy", "Collingwood", "Richmond",
			"South Yarra", "Southbank", "Docklands", "North Melbourne", "Parkville",
		},
		Box:  geo.Box{MinLat: -37.86, MinLon: 144.90, MaxLat: -37.77, MaxLon: 145.01},
		Mode: MatchSuburbs,
	},
	{
		ID:    "northern",
		Name:  "Northern Suburbs",
		Color: "#16a34a",
		Suburbs: []string{
			"Coburg", "Brunswick", "Preston", "Reservoir", "Thornbury",
			"Northcote", "Fawkner", "Glenroy", "Broadmeadows", "Epping",
		},
		Box:  geo.Box{MinLat: -37.78, MinLon: 144.90, MaxLat: -37.60, MaxLon: 145.05},
		Mode: MatchSuburbs,
	},
	{
		ID:    "eastern",
		Name:  "Eastern Suburbs",
		Color: "#d97706",
		Suburbs: []string{
			"Box Hill", "Doncaster", "Ringwood", "Blackburn", "Camberwell",
			"Hawthorn", "Kew", "Glen Waverley", "Burwood", "Mitcham",
		},
		Box:  geo.Box{MinLat: -37.90, MinLon: 145.02, MaxLat: -37.72, MaxLon: 145.30},
		Mode: MatchSuburbs,
	},
	{
		ID:    "southern",
		Name:  "Southern Suburbs",
		Color: "#dc2626",
		Suburbs: []string{
			"Frankston", "Dandenong", "Cheltenham", "Moorabbin", "Mordialloc",
			"Brighton", "Bentleigh", "Springvale", "Clayton", "Carrum",
		},
		Box:  geo.Box{MinLat: -38.20, MinLon: 144.95, MaxLat: -37.88, MaxLon: 145.25},
		Mode: MatchSuburbs,
	},
	{
		ID:    "western",
		Name:  "Western Suburbs",
		Color: "#7c3aed",
		Suburbs: []string{
			"Footscray", "Sunshine", "Werribee", "Altona", "Yarraville",
			"Williamstown", "Point Cook", "Laverton", "Deer Park", "Hoppers Crossing",
		},
		Box:  geo.Box{MinLat: -37.95, MinLon: 144.55, MaxLat: -37.75, MaxLon: 144.92},
		Mode: MatchSuburbs,
	},
})

func buildDefinitions(defs []*Definition) map[string]*Definition {
	m := make(map[string]*Definition, len(defs))
	for _, d := range defs {
		d.suburbSet = make(map[string]struct{}, len(d.Suburbs))
		for _, s := range d.Suburbs {
			d.suburbSet[normalizeSuburb(s)] = struct{}{}
		}
		m[d.ID] = d
	}
	return m
}

// Get returns the region with the given ID, or nil.
func Get(id string) *Definition {
	return Definitions[strings.ToLower(strings.TrimSpace(id))]
}

// All returns the regions in a stable order.
func All() []*Definition {
	ordered := []string{"inner", "northern", "eastern", "southern", "western"}
	defs := make([]*Definition, 0, len(ordered))
	for _, id := range ordered {
		defs = append(defs, Definitions[id])
	}
	return defs
}

// ContainsSuburb reports whether the suburb belongs to the region.
func (d *Definition) ContainsSuburb(suburb string) bool {
	_, ok := d.suburbSet[normalizeSuburb(suburb)]
	return ok
}

// Matches reports whether a station with the given suburb and coordinates
// belongs to the region, using the region's configured match mode.
func (d *Definition) Matches(suburb string, lat, lon float64, validCoords bool) bool {
	switch d.Mode {
	case MatchBoundingBox:
		return validCoords && d.Box.Contains(lat, lon)
	default:
		return d.ContainsSuburb(suburb)
	}
}

func normalizeSuburb(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
