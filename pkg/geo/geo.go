// Package geo provides small geometry helpers for coordinate plausibility
// checks and region bounding boxes.
package geo

// Box represents a rectangular latitude/longitude range.
type Box struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Contains reports whether the point lies within the box (inclusive).
func (b Box) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lon >= b.MinLon && lon <= b.MaxLon
}

// IsZero reports whether the box is the zero value (no area configured).
func (b Box) IsZero() bool {
	return b.MinLat == 0 && b.MinLon == 0 && b.MaxLat == 0 && b.MaxLon == 0
}
