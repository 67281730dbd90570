// Package station provides the petrol station directory domain: normalized
// records, snapshot caching, filtering, and persistence.
package station

import (
	"errors"
	"time"
)

// Domain errors.
var (
	ErrStationNotFound   = errors.New("station not found")
	ErrSourceUnavailable = errors.New("station data source unavailable")
)

// PriceSource describes the provenance of a record's fuel prices. Real and
// synthetic values are never mixed silently; every record says where its
// prices came from.
type PriceSource string

const (
	PriceSourceLive PriceSource = "live"
	PriceSourceMock PriceSource = "mock"
)

// SnapshotSource describes where a served snapshot came from.
type SnapshotSource string

const (
	// SnapshotSourceLive means the snapshot was fetched from the remote
	// table within the cache TTL.
	SnapshotSourceLive SnapshotSource = "live"

	// SnapshotSourceStale means the remote fetch failed and an expired
	// snapshot (in-memory or persisted) is being served instead.
	SnapshotSourceStale SnapshotSource = "stale"

	// SnapshotSourceSample means the bundled sample dataset is being served
	// because no fetched data was available at all.
	SnapshotSourceSample SnapshotSource = "sample"
)

// FuelPrice is one fuel type's price at a station, in integer cents.
type FuelPrice struct {
	FuelType   string `json:"fuelType"`
	PriceCents int    `json:"priceCents"`
}

// Station represents one fuel retail location in normalized form.
type Station struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Suburb     string `json:"suburb"`
	PostalCode string `json:"postalCode"`
	Region     string `json:"region"`
	Country    string `json:"country"`
	Brand      string `json:"brand,omitempty"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// HasValidCoordinates is false when latitude or longitude could not be
	// parsed. Such records stay in list views but are excluded from map
	// consumers.
	HasValidCoordinates bool `json:"hasValidCoordinates"`

	FuelPrices  []FuelPrice `json:"fuelPrices"`
	PriceSource PriceSource `json:"priceSource"`

	// Warnings collects non-fatal field-resolution and coordinate notes.
	// Observability only, never a reason to drop the record.
	Warnings []string `json:"-"`
}

// Snapshot is a point-in-time copy of the full directory. Snapshots are
// replaced wholesale on refresh, never patched.
type Snapshot struct {
	Stations  []*Station
	FetchedAt time.Time
	Source    SnapshotSource
}

// FindByID returns the station with the given ID, or nil.
func (s *Snapshot) FindByID(id string) *Station {
	for _, st := range s.Stations {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// WithSource returns a shallow copy of the snapshot marked with the given
// source. The station slice is shared; stations are immutable once built.
func (s *Snapshot) WithSource(source SnapshotSource) *Snapshot {
	return &Snapshot{
		Stations:  s.Stations,
		FetchedAt: s.FetchedAt,
		Source:    source,
	}
}
