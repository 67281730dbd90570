// Package models provides request and response models for the Petrol
// Prices Near Me API.
package models

import (
	"time"

	"github.com/petrolnearme/petrolnearme/internal/region"
	"github.com/petrolnearme/petrolnearme/internal/station"
)

// CoordinatesResponse carries a station's position. Present only when the
// coordinates parsed; map consumers skip stations without it.
type CoordinatesResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FuelPriceResponse is one fuel price entry.
type FuelPriceResponse struct {
	FuelType   string `json:"fuelType"`
	PriceCents int    `json:"priceCents"`
}

// StationResponse is the API shape of one station record.
type StationResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Address     string               `json:"address,omitempty"`
	Suburb      string               `json:"suburb,omitempty"`
	PostalCode  string               `json:"postalCode,omitempty"`
	Region      string               `json:"region,omitempty"`
	Country     string               `json:"country,omitempty"`
	Brand       string               `json:"brand,omitempty"`
	Coordinates *CoordinatesResponse `json:"coordinates,omitempty"`
	FuelPrices  []FuelPriceResponse  `json:"fuelPrices"`
	PriceSource string               `json:"priceSource"`
}

// DirectoryResponse is one page of the station directory.
type DirectoryResponse struct {
	Items      []StationResponse `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalCount int               `json:"totalCount"`
	TotalPages int               `json:"totalPages"`
	DataSource string            `json:"dataSource"`
	Warning    string            `json:"warning,omitempty"`
}

// StationListResponse is the full unpaginated station list.
type StationListResponse struct {
	Items      []StationResponse `json:"items"`
	Count      int               `json:"count"`
	FetchedAt  time.Time         `json:"fetchedAt"`
	DataSource string            `json:"dataSource"`
}

// StationDetailResponse wraps a single station with its data provenance.
type StationDetailResponse struct {
	Station    StationResponse `json:"station"`
	DataSource string          `json:"dataSource"`
}

// RegionResponse is the API shape of one configured region.
type RegionResponse struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	Suburbs []string `json:"suburbs"`
}

// RegionListResponse lists all configured regions.
type RegionListResponse struct {
	Items []RegionResponse `json:"items"`
}

// FromStation converts a domain station to its API shape.
func FromStation(st *station.Station) StationResponse {
	resp := StationResponse{
		ID:          st.ID,
		Name:        st.Name,
		Address:     st.Address,
		Suburb:      st.Suburb,
		PostalCode:  st.PostalCode,
		Region:      st.Region,
		Country:     st.Country,
		Brand:       st.Brand,
		FuelPrices:  make([]FuelPriceResponse, 0, len(st.FuelPrices)),
		PriceSource: string(st.PriceSource),
	}
	if st.HasValidCoordinates {
		resp.Coordinates = &CoordinatesResponse{
			Latitude:  st.Latitude,
			Longitude: st.Longitude,
		}
	}
	for _, p := range st.FuelPrices {
		resp.FuelPrices = append(resp.FuelPrices, FuelPriceResponse(p))
	}
	return resp
}

// FromStations converts a slice of domain stations.
func FromStations(stations []*station.Station) []StationResponse {
	items := make([]StationResponse, 0, len(stations))
	for _, st := range stations {
		items = append(items, FromStation(st))
	}
	return items
}

// FromRegion converts a region definition to its API shape.
func FromRegion(def *region.Definition) RegionResponse {
	return RegionResponse{
		ID:      def.ID,
		Name:    def.Name,
		Color:   def.Color,
		Suburbs: def.Suburbs,
	}
}
