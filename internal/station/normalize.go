package station

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/petrolnearme/petrolnearme/pkg/geo"
)

// AustraliaBounds is the plausibility box for station coordinates. Points
// outside it are logged, not dropped; the box is a signal, not a filter.
var AustraliaBounds = geo.Box{MinLat: -45, MinLon: 110, MaxLat: -10, MaxLon: 155}

// A fieldChain is an ordered list of candidate keys for one logical field.
// Candidates are tried in sequence and the first present, non-empty value
// wins. Earlier entries are human-readable display names, later ones are
// internal field_<id> identifiers kept for token-scoped API responses that
// do not carry user field names.
type fieldChain struct {
	label      string
	candidates []string
}

func (f fieldChain) resolve(raw map[string]any) (any, int, bool) {
	for i, key := range f.candidates {
		if v, ok := raw[key]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v, i, true
		}
	}
	return nil, -1, false
}

var (
	idChain         = fieldChain{label: "id", candidates: []string{"id", "ID", "field_5072129"}}
	nameChain       = fieldChain{label: "name", candidates: []string{"Station Name", "Name", "field_5072130"}}
	addressChain    = fieldChain{label: "address", candidates: []string{"Address", "Street Address", "field_5072131"}}
	suburbChain     = fieldChain{label: "suburb", candidates: []string{"Suburb", "City", "field_5072132"}}
	postalCodeChain = fieldChain{label: "postalCode", candidates: []string{"Postcode", "Postal Code", "field_5072133"}}
	regionChain     = fieldChain{label: "region", candidates: []string{"Region", "field_5072134"}}
	countryChain    = fieldChain{label: "country", candidates: []string{"Country", "field_5072135"}}
	brandChain      = fieldChain{label: "brand", candidates: []string{"Brand", "Category", "field_5072136"}}
	latitudeChain   = fieldChain{label: "latitude", candidates: []string{"Latitude", "Lat", "field_5072137"}}
	longitudeChain  = fieldChain{label: "longitude", candidates: []string{"Longitude", "Lng", "Lon", "field_5072138"}}
)

// fuelPriceChains maps each published fuel type to its candidate columns.
// Iterated via fuelTypeOrder so output order is stable.
var fuelPriceChains = map[string]fieldChain{
	"U91":    {label: "U91", candidates: []string{"Unleaded 91", "U91", "field_5072139"}},
	"P95":    {label: "P95", candidates: []string{"Premium 95", "P95", "field_5072140"}},
	"P98":    {label: "P98", candidates: []string{"Premium 98", "P98", "field_5072141"}},
	"Diesel": {label: "Diesel", candidates: []string{"Diesel", "field_5072142"}},
	"LPG":    {label: "LPG", candidates: []string{"LPG", "field_5072143"}},
}

var fuelTypeOrder = []string{"U91", "P95", "P98", "Diesel", "LPG"}

// NormalizerConfig holds configuration for the normalizer.
type NormalizerConfig struct {
	// Logger for coordinate and field-resolution warnings.
	Logger zerolog.Logger

	// Bounds is the coordinate plausibility box (default: AustraliaBounds).
	Bounds geo.Box
}

// Normalizer converts raw table rows into Stations, tolerating the
// field-name drift between the remote source and the sample generator.
type Normalizer struct {
	logger zerolog.Logger
	bounds geo.Box
}

// NewNormalizer creates a new normalizer.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	bounds := cfg.Bounds
	if bounds.IsZero() {
		bounds = AustraliaBounds
	}
	return &Normalizer{
		logger: cfg.Logger,
		bounds: bounds,
	}
}

// Normalize converts one raw row into a Station. It never returns nil and
// never rejects a row: missing names get a synthesized placeholder from the
// row's ordinal position, unparseable coordinates clear
// HasValidCoordinates, and out-of-box coordinates only produce a warning.
// Given the same row and ordinal the output is always identical.
func (n *Normalizer) Normalize(raw map[string]any, ordinal int, prices PriceSource) *Station {
	var warnings []string

	st := &Station{
		PriceSource: prices,
	}

	st.ID = n.resolveString(raw, idChain, &warnings)
	if st.ID == "" {
		st.ID = fmt.Sprintf("row-%d", ordinal)
		warnings = append(warnings, "id missing, synthesized from row position")
	}

	st.Name = n.resolveString(raw, nameChain, &warnings)
	if st.Name == "" {
		st.Name = fmt.Sprintf("Station %d", ordinal+1)
		warnings = append(warnings, "name missing, synthesized placeholder")
	}

	st.Address = n.resolveString(raw, addressChain, &warnings)
	st.Suburb = n.resolveString(raw, suburbChain, &warnings)
	st.PostalCode = n.resolveString(raw, postalCodeChain, &warnings)
	st.Region = n.resolveString(raw, regionChain, &warnings)
	st.Brand = n.resolveString(raw, brandChain, &warnings)

	st.Country = n.resolveString(raw, countryChain, &warnings)
	if st.Country == "" {
		st.Country = "Australia"
	}

	st.Latitude, st.Longitude, st.HasValidCoordinates = n.resolveCoordinates(raw, &warnings)
	if st.HasValidCoordinates && !n.bounds.Contains(st.Latitude, st.Longitude) {
		warnings = append(warnings, fmt.Sprintf("coordinates (%g, %g) outside plausibility bounds", st.Latitude, st.Longitude))
		n.logger.Warn().
			Str("station_id", st.ID).
			Float64("lat", st.Latitude).
			Float64("lon", st.Longitude).
			Msg("station coordinates outside plausibility bounds")
	}

	st.FuelPrices = n.resolveFuelPrices(raw, &warnings)
	st.Warnings = warnings

	return st
}

// resolveString walks a field chain and returns the first value as a
// trimmed string, recording a warning when a non-preferred candidate won.
func (n *Normalizer) resolveString(raw map[string]any, chain fieldChain, warnings *[]string) string {
	v, idx, ok := chain.resolve(raw)
	if !ok {
		return ""
	}
	if idx > 0 {
		*warnings = append(*warnings, fmt.Sprintf("%s resolved via fallback field %q", chain.label, chain.candidates[idx]))
	}
	return strings.TrimSpace(stringify(v))
}

// resolveCoordinates parses latitude and longitude. A missing or
// non-numeric value in either makes the pair invalid; the values are zeroed
// so no half-parsed coordinate leaks out.
func (n *Normalizer) resolveCoordinates(raw map[string]any, warnings *[]string) (lat, lon float64, valid bool) {
	latRaw, latIdx, latOK := latitudeChain.resolve(raw)
	lonRaw, lonIdx, lonOK := longitudeChain.resolve(raw)
	if latIdx > 0 {
		*warnings = append(*warnings, fmt.Sprintf("latitude resolved via fallback field %q", latitudeChain.candidates[latIdx]))
	}
	if lonIdx > 0 {
		*warnings = append(*warnings, fmt.Sprintf("longitude resolved via fallback field %q", longitudeChain.candidates[lonIdx]))
	}

	if !latOK || !lonOK {
		*warnings = append(*warnings, "coordinates missing")
		return 0, 0, false
	}

	lat, latNum := toFloat(latRaw)
	lon, lonNum := toFloat(lonRaw)
	if !latNum || !lonNum {
		*warnings = append(*warnings, "coordinates not numeric")
		return 0, 0, false
	}

	return lat, lon, true
}

// resolveFuelPrices collects prices for every known fuel type, in stable
// order. Unpriced fuel types are simply omitted.
func (n *Normalizer) resolveFuelPrices(raw map[string]any, warnings *[]string) []FuelPrice {
	var prices []FuelPrice
	for _, fuelType := range fuelTypeOrder {
		chain := fuelPriceChains[fuelType]
		v, idx, ok := chain.resolve(raw)
		if !ok {
			continue
		}
		if idx > 0 {
			*warnings = append(*warnings, fmt.Sprintf("%s price resolved via fallback field %q", fuelType, chain.candidates[idx]))
		}
		value, numeric := toFloat(v)
		if !numeric || value <= 0 {
			*warnings = append(*warnings, fmt.Sprintf("%s price not numeric, skipped", fuelType))
			continue
		}
		prices = append(prices, FuelPrice{
			FuelType:   fuelType,
			PriceCents: toPriceCents(value),
		})
	}
	return prices
}

// toPriceCents interprets a raw price value. Upstream rows carry either
// cents per litre (e.g. 189.9) or dollars (e.g. 1.899); anything under 50
// is assumed to be dollars.
func toPriceCents(value float64) int {
	if value < 50 {
		value *= 100
	}
	return int(math.Round(value))
}

// stringify renders a raw cell value as a string. Numbers arrive as JSON
// float64, so integral values are printed without a decimal point.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// toFloat parses a raw cell value as a finite float.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return 0, false
	}
}
