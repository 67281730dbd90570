package station

import "time"

// SampleSnapshot returns the bundled sample dataset used when neither the
// remote table nor a persisted snapshot is available. Prices are fixed
// whole cents per litre, the same unit the normalizer emits for live rows,
// clearly marked as mock, and deterministic so tests and demos behave the
// same on every run.
func SampleSnapshot() *Snapshot {
	stations := []*Station{
		sampleStation("sample-1", "Shell Coburg", "120 Bell St", "Coburg", "3058", "northern", "Shell",
			-37.7441, 144.9633, 190, 205),
		sampleStation("sample-2", "BP Brunswick", "341 Sydney Rd", "Brunswick", "3056", "northern", "BP",
			-37.7667, 144.9599, 188, 203),
		sampleStation("sample-3", "7-Eleven Preston", "200 Murray Rd", "Preston", "3072", "northern", "7-Eleven",
			-37.7383, 145.0000, 186, 201),
		sampleStation("sample-4", "United Box Hill", "955 Whitehorse Rd", "Box Hill", "3128", "eastern", "United",
			-37.8190, 145.1220, 191, 206),
		sampleStation("sample-5", "Ampol Ringwood", "32 Maroondah Hwy", "Ringwood", "3134", "eastern", "Ampol",
			-37.8142, 145.2286, 193, 208),
		sampleStation("sample-6", "Shell Frankston", "425 Nepean Hwy", "Frankston", "3199", "southern", "Shell",
			-38.1413, 145.1226, 185, 200),
		sampleStation("sample-7", "BP Dandenong", "101 Princes Hwy", "Dandenong", "3175", "southern", "BP",
			-37.9874, 145.2149, 187, 202),
		sampleStation("sample-8", "Liberty Cheltenham", "1186 Nepean Hwy", "Cheltenham", "3192", "southern", "Liberty",
			-37.9672, 145.0546, 184, 199),
		sampleStation("sample-9", "7-Eleven Footscray", "56 Geelong Rd", "Footscray", "3011", "western", "7-Eleven",
			-37.8016, 144.8876, 189, 204),
		sampleStation("sample-10", "United Werribee", "225 Heaths Rd", "Werribee", "3030", "western", "United",
			-37.8850, 144.6620, 183, 198),
		sampleStation("sample-11", "Shell Carlton", "109 Elgin St", "Carlton", "3053", "inner", "Shell",
			-37.8010, 144.9680, 195, 210),
		sampleStation("sample-12", "BP Richmond", "602 Bridge Rd", "Richmond", "3121", "inner", "BP",
			-37.8190, 145.0090, 194, 209),
	}

	return &Snapshot{
		Stations:  stations,
		FetchedAt: time.Now(),
		Source:    SnapshotSourceSample,
	}
}

func sampleStation(id, name, address, suburb, postcode, regionID, brand string,
	lat, lon float64, u91, p98 int) *Station {
	return &Station{
		ID:                  id,
		Name:                name,
		Address:             address,
		Suburb:              suburb,
		PostalCode:          postcode,
		Region:              regionID,
		Country:             "Australia",
		Brand:               brand,
		Latitude:            lat,
		Longitude:           lon,
		HasValidCoordinates: true,
		FuelPrices: []FuelPrice{
			{FuelType: "U91", PriceCents: u91},
			{FuelType: "P95", PriceCents: u91 + 10},
			{FuelType: "P98", PriceCents: p98},
			{FuelType: "Diesel", PriceCents: u91 - 2},
		},
		PriceSource: PriceSourceMock,
	}
}
