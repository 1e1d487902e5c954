package interfaces

import "context"

// Coordinates is a validated latitude/longitude pair. Values are only produced
// by the coordinate validator or a geocoder, so both fields are always set.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves free-form addresses to coordinates and coordinates back to
// a formatted address.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinates, error)
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error)
}
