package ditesting

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goliatone/go-placemarks/internal/coordinates"
	"github.com/goliatone/go-placemarks/internal/di"
	"github.com/goliatone/go-placemarks/internal/runtimeconfig"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

// ErrZeroResults mirrors the reason the geocoding API reports for unknown
// addresses.
var ErrZeroResults = errors.New("ZERO_RESULTS")

// Geocoder resolves addresses from a fixed table and records every lookup.
type Geocoder struct {
	mu        sync.Mutex
	addresses map[string]interfaces.Coordinates
	reverse   map[string]string
	calls     []string
}

// NewGeocoder returns a geocoder answering from addresses.
func NewGeocoder(addresses map[string]interfaces.Coordinates) *Geocoder {
	if addresses == nil {
		addresses = map[string]interfaces.Coordinates{}
	}
	return &Geocoder{addresses: addresses, reverse: map[string]string{}}
}

// WithReverse registers the address returned for coords.
func (g *Geocoder) WithReverse(coords interfaces.Coordinates, address string) *Geocoder {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reverse[coordinates.Format(coords)] = address
	return g
}

func (g *Geocoder) Geocode(_ context.Context, address string) (interfaces.Coordinates, error) {
	if coords, ok := coordinates.Validate(address); ok {
		return coords, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "geocode:"+address)
	if coords, ok := g.addresses[strings.TrimSpace(address)]; ok {
		return coords, nil
	}
	return interfaces.Coordinates{}, ErrZeroResults
}

func (g *Geocoder) ReverseGeocode(_ context.Context, latitude, longitude float64) (string, error) {
	key := coordinates.Format(interfaces.Coordinates{Latitude: latitude, Longitude: longitude})
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "reverse:"+key)
	if address, ok := g.reverse[key]; ok {
		return address, nil
	}
	return "", ErrZeroResults
}

// Calls lists the lookups that reached the table, in order. Raw coordinate
// bypasses are not recorded.
func (g *Geocoder) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

// NewMemoryContainer builds a memory backed container around geocoder with
// the default configuration adjusted by mutate.
func NewMemoryContainer(geocoder interfaces.Geocoder, mutate func(*runtimeconfig.Config), opts ...di.Option) (*di.Container, error) {
	cfg := runtimeconfig.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	if geocoder != nil {
		opts = append([]di.Option{di.WithGeocoder(geocoder)}, opts...)
	}
	return di.NewContainer(cfg, opts...)
}
