package noop

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-placemarks/internal/coordinates"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

// Cache returns an interfaces.CacheProvider that stores nothing: every
// lookup runs fetch.
func Cache() interfaces.CacheProvider {
	return cacheAdapter{}
}

type cacheAdapter struct{}

func (cacheAdapter) GetOrFetch(ctx context.Context, _ string, fetch func(context.Context) (string, error)) (string, error) {
	return fetch(ctx)
}

func (cacheAdapter) Delete(context.Context, string) error {
	return nil
}

func (cacheAdapter) DeleteByPrefix(context.Context, string) error {
	return nil
}

// Geocoder returns a geocoder that only accepts "lat,lon" input. Everything
// else fails, which callers turn into a notice.
func Geocoder() interfaces.Geocoder {
	return geocoderAdapter{}
}

// ErrGeocoderDisabled is returned for addresses the no-op geocoder cannot resolve.
var ErrGeocoderDisabled = errors.New("geocoding is disabled")

type geocoderAdapter struct{}

func (geocoderAdapter) Geocode(_ context.Context, address string) (interfaces.Coordinates, error) {
	if coords, ok := coordinates.Validate(address); ok {
		return coords, nil
	}
	return interfaces.Coordinates{}, ErrGeocoderDisabled
}

func (geocoderAdapter) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return "", ErrGeocoderDisabled
}

// ShortcodeMetrics returns a recorder that drops every observation.
func ShortcodeMetrics() interfaces.ShortcodeMetrics {
	return metricsAdapter{}
}

type metricsAdapter struct{}

func (metricsAdapter) ObserveRenderDuration(string, time.Duration) {}

func (metricsAdapter) IncrementRenderError(string) {}

func (metricsAdapter) IncrementCacheHit(string) {}
