package noop_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-placemarks/internal/adapters/noop"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

func TestAdaptersImplementInterfaces(t *testing.T) {
	var (
		_ interfaces.CacheProvider    = noop.Cache()
		_ interfaces.Geocoder         = noop.Geocoder()
		_ interfaces.ShortcodeMetrics = noop.ShortcodeMetrics()
	)
}

func TestCacheAlwaysFetches(t *testing.T) {
	ctx := context.Background()
	cache := noop.Cache()
	calls := 0
	fetch := func(context.Context) (string, error) {
		calls++
		return "v", nil
	}
	for range 2 {
		if got, err := cache.GetOrFetch(ctx, "k", fetch); err != nil || got != "v" {
			t.Fatalf("get or fetch: %q %v", got, err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected every lookup to fetch, got %d", calls)
	}
	if err := cache.DeleteByPrefix(ctx, "k"); err != nil {
		t.Fatalf("delete by prefix: %v", err)
	}
}

func TestGeocoderOnlyAcceptsCoordinates(t *testing.T) {
	ctx := context.Background()
	geocoder := noop.Geocoder()

	coords, err := geocoder.Geocode(ctx, "47.6, -122.3")
	if err != nil {
		t.Fatalf("geocode coordinates: %v", err)
	}
	if coords.Latitude != 47.6 || coords.Longitude != -122.3 {
		t.Fatalf("unexpected coordinates %+v", coords)
	}
	if _, err := geocoder.Geocode(ctx, "Seattle"); !errors.Is(err, noop.ErrGeocoderDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
	if _, err := geocoder.ReverseGeocode(ctx, 1, 1); !errors.Is(err, noop.ErrGeocoderDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}
