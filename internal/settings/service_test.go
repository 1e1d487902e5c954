package settings_test

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-placemarks/internal/mapoptions"
	"github.com/goliatone/go-placemarks/internal/settings"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
	"github.com/goliatone/go-placemarks/pkg/testsupport"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type geocoderStub struct {
	results map[string]interfaces.Coordinates
}

func (g geocoderStub) Geocode(_ context.Context, address string) (interfaces.Coordinates, error) {
	if coords, ok := g.results[address]; ok {
		return coords, nil
	}
	return interfaces.Coordinates{}, errors.New("ZERO_RESULTS")
}

func (geocoderStub) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return "", errors.New("not supported")
}

func TestLoadReturnsDefaultsWhenEmpty(t *testing.T) {
	svc := settings.NewService(settings.NewMemoryStore())

	got, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != settings.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestLoadIgnoresUnparseableValues(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()
	_ = store.Set(ctx, settings.KeyMapWidth, "wide")
	_ = store.Set(ctx, settings.KeyMapHeight, "250")
	_ = store.Set(ctx, settings.KeyClusterEnabled, "true")

	got, err := settings.NewService(store).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Width != 600 {
		t.Fatalf("expected default width to survive, got %d", got.Width)
	}
	if got.Height != 250 {
		t.Fatalf("expected stored height, got %d", got.Height)
	}
	if !got.ClusterEnabled {
		t.Fatalf("expected clustering enabled")
	}
}

func TestSaveGeocodesAddress(t *testing.T) {
	ctx := context.Background()
	svc := settings.NewService(settings.NewMemoryStore(),
		settings.WithGeocoder(geocoderStub{results: map[string]interfaces.Coordinates{
			"Portland, OR": {Latitude: 45.5152, Longitude: -122.6784},
		}}),
		settings.WithAssetBase("https://example.com/bgmp"),
	)

	in := settings.DefaultSettings()
	in.Address = " Portland, OR "
	in.MapType = "satellite"
	in.ClusterEnabled = true
	in.ClusterStyle = mapoptions.ClusterStyleHearts

	saved, list, err := svc.Save(ctx, in)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no notices, got %+v", list)
	}
	if saved.Address != "Portland, OR" || saved.MapType != mapoptions.MapTypeSatellite {
		t.Fatalf("unexpected normalized settings %+v", saved)
	}

	defaults, err := svc.MapDefaults(ctx)
	if err != nil {
		t.Fatalf("map defaults: %v", err)
	}
	if defaults.Center.Latitude != 45.5152 || defaults.Center.Longitude != -122.6784 {
		t.Fatalf("unexpected centre %+v", defaults.Center)
	}
	if defaults.MapType != mapoptions.MapTypeSatellite {
		t.Fatalf("expected satellite, got %s", defaults.MapType)
	}
	if !defaults.Clustering.Enabled || defaults.Clustering.Style != mapoptions.ClusterStyleHearts {
		t.Fatalf("unexpected clustering %+v", defaults.Clustering)
	}
	if defaults.Clustering.ImageBase != "https://example.com/bgmp" {
		t.Fatalf("expected asset base to flow into clustering, got %q", defaults.Clustering.ImageBase)
	}
}

func TestSaveClearsCentreWhenGeocodingFails(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()
	svc := settings.NewService(store, settings.WithGeocoder(geocoderStub{}))

	in := settings.DefaultSettings()
	in.Address = "Atlantis"
	saved, list, err := svc.Save(ctx, in)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Latitude != "" || saved.Longitude != "" {
		t.Fatalf("expected cleared centre, got %q,%q", saved.Latitude, saved.Longitude)
	}
	errs := list.Errors()
	if len(errs) != 1 || errs[0] != "Basic Google Maps Placemarks geocode error: ZERO_RESULTS" {
		t.Fatalf("unexpected notices %v", errs)
	}
	if value, ok, _ := store.Get(ctx, settings.KeyMapLatitude); !ok || value != "" {
		t.Fatalf("expected empty stored latitude, got %q ok=%v", value, ok)
	}

	defaults, err := svc.MapDefaults(ctx)
	if err != nil {
		t.Fatalf("map defaults: %v", err)
	}
	if defaults.Center.Latitude != 47.6062095 {
		t.Fatalf("expected fallback centre, got %+v", defaults.Center)
	}
}

func TestSaveRejectsInvalidSettings(t *testing.T) {
	cases := map[string]func(*settings.Settings){
		"zero width":     func(s *settings.Settings) { s.Width = 0 },
		"zoom too large": func(s *settings.Settings) { s.Zoom = 22 },
		"bad map type":   func(s *settings.Settings) { s.MapType = "MOON" },
		"bad control":    func(s *settings.Settings) { s.TypeControl = "sideways" },
		"bad style":      func(s *settings.Settings) { s.ClusterStyle = "stars" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := settings.DefaultSettings()
			mutate(&in)
			_, _, err := settings.NewService(settings.NewMemoryStore()).Save(context.Background(), in)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Fatalf("expected validation category, got %v", err)
			}
		})
	}
}

func TestDBVersionRoundTripWithBunStore(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := testsupport.NewSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE bgmp_settings (
		id TEXT PRIMARY KEY,
		"key" TEXT NOT NULL UNIQUE,
		value TEXT,
		updated_at TIMESTAMP
	)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	store := settings.NewBunStore(db)
	svc := settings.NewService(store)

	version, err := svc.DBVersion(ctx)
	if err != nil || version != "" {
		t.Fatalf("expected empty version, got %q err=%v", version, err)
	}
	if err := svc.SetDBVersion(ctx, "1.0"); err != nil {
		t.Fatalf("set version: %v", err)
	}
	if err := svc.SetDBVersion(ctx, "1.10.2"); err != nil {
		t.Fatalf("overwrite version: %v", err)
	}
	version, err = svc.DBVersion(ctx)
	if err != nil || version != "1.10.2" {
		t.Fatalf("expected 1.10.2, got %q err=%v", version, err)
	}

	in := settings.DefaultSettings()
	in.Address = "40.7128,-74.0060"
	in.Zoom = 11
	if _, _, err := svc.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Zoom != 11 || loaded.Latitude != "40.7128" || loaded.Longitude != "-74.006" {
		t.Fatalf("unexpected loaded settings %+v", loaded)
	}
}
