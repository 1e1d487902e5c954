package placemarks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-placemarks/internal/placemarks"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

type versionStoreStub struct {
	version string
	writes  []string
}

func (v *versionStoreStub) DBVersion(context.Context) (string, error) {
	return v.version, nil
}

func (v *versionStoreStub) SetDBVersion(_ context.Context, version string) error {
	v.version = version
	v.writes = append(v.writes, version)
	return nil
}

func seedLegacy(t *testing.T, repo placemarks.PlacemarkRepository, records ...*placemarks.Placemark) {
	t.Helper()
	for _, record := range records {
		if _, err := repo.Create(context.Background(), record); err != nil {
			t.Fatalf("seed %q: %v", record.Title, err)
		}
	}
}

func TestUpgradeLegacyBackfillsAddresses(t *testing.T) {
	ctx := context.Background()
	repo := placemarks.NewMemoryPlacemarkRepository()
	seedLegacy(t, repo,
		&placemarks.Placemark{Title: "Legacy", Latitude: "47.6", Longitude: "-122.3"},
		&placemarks.Placemark{Title: "Unknown", Latitude: "1", Longitude: "1"},
		&placemarks.Placemark{Title: "Addressed", Address: "Keep me", Latitude: "47.6", Longitude: "-122.3"},
		&placemarks.Placemark{Title: "Bare"},
	)

	geocoder := &geocoderStub{reverse: map[string]string{
		"47.6,-122.3": "Seattle, WA, USA",
	}}
	versions := &versionStoreStub{version: "1.0"}
	svc := placemarks.NewService(repo, placemarks.NewMemoryCategoryRepository(),
		placemarks.WithGeocoder(geocoder),
		placemarks.WithVersionStore(versions),
	)

	list, err := svc.UpgradeLegacy(ctx)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if versions.version != placemarks.CurrentVersion {
		t.Fatalf("expected version %s, got %s", placemarks.CurrentVersion, versions.version)
	}
	if errs := list.Errors(); len(errs) != 1 {
		t.Fatalf("expected one reverse geocode notice, got %v", errs)
	}

	records, err := svc.List(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	addresses := map[string]string{}
	for _, record := range records {
		addresses[record.Title] = record.Address
	}
	want := map[string]string{
		"Legacy":    "Seattle, WA, USA",
		"Unknown":   "",
		"Addressed": "Keep me",
		"Bare":      "",
	}
	for title, address := range want {
		if addresses[title] != address {
			t.Fatalf("%s: expected address %q, got %q", title, address, addresses[title])
		}
	}
}

func TestUpgradeLegacySkipsCurrentVersion(t *testing.T) {
	versions := &versionStoreStub{version: placemarks.CurrentVersion}
	svc := placemarks.NewService(placemarks.NewMemoryPlacemarkRepository(), placemarks.NewMemoryCategoryRepository(),
		placemarks.WithVersionStore(versions),
	)
	if _, err := svc.UpgradeLegacy(context.Background()); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if len(versions.writes) != 0 {
		t.Fatalf("expected no version write, got %v", versions.writes)
	}
}

func TestUpgradeLegacyNewerThanAddressFieldOnlyBumpsVersion(t *testing.T) {
	ctx := context.Background()
	repo := placemarks.NewMemoryPlacemarkRepository()
	seedLegacy(t, repo, &placemarks.Placemark{Title: "Legacy", Latitude: "47.6", Longitude: "-122.3"})

	geocoder := &geocoderStub{reverse: map[string]string{"47.6,-122.3": "Seattle"}}
	versions := &versionStoreStub{version: "1.9"}
	svc := placemarks.NewService(repo, placemarks.NewMemoryCategoryRepository(),
		placemarks.WithGeocoder(geocoder),
		placemarks.WithVersionStore(versions),
	)
	if _, err := svc.UpgradeLegacy(ctx); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if versions.version != placemarks.CurrentVersion {
		t.Fatalf("expected version bump, got %s", versions.version)
	}
	records, _ := svc.List(ctx, nil)
	if records[0].Address != "" {
		t.Fatalf("expected address untouched, got %q", records[0].Address)
	}
}

func TestUpgradeLegacyTreatsMissingVersionAsOldest(t *testing.T) {
	ctx := context.Background()
	repo := placemarks.NewMemoryPlacemarkRepository()
	seedLegacy(t, repo, &placemarks.Placemark{Title: "Legacy", Latitude: "47.6", Longitude: "-122.3"})

	versions := &versionStoreStub{}
	svc := placemarks.NewService(repo, placemarks.NewMemoryCategoryRepository(),
		placemarks.WithGeocoder(&geocoderStub{reverse: map[string]string{"47.6,-122.3": "Seattle"}}),
		placemarks.WithVersionStore(versions),
	)
	if _, err := svc.UpgradeLegacy(ctx); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	records, _ := svc.List(ctx, nil)
	if records[0].Address != "Seattle" {
		t.Fatalf("expected backfilled address, got %q", records[0].Address)
	}
}

func TestUpgradeLegacyRequiresVersionStore(t *testing.T) {
	svc := placemarks.NewService(placemarks.NewMemoryPlacemarkRepository(), placemarks.NewMemoryCategoryRepository())
	if _, err := svc.UpgradeLegacy(context.Background()); !errors.Is(err, placemarks.ErrVersionStoreMissing) {
		t.Fatalf("expected ErrVersionStoreMissing, got %v", err)
	}
}

var _ interfaces.Geocoder = (*geocoderStub)(nil)
