package placemarks

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-placemarks/internal/geocoding"
	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/internal/notices"
	"golang.org/x/mod/semver"
)

const (
	// CurrentVersion is written to the version store after every upgrade.
	CurrentVersion = "1.10.2"

	// addressFieldVersion introduced the address field.
	addressFieldVersion = "1.1"
)

// ErrVersionStoreMissing is returned by UpgradeLegacy when no store is configured.
var ErrVersionStoreMissing = errors.New("placemarks: version store not configured")

// VersionStore persists the schema version the stored data was written with.
type VersionStore interface {
	DBVersion(ctx context.Context) (string, error)
	SetDBVersion(ctx context.Context, version string) error
}

// UpgradeLegacy migrates data written by older versions. Placemarks stored
// before the address field existed get one by reverse geocoding their
// coordinates. A failing placemark is reported and skipped.
func (s *Service) UpgradeLegacy(ctx context.Context) (notices.List, error) {
	if s.versions == nil {
		return nil, ErrVersionStoreMissing
	}
	stored, err := s.versions.DBVersion(ctx)
	if err != nil {
		return nil, err
	}
	if compareVersions(stored, CurrentVersion) == 0 {
		return nil, nil
	}

	logger := logging.WithFields(s.logger.WithContext(ctx), map[string]any{
		"operation": "placemarks.upgrade",
		"from":      stored,
		"to":        CurrentVersion,
	})
	collector := notices.NewCollector()

	if compareVersions(stored, addressFieldVersion) < 0 {
		filled, err := s.backfillAddresses(ctx, collector)
		if err != nil {
			return collector.List(), err
		}
		logger.Info("placemarks.upgrade.addresses_backfilled", "count", filled)
	}

	if err := s.versions.SetDBVersion(ctx, CurrentVersion); err != nil {
		return collector.List(), err
	}
	logger.Info("placemarks.upgrade.completed")
	return collector.List(), nil
}

func (s *Service) backfillAddresses(ctx context.Context, collector *notices.Collector) (int, error) {
	records, err := s.placemarks.List(ctx, ListOptions{})
	if err != nil {
		return 0, err
	}

	filled := 0
	for _, record := range records {
		if strings.TrimSpace(record.Address) != "" {
			continue
		}
		if strings.TrimSpace(record.Latitude) == "" || strings.TrimSpace(record.Longitude) == "" {
			continue
		}
		coords, ok := record.Coordinates()
		if !ok || s.geocoder == nil {
			continue
		}
		address, err := s.geocoder.ReverseGeocode(ctx, coords.Latitude, coords.Longitude)
		if err != nil {
			collector.AddError(geocoding.Notice(s.plugin, err))
			continue
		}
		if address == "" {
			continue
		}
		record.Address = address
		record.UpdatedAt = s.now()
		if _, err := s.placemarks.Update(ctx, record); err != nil {
			return filled, err
		}
		filled++
	}
	return filled, nil
}

// compareVersions orders dotted version strings. Missing or malformed
// versions sort before every valid one.
func compareVersions(a, b string) int {
	return semver.Compare(canonicalVersion(a), canonicalVersion(b))
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
