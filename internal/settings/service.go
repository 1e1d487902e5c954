package settings

import (
	"context"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-placemarks/internal/coordinates"
	"github.com/goliatone/go-placemarks/internal/geocoding"
	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/internal/mapoptions"
	"github.com/goliatone/go-placemarks/internal/notices"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

const defaultPluginName = "Basic Google Maps Placemarks"

// Service loads and saves the site wide map settings.
type Service struct {
	store     Store
	defaults  Settings
	geocoder  interfaces.Geocoder
	logger    interfaces.Logger
	assetBase string
	plugin    string
}

// Option configures the settings service.
type Option func(*Service)

// WithDefaults replaces the values used for keys that were never saved.
func WithDefaults(defaults Settings) Option {
	return func(s *Service) {
		s.defaults = defaults
	}
}

// WithGeocoder sets the geocoder used to resolve the map address.
func WithGeocoder(geocoder interfaces.Geocoder) Option {
	return func(s *Service) {
		s.geocoder = geocoder
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAssetBase sets the base URL cluster images are resolved against.
func WithAssetBase(base string) Option {
	return func(s *Service) {
		s.assetBase = base
	}
}

// WithPluginName overrides the prefix used in geocode notices.
func WithPluginName(name string) Option {
	return func(s *Service) {
		if strings.TrimSpace(name) != "" {
			s.plugin = name
		}
	}
}

// NewService wires the settings service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		defaults: DefaultSettings(),
		logger:   logging.NoOp(),
		plugin:   defaultPluginName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load overlays stored values on the defaults. Unparseable stored values are
// ignored and the default is kept.
func (s *Service) Load(ctx context.Context) (Settings, error) {
	stored, err := s.store.All(ctx)
	if err != nil {
		return Settings{}, err
	}

	out := s.defaults
	for _, key := range sortedKeys(stored) {
		if err := apply(&out, key, stored[key]); err != nil {
			logging.WithFields(s.logger.WithContext(ctx), map[string]any{
				"key":   key,
				"error": err,
			}).Warn("settings.load.value_ignored")
		}
	}
	return out, nil
}

// Save validates and persists settings. The address is geocoded into the
// stored centre; on failure the centre is cleared and a notice is returned.
func (s *Service) Save(ctx context.Context, in Settings) (Settings, notices.List, error) {
	in.Address = strings.TrimSpace(in.Address)
	in.MapType, _ = mapoptions.ParseMapType(string(in.MapType))
	if err := in.Validate(); err != nil {
		return Settings{}, nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid map settings").
			WithTextCode("SETTINGS_INVALID")
	}

	collector := notices.NewCollector()
	in.Latitude, in.Longitude = "", ""
	if in.Address != "" {
		if coords, ok := s.resolve(ctx, in.Address, collector); ok {
			in.Latitude = coordinates.FormatNumber(coords.Latitude)
			in.Longitude = coordinates.FormatNumber(coords.Longitude)
		}
	}

	for _, kv := range encode(in) {
		if err := s.store.Set(ctx, kv[0], kv[1]); err != nil {
			return Settings{}, collector.List(), err
		}
	}

	logging.WithFields(s.logger.WithContext(ctx), map[string]any{
		"address": in.Address,
		"located": in.Latitude != "",
	}).Info("settings.saved")
	return in, collector.List(), nil
}

func (s *Service) resolve(ctx context.Context, address string, collector *notices.Collector) (interfaces.Coordinates, bool) {
	if s.geocoder == nil {
		return coordinates.Validate(address)
	}
	coords, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		collector.AddError(geocoding.Notice(s.plugin, err))
		return interfaces.Coordinates{}, false
	}
	return coords, true
}

// MapDefaults converts the current settings into map defaults. A missing
// centre falls back to the configured default centre.
func (s *Service) MapDefaults(ctx context.Context) (mapoptions.Defaults, error) {
	current, err := s.Load(ctx)
	if err != nil {
		return mapoptions.Defaults{}, err
	}
	center, ok := coordinates.FromParts(current.Latitude, current.Longitude)
	if !ok {
		center, _ = coordinates.FromParts(s.defaults.Latitude, s.defaults.Longitude)
	}
	return mapoptions.Defaults{
		Width:              current.Width,
		Height:             current.Height,
		Center:             center,
		Zoom:               current.Zoom,
		MapType:            current.MapType,
		TypeControl:        current.TypeControl,
		NavigationControl:  current.NavigationControl,
		StreetViewControl:  current.StreetViewControl,
		InfoWindowMaxWidth: current.InfoWindowMaxWidth,
		ViewOnMapScroll:    current.ViewOnMapScroll,
		Clustering: mapoptions.ClusterConfig{
			Enabled:   current.ClusterEnabled,
			MaxZoom:   current.ClusterMaxZoom,
			GridSize:  current.ClusterGridSize,
			Style:     current.ClusterStyle,
			ImageBase: s.assetBase,
		},
	}, nil
}

// DBVersion returns the stored schema version, or "" before the first upgrade.
func (s *Service) DBVersion(ctx context.Context) (string, error) {
	value, _, err := s.store.Get(ctx, KeyDBVersion)
	return value, err
}

// SetDBVersion records the schema version.
func (s *Service) SetDBVersion(ctx context.Context, version string) error {
	return s.store.Set(ctx, KeyDBVersion, strings.TrimSpace(version))
}

// Validate checks the settings ranges and enumerations.
func (in Settings) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Width, validation.Required, validation.Min(1)),
		validation.Field(&in.Height, validation.Required, validation.Min(1)),
		validation.Field(&in.Zoom, validation.Min(mapoptions.MinZoom), validation.Max(mapoptions.MaxZoom)),
		validation.Field(&in.MapType, validation.Required, validation.In(toAny(mapoptions.MapTypes())...)),
		validation.Field(&in.TypeControl, validation.Required, validation.In(toAny(mapoptions.TypeControls())...)),
		validation.Field(&in.NavigationControl, validation.Required, validation.In(toAny(mapoptions.NavigationControls())...)),
		validation.Field(&in.InfoWindowMaxWidth, validation.Min(0)),
		validation.Field(&in.ClusterMaxZoom, validation.Min(mapoptions.MinZoom), validation.Max(mapoptions.MaxZoom)),
		validation.Field(&in.ClusterGridSize, validation.Min(0)),
		validation.Field(&in.ClusterStyle, validation.Required, validation.In(toAny(mapoptions.ClusterStyleNames())...)),
	)
}

func toAny[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func encode(in Settings) [][2]string {
	return [][2]string{
		{KeyMapWidth, strconv.Itoa(in.Width)},
		{KeyMapHeight, strconv.Itoa(in.Height)},
		{KeyMapAddress, in.Address},
		{KeyMapLatitude, in.Latitude},
		{KeyMapLongitude, in.Longitude},
		{KeyMapZoom, strconv.Itoa(in.Zoom)},
		{KeyMapType, string(in.MapType)},
		{KeyMapTypeControl, in.TypeControl},
		{KeyMapNavigation, in.NavigationControl},
		{KeyStreetViewControl, strconv.FormatBool(in.StreetViewControl)},
		{KeyInfoWindowMaxWidth, strconv.Itoa(in.InfoWindowMaxWidth)},
		{KeyViewOnMapScroll, strconv.FormatBool(in.ViewOnMapScroll)},
		{KeyClusterEnabled, strconv.FormatBool(in.ClusterEnabled)},
		{KeyClusterMaxZoom, strconv.Itoa(in.ClusterMaxZoom)},
		{KeyClusterGridSize, strconv.Itoa(in.ClusterGridSize)},
		{KeyClusterStyle, in.ClusterStyle},
	}
}

func apply(out *Settings, key, value string) error {
	switch key {
	case KeyMapWidth:
		return setInt(&out.Width, value)
	case KeyMapHeight:
		return setInt(&out.Height, value)
	case KeyMapAddress:
		out.Address = value
	case KeyMapLatitude:
		out.Latitude = value
	case KeyMapLongitude:
		out.Longitude = value
	case KeyMapZoom:
		return setInt(&out.Zoom, value)
	case KeyMapType:
		out.MapType = mapoptions.MapType(value)
	case KeyMapTypeControl:
		out.TypeControl = value
	case KeyMapNavigation:
		out.NavigationControl = value
	case KeyStreetViewControl:
		return setBool(&out.StreetViewControl, value)
	case KeyInfoWindowMaxWidth:
		return setInt(&out.InfoWindowMaxWidth, value)
	case KeyViewOnMapScroll:
		return setBool(&out.ViewOnMapScroll, value)
	case KeyClusterEnabled:
		return setBool(&out.ClusterEnabled, value)
	case KeyClusterMaxZoom:
		return setInt(&out.ClusterMaxZoom, value)
	case KeyClusterGridSize:
		return setInt(&out.ClusterGridSize, value)
	case KeyClusterStyle:
		out.ClusterStyle = value
	}
	return nil
}

func setInt(dst *int, value string) error {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setBool(dst *bool, value string) error {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
