package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-placemarks/internal/mapoptions"
)

var (
	ErrMapSizeInvalid             = errors.New("placemarks config: map width and height must be positive")
	ErrMapZoomInvalid             = errors.New("placemarks config: map zoom must be between 0 and 21")
	ErrMapTypeInvalid             = errors.New("placemarks config: map type is invalid")
	ErrClusterStyleInvalid        = errors.New("placemarks config: cluster style is invalid")
	ErrStorageProviderUnknown     = errors.New("placemarks config: storage provider is invalid")
	ErrStorageDriverUnknown       = errors.New("placemarks config: storage driver is invalid")
	ErrStorageDSNRequired         = errors.New("placemarks config: storage dsn is required for the bun provider")
	ErrCacheTTLInvalid            = errors.New("placemarks config: cache ttl must be zero or positive")
	ErrGeocoderTimeoutInvalid     = errors.New("placemarks config: geocoder timeout must be zero or positive")
	ErrMarkdownFeatureRequired    = errors.New("placemarks config: markdown feature must be enabled to configure markdown")
	ErrMarkdownContentDirRequired = errors.New("placemarks config: markdown content directory is required when markdown is enabled")
	ErrMetricsNamespaceRequired   = errors.New("placemarks config: metrics namespace is required when metrics are enabled")
	ErrCommandsCronRequired       = errors.New("placemarks config: command cron registration requires commands to be enabled")
	ErrLoggingProviderRequired    = errors.New("placemarks config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown     = errors.New("placemarks config: logging provider is invalid")
	ErrLoggingLevelInvalid        = errors.New("placemarks config: logging level is invalid")
	ErrLoggingFormatInvalid       = errors.New("placemarks config: logging format is invalid")
)

// Config aggregates feature flags and adapter bindings for the placemarks module.
type Config struct {
	Map        MapConfig       `mapstructure:"map"`
	Geocoder   GeocoderConfig  `mapstructure:"geocoder"`
	Storage    StorageConfig   `mapstructure:"storage"`
	Cache      CacheConfig     `mapstructure:"cache"`
	Shortcodes ShortcodeConfig `mapstructure:"shortcodes"`
	Markdown   MarkdownConfig  `mapstructure:"markdown"`
	Commands   CommandsConfig  `mapstructure:"commands"`
	Logging    LoggingConfig   `mapstructure:"logging"`
	Metrics    MetricsConfig   `mapstructure:"metrics"`
	Features   Features        `mapstructure:"features"`
}

// MapConfig holds the defaults used until site settings are saved, plus the
// name used in notices and the base URL for bundled images.
type MapConfig struct {
	PluginName         string        `mapstructure:"plugin_name"`
	AssetBase          string        `mapstructure:"asset_base"`
	Width              int           `mapstructure:"width"`
	Height             int           `mapstructure:"height"`
	Address            string        `mapstructure:"address"`
	Latitude           string        `mapstructure:"latitude"`
	Longitude          string        `mapstructure:"longitude"`
	Zoom               int           `mapstructure:"zoom"`
	Type               string        `mapstructure:"type"`
	TypeControl        string        `mapstructure:"type_control"`
	NavigationControl  string        `mapstructure:"navigation_control"`
	StreetViewControl  bool          `mapstructure:"street_view_control"`
	InfoWindowMaxWidth int           `mapstructure:"info_window_max_width"`
	ViewOnMapScroll    bool          `mapstructure:"view_on_map_scroll"`
	Clustering         ClusterConfig `mapstructure:"clustering"`
}

// ClusterConfig toggles marker clustering.
type ClusterConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	MaxZoom  int    `mapstructure:"max_zoom"`
	GridSize int    `mapstructure:"grid_size"`
	Style    string `mapstructure:"style"`
}

// GeocoderConfig configures the outbound geocoding client.
type GeocoderConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	APIKey    string        `mapstructure:"api_key"`
	Language  string        `mapstructure:"language"`
	Region    string        `mapstructure:"region"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// StorageConfig selects the placemark store. The memory provider ignores
// Driver and DSN.
type StorageConfig struct {
	Provider    string `mapstructure:"provider"`
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
}

// ShortcodeConfig controls which shortcodes are registered and how they render.
type ShortcodeConfig struct {
	WordPressSyntax bool          `mapstructure:"wordpress_syntax"`
	BuiltIns        []string      `mapstructure:"builtins"`
	ListCacheTTL    time.Duration `mapstructure:"list_cache_ttl"`
}

// MarkdownConfig captures filesystem and parser behaviour for Markdown imports.
type MarkdownConfig struct {
	Enabled     bool                 `mapstructure:"enabled"`
	ContentDir  string               `mapstructure:"content_dir"`
	Pattern     string               `mapstructure:"pattern"`
	Recursive   bool                 `mapstructure:"recursive"`
	Concurrency int                  `mapstructure:"concurrency"`
	Parser      MarkdownParserConfig `mapstructure:"parser"`
}

// MarkdownParserConfig configures the goldmark renderer used for details.
type MarkdownParserConfig struct {
	Extensions []string `mapstructure:"extensions"`
	HardWraps  bool     `mapstructure:"hard_wraps"`
	SafeMode   bool     `mapstructure:"safe_mode"`
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	AutoRegisterCron bool   `mapstructure:"auto_register_cron"`
	UpgradeCron      string `mapstructure:"upgrade_cron"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// MetricsConfig names the Prometheus namespace used for collectors.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// Features toggles module functionality.
type Features struct {
	Logger          bool `mapstructure:"logger"`
	Metrics         bool `mapstructure:"metrics"`
	ValidatePayload bool `mapstructure:"validate_payload"`
	Markdown        bool `mapstructure:"markdown"`
}

// DefaultConfig returns the defaults used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Map: MapConfig{
			PluginName:         "Basic Google Maps Placemarks",
			Width:              600,
			Height:             400,
			Address:            "Seattle",
			Latitude:           "47.6062095",
			Longitude:          "-122.3320708",
			Zoom:               7,
			Type:               string(mapoptions.MapTypeRoadmap),
			TypeControl:        mapoptions.TypeControlOff,
			NavigationControl:  mapoptions.NavigationControlDefault,
			InfoWindowMaxWidth: 500,
			Clustering: ClusterConfig{
				MaxZoom:  7,
				GridSize: 40,
				Style:    mapoptions.ClusterStyleDefault,
			},
		},
		Geocoder: GeocoderConfig{
			Endpoint: "https://maps.googleapis.com/maps/api/geocode/json",
			Timeout:  10 * time.Second,
		},
		Storage: StorageConfig{
			Provider: "memory",
			Driver:   "sqlite",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Shortcodes: ShortcodeConfig{
			WordPressSyntax: true,
		},
		Markdown: MarkdownConfig{
			ContentDir:  "content",
			Pattern:     "*.md",
			Recursive:   true,
			Concurrency: 4,
		},
		Commands: CommandsConfig{
			UpgradeCron: "@daily",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Metrics: MetricsConfig{
			Namespace: "placemarks",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Map.Width <= 0 || cfg.Map.Height <= 0 {
		return ErrMapSizeInvalid
	}
	if cfg.Map.Zoom < mapoptions.MinZoom || cfg.Map.Zoom > mapoptions.MaxZoom {
		return fmt.Errorf("%w: %d", ErrMapZoomInvalid, cfg.Map.Zoom)
	}
	if _, ok := mapoptions.ParseMapType(cfg.Map.Type); !ok {
		return fmt.Errorf("%w: %s", ErrMapTypeInvalid, cfg.Map.Type)
	}
	if style := strings.TrimSpace(cfg.Map.Clustering.Style); style != "" && !contains(mapoptions.ClusterStyleNames(), style) {
		return fmt.Errorf("%w: %s", ErrClusterStyleInvalid, style)
	}

	switch normalize(cfg.Storage.Provider) {
	case "memory":
	case "bun":
		if !isSupportedDriver(normalize(cfg.Storage.Driver)) {
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Cache.DefaultTTL < 0 || cfg.Shortcodes.ListCacheTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Geocoder.Timeout < 0 {
		return ErrGeocoderTimeoutInvalid
	}
	if cfg.Markdown.Enabled {
		if !cfg.Features.Markdown {
			return ErrMarkdownFeatureRequired
		}
		if strings.TrimSpace(cfg.Markdown.ContentDir) == "" {
			return ErrMarkdownContentDirRequired
		}
	}
	if cfg.Features.Metrics && strings.TrimSpace(cfg.Metrics.Namespace) == "" {
		return ErrMetricsNamespaceRequired
	}
	if cfg.Commands.AutoRegisterCron && !cfg.Commands.Enabled {
		return ErrCommandsCronRequired
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func contains(values []string, candidate string) bool {
	for _, v := range values {
		if v == candidate {
			return true
		}
	}
	return false
}

func isSupportedDriver(driver string) bool {
	switch driver {
	case "sqlite", "sqlite3", "postgres", "pg":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
