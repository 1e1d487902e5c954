package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: PLACEMARKS_GEOCODER_API_KEY
// maps to geocoder.api_key.
const EnvPrefix = "PLACEMARKS"

// Load reads configuration from path, or from placemarks.yaml in the working
// directory or ./configs when path is empty, then applies environment
// overrides. A missing file is only an error when path is given explicitly.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("placemarks config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("placemarks")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("placemarks config: read: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("placemarks config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides resolve even when
// the file does not mention them.
func setDefaults(v *viper.Viper, cfg Config) {
	defaults := map[string]any{
		"map.plugin_name":             cfg.Map.PluginName,
		"map.asset_base":              cfg.Map.AssetBase,
		"map.width":                   cfg.Map.Width,
		"map.height":                  cfg.Map.Height,
		"map.address":                 cfg.Map.Address,
		"map.latitude":                cfg.Map.Latitude,
		"map.longitude":               cfg.Map.Longitude,
		"map.zoom":                    cfg.Map.Zoom,
		"map.type":                    cfg.Map.Type,
		"map.type_control":            cfg.Map.TypeControl,
		"map.navigation_control":      cfg.Map.NavigationControl,
		"map.street_view_control":     cfg.Map.StreetViewControl,
		"map.info_window_max_width":   cfg.Map.InfoWindowMaxWidth,
		"map.view_on_map_scroll":      cfg.Map.ViewOnMapScroll,
		"map.clustering.enabled":      cfg.Map.Clustering.Enabled,
		"map.clustering.max_zoom":     cfg.Map.Clustering.MaxZoom,
		"map.clustering.grid_size":    cfg.Map.Clustering.GridSize,
		"map.clustering.style":        cfg.Map.Clustering.Style,
		"geocoder.endpoint":           cfg.Geocoder.Endpoint,
		"geocoder.api_key":            cfg.Geocoder.APIKey,
		"geocoder.language":           cfg.Geocoder.Language,
		"geocoder.region":             cfg.Geocoder.Region,
		"geocoder.user_agent":         cfg.Geocoder.UserAgent,
		"geocoder.timeout":            cfg.Geocoder.Timeout,
		"storage.provider":            cfg.Storage.Provider,
		"storage.driver":              cfg.Storage.Driver,
		"storage.dsn":                 cfg.Storage.DSN,
		"storage.auto_migrate":        cfg.Storage.AutoMigrate,
		"cache.enabled":               cfg.Cache.Enabled,
		"cache.default_ttl":           cfg.Cache.DefaultTTL,
		"shortcodes.wordpress_syntax": cfg.Shortcodes.WordPressSyntax,
		"shortcodes.builtins":         cfg.Shortcodes.BuiltIns,
		"shortcodes.list_cache_ttl":   cfg.Shortcodes.ListCacheTTL,
		"markdown.enabled":            cfg.Markdown.Enabled,
		"markdown.content_dir":        cfg.Markdown.ContentDir,
		"markdown.pattern":            cfg.Markdown.Pattern,
		"markdown.recursive":          cfg.Markdown.Recursive,
		"markdown.concurrency":        cfg.Markdown.Concurrency,
		"markdown.parser.extensions":  cfg.Markdown.Parser.Extensions,
		"markdown.parser.hard_wraps":  cfg.Markdown.Parser.HardWraps,
		"markdown.parser.safe_mode":   cfg.Markdown.Parser.SafeMode,
		"commands.enabled":            cfg.Commands.Enabled,
		"commands.auto_register_cron": cfg.Commands.AutoRegisterCron,
		"commands.upgrade_cron":       cfg.Commands.UpgradeCron,
		"logging.provider":            cfg.Logging.Provider,
		"logging.level":               cfg.Logging.Level,
		"logging.format":              cfg.Logging.Format,
		"logging.add_source":          cfg.Logging.AddSource,
		"logging.focus":               cfg.Logging.Focus,
		"metrics.namespace":           cfg.Metrics.Namespace,
		"features.logger":             cfg.Features.Logger,
		"features.metrics":            cfg.Features.Metrics,
		"features.validate_payload":   cfg.Features.ValidatePayload,
		"features.markdown":           cfg.Features.Markdown,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}
