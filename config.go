package placemarks

import "github.com/goliatone/go-placemarks/internal/runtimeconfig"

var (
	ErrMapSizeInvalid             = runtimeconfig.ErrMapSizeInvalid
	ErrMapZoomInvalid             = runtimeconfig.ErrMapZoomInvalid
	ErrMapTypeInvalid             = runtimeconfig.ErrMapTypeInvalid
	ErrClusterStyleInvalid        = runtimeconfig.ErrClusterStyleInvalid
	ErrStorageProviderUnknown     = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown       = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired         = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid            = runtimeconfig.ErrCacheTTLInvalid
	ErrGeocoderTimeoutInvalid     = runtimeconfig.ErrGeocoderTimeoutInvalid
	ErrMarkdownFeatureRequired    = runtimeconfig.ErrMarkdownFeatureRequired
	ErrMarkdownContentDirRequired = runtimeconfig.ErrMarkdownContentDirRequired
	ErrMetricsNamespaceRequired   = runtimeconfig.ErrMetricsNamespaceRequired
	ErrCommandsCronRequired       = runtimeconfig.ErrCommandsCronRequired
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	MapConfig            = runtimeconfig.MapConfig
	ClusterConfig        = runtimeconfig.ClusterConfig
	GeocoderConfig       = runtimeconfig.GeocoderConfig
	StorageConfig        = runtimeconfig.StorageConfig
	CacheConfig          = runtimeconfig.CacheConfig
	ShortcodeConfig      = runtimeconfig.ShortcodeConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	CommandsConfig       = runtimeconfig.CommandsConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
	MetricsConfig        = runtimeconfig.MetricsConfig
	Features             = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads configuration from path (or placemarks.yaml in the
// working directory) and PLACEMARKS_ environment variables.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
