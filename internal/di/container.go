package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	cacheadapter "github.com/goliatone/go-placemarks/internal/adapters/cache"
	"github.com/goliatone/go-placemarks/internal/geocoding"
	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/internal/logging/console"
	"github.com/goliatone/go-placemarks/internal/logging/gologger"
	"github.com/goliatone/go-placemarks/internal/mapoptions"
	"github.com/goliatone/go-placemarks/internal/markdown"
	"github.com/goliatone/go-placemarks/internal/migrations"
	"github.com/goliatone/go-placemarks/internal/placemarks"
	"github.com/goliatone/go-placemarks/internal/runtimeconfig"
	"github.com/goliatone/go-placemarks/internal/settings"
	"github.com/goliatone/go-placemarks/internal/shortcode"
	"github.com/goliatone/go-placemarks/internal/telemetry"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var ErrMigrationsFSRequired = errors.New("placemarks di: auto migrate requires a migrations filesystem")

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	metrics    *telemetry.Metrics

	httpClient  *http.Client
	geocoder    interfaces.Geocoder
	renderCache interfaces.CacheProvider

	bunDB         *bun.DB
	ownsDB        bool
	migrationsFS  fs.FS
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	placemarkRepo placemarks.PlacemarkRepository
	categoryRepo  placemarks.CategoryRepository
	settingsStore settings.Store

	markdownFS fs.FS

	detailsRenderer   *markdown.Renderer
	settingsSvc       *settings.Service
	placemarkSvc      *placemarks.Service
	shortcodeRegistry *shortcode.Registry
	shortcodeSvc      *shortcode.Service
	importer          *markdown.Importer
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB stores placemarks, categories and settings in db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithMigrationsFS supplies the SQL migrations applied when
// Storage.AutoMigrate is set.
func WithMigrationsFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.migrationsFS = fsys
	}
}

// WithCache overrides the repository cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider selected from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithGeocoder replaces the HTTP geocoding client.
func WithGeocoder(geocoder interfaces.Geocoder) Option {
	return func(c *Container) {
		c.geocoder = geocoder
	}
}

// WithHTTPClient sets the client used by the geocoder.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		c.httpClient = client
	}
}

// WithRegisterer registers the collectors with reg instead of a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Container) {
		c.registerer = reg
	}
}

// WithRenderCache overrides the shortcode render cache.
func WithRenderCache(cache interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.renderCache = cache
	}
}

// WithMarkdownFS sets the filesystem markdown imports read from. It enables
// the importer even when Markdown.Enabled is off.
func WithMarkdownFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.markdownFS = fsys
	}
}

// NewContainer validates cfg and builds the services.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.logger = logging.RootLogger(c.loggerProvider)

	c.configureMetrics()
	if err := c.configureStorage(context.Background()); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureGeocoder()
	c.configureServices()
	if err := c.configureShortcodes(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureMarkdown()

	logging.WithFields(c.logger, map[string]any{
		"storage":  c.storageName(),
		"metrics":  c.metrics != nil,
		"markdown": c.importer != nil,
	}).Debug("container.configured")
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level, _ := console.ParseLevel(logCfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
	}
	return nil
}

func (c *Container) configureMetrics() {
	if !c.Config.Features.Metrics {
		return
	}
	if c.registerer == nil {
		registry := prometheus.NewRegistry()
		c.registerer = registry
		c.gatherer = registry
	} else if gatherer, ok := c.registerer.(prometheus.Gatherer); ok {
		c.gatherer = gatherer
	}
	c.metrics = telemetry.New(c.registerer, c.Config.Metrics.Namespace)
}

func (c *Container) configureStorage(ctx context.Context) error {
	storageCfg := c.Config.Storage
	if c.bunDB == nil && strings.EqualFold(storageCfg.Provider, "bun") {
		db, err := openBunDB(storageCfg.Driver, storageCfg.DSN)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if c.bunDB == nil || !storageCfg.AutoMigrate {
		return nil
	}
	if c.migrationsFS == nil {
		c.Close()
		return ErrMigrationsFSRequired
	}
	runner := migrations.NewRunner(c.bunDB, c.migrationsFS,
		migrations.WithLogger(logging.StoreLogger(c.loggerProvider)))
	if _, err := runner.Up(ctx); err != nil {
		c.Close()
		return err
	}
	return nil
}

func openBunDB(driver, dsn string) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "pg":
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("placemarks di: open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("placemarks di: open sqlite: %w", err)
		}
		// sqlite serialises writers; a single connection keeps in-memory
		// databases shared across queries.
		sqlDB.SetMaxOpenConns(1)
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	}
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if ttl := c.Config.Cache.DefaultTTL; ttl > 0 {
			cfg.TTL = ttl
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB != nil {
		c.placemarkRepo = placemarks.NewBunPlacemarkRepository(c.bunDB)
		if c.cacheService != nil {
			c.categoryRepo = placemarks.NewBunCategoryRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		} else {
			c.categoryRepo = placemarks.NewBunCategoryRepository(c.bunDB)
		}
		c.settingsStore = settings.NewBunStore(c.bunDB)
		return
	}
	c.placemarkRepo = placemarks.NewMemoryPlacemarkRepository()
	c.categoryRepo = placemarks.NewMemoryCategoryRepository()
	c.settingsStore = settings.NewMemoryStore()
}

func (c *Container) configureGeocoder() {
	if c.geocoder != nil {
		return
	}

	geoCfg := c.Config.Geocoder
	clientOpts := []geocoding.Option{
		geocoding.WithLogger(logging.GeocodingLogger(c.loggerProvider)),
	}
	if c.httpClient != nil {
		clientOpts = append(clientOpts, geocoding.WithHTTPClient(c.httpClient))
	}
	if c.metrics != nil {
		clientOpts = append(clientOpts, geocoding.WithMetrics(c.metrics))
	}
	c.geocoder = geocoding.NewClient(geocoding.Config{
		Endpoint:  geoCfg.Endpoint,
		APIKey:    geoCfg.APIKey,
		Language:  geoCfg.Language,
		Region:    geoCfg.Region,
		UserAgent: geoCfg.UserAgent,
		Timeout:   geoCfg.Timeout,
	}, clientOpts...)
}

func (c *Container) configureServices() {
	mapCfg := c.Config.Map

	c.settingsSvc = settings.NewService(c.settingsStore,
		settings.WithDefaults(settingsFromConfig(mapCfg)),
		settings.WithGeocoder(c.geocoder),
		settings.WithLogger(logging.SettingsLogger(c.loggerProvider)),
		settings.WithAssetBase(mapCfg.AssetBase),
		settings.WithPluginName(mapCfg.PluginName),
	)

	placemarkOpts := []placemarks.ServiceOption{
		placemarks.WithGeocoder(c.geocoder),
		placemarks.WithVersionStore(c.settingsSvc),
		placemarks.WithLogger(logging.StoreLogger(c.loggerProvider)),
		placemarks.WithAssetBase(mapCfg.AssetBase),
		placemarks.WithPluginName(mapCfg.PluginName),
	}
	if c.Config.Features.Markdown {
		parserCfg := c.Config.Markdown.Parser
		c.detailsRenderer = markdown.NewRenderer(markdown.RendererOptions{
			Extensions: parserCfg.Extensions,
			HardWraps:  parserCfg.HardWraps,
			SafeMode:   parserCfg.SafeMode,
		})
		placemarkOpts = append(placemarkOpts, placemarks.WithDetailsRenderer(c.detailsRenderer))
	}
	c.placemarkSvc = placemarks.NewService(c.placemarkRepo, c.categoryRepo, placemarkOpts...)
}

func (c *Container) configureShortcodes() error {
	shortcodeLogger := logging.ShortcodeLogger(c.loggerProvider)
	shortcodeCfg := c.Config.Shortcodes

	if c.renderCache == nil && c.Config.Cache.Enabled {
		ttl := shortcodeCfg.ListCacheTTL
		if ttl <= 0 {
			ttl = c.Config.Cache.DefaultTTL
		}
		renderCache, err := cacheadapter.NewWithTTL(ttl)
		if err != nil {
			return fmt.Errorf("placemarks di: render cache: %w", err)
		}
		c.renderCache = renderCache
	}

	registry := shortcode.NewRegistry(shortcode.NewValidator())
	arguments := shortcode.NewArgumentProcessor(c.placemarkSvc, c.placemarkSvc, c.geocoder,
		shortcode.WithPluginName(c.Config.Map.PluginName),
		shortcode.WithArgumentLogger(shortcodeLogger),
	)
	deps := shortcode.Dependencies{
		Arguments:       arguments,
		Builder:         mapoptions.NewBuilder(c.placemarkSvc),
		Defaults:        c.settingsSvc,
		Markers:         c.placemarkSvc,
		List:            c.placemarkSvc,
		ValidatePayload: c.Config.Features.ValidatePayload,
		ListCacheTTL:    shortcodeCfg.ListCacheTTL,
		Logger:          shortcodeLogger,
	}
	if err := shortcode.RegisterBuiltIns(registry, deps, shortcodeCfg.BuiltIns); err != nil {
		return err
	}

	rendererOpts := []shortcode.RendererOption{}
	serviceOpts := []shortcode.ServiceOption{
		shortcode.WithWordPressSyntax(shortcodeCfg.WordPressSyntax),
		shortcode.WithLogger(shortcodeLogger),
		shortcode.WithNoticePrefix(c.Config.Map.PluginName),
	}
	if c.renderCache != nil {
		rendererOpts = append(rendererOpts, shortcode.WithRendererCache(c.renderCache))
		serviceOpts = append(serviceOpts, shortcode.WithDefaultCache(c.renderCache))
	}
	if c.metrics != nil {
		rendererOpts = append(rendererOpts, shortcode.WithRendererMetrics(c.metrics))
		serviceOpts = append(serviceOpts, shortcode.WithMetrics(c.metrics))
	}

	renderer := shortcode.NewRenderer(registry, shortcode.NewValidator(), rendererOpts...)
	c.shortcodeRegistry = registry
	c.shortcodeSvc = shortcode.NewService(registry, renderer, serviceOpts...)
	return nil
}

func (c *Container) configureMarkdown() {
	mdCfg := c.Config.Markdown
	basePath := ""
	if c.markdownFS == nil {
		if !mdCfg.Enabled {
			return
		}
		basePath = mdCfg.ContentDir
		if abs, err := filepath.Abs(mdCfg.ContentDir); err == nil {
			basePath = abs
		}
		c.markdownFS = os.DirFS(basePath)
	}

	loader := markdown.NewLoader(c.markdownFS, markdown.LoaderConfig{
		BasePath:  basePath,
		Pattern:   mdCfg.Pattern,
		Recursive: mdCfg.Recursive,
	})
	c.importer = markdown.NewImporter(markdown.ImporterConfig{
		Loader:      loader,
		Saver:       c.placemarkSvc,
		Logger:      logging.MarkdownLogger(c.loggerProvider),
		Concurrency: mdCfg.Concurrency,
	})
}

func settingsFromConfig(m runtimeconfig.MapConfig) settings.Settings {
	mapType, _ := mapoptions.ParseMapType(m.Type)
	return settings.Settings{
		Width:              m.Width,
		Height:             m.Height,
		Address:            m.Address,
		Latitude:           m.Latitude,
		Longitude:          m.Longitude,
		Zoom:               m.Zoom,
		MapType:            mapType,
		TypeControl:        m.TypeControl,
		NavigationControl:  m.NavigationControl,
		StreetViewControl:  m.StreetViewControl,
		InfoWindowMaxWidth: m.InfoWindowMaxWidth,
		ViewOnMapScroll:    m.ViewOnMapScroll,
		ClusterEnabled:     m.Clustering.Enabled,
		ClusterMaxZoom:     m.Clustering.MaxZoom,
		ClusterGridSize:    m.Clustering.GridSize,
		ClusterStyle:       m.Clustering.Style,
	}
}

func (c *Container) storageName() string {
	if c.bunDB != nil {
		return "bun"
	}
	return "memory"
}

// Close releases the database opened from configuration. An injected
// database is left open.
func (c *Container) Close() error {
	if c == nil || c.bunDB == nil || !c.ownsDB {
		return nil
	}
	c.ownsDB = false
	return c.bunDB.Close()
}

// LoggerProvider exposes the configured logger provider, nil when logging is off.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Logger returns the root module logger.
func (c *Container) Logger() interfaces.Logger {
	return c.logger
}

// Metrics returns the Prometheus collectors, nil when metrics are disabled.
func (c *Container) Metrics() *telemetry.Metrics {
	return c.metrics
}

// Gatherer exposes the registry the collectors were registered with when it
// can be gathered.
func (c *Container) Gatherer() prometheus.Gatherer {
	return c.gatherer
}

// BunDB returns the database backing the stores, nil for memory storage.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

func (c *Container) Geocoder() interfaces.Geocoder {
	return c.geocoder
}

// RenderCache returns the shortcode render cache, nil when caching is off.
func (c *Container) RenderCache() interfaces.CacheProvider {
	return c.renderCache
}

func (c *Container) PlacemarkRepository() placemarks.PlacemarkRepository {
	return c.placemarkRepo
}

func (c *Container) CategoryRepository() placemarks.CategoryRepository {
	return c.categoryRepo
}

// PlacemarkService returns the placemark save and lookup service.
func (c *Container) PlacemarkService() *placemarks.Service {
	return c.placemarkSvc
}

// SettingsService returns the site map settings service.
func (c *Container) SettingsService() *settings.Service {
	return c.settingsSvc
}

// ShortcodeService returns the service expanding bgmp shortcodes in content.
func (c *Container) ShortcodeService() *shortcode.Service {
	return c.shortcodeSvc
}

func (c *Container) ShortcodeRegistry() *shortcode.Registry {
	return c.shortcodeRegistry
}

// DetailsRenderer returns the Markdown details renderer, nil unless the
// markdown feature is enabled.
func (c *Container) DetailsRenderer() *markdown.Renderer {
	return c.detailsRenderer
}

// MarkdownImporter returns the importer, nil when markdown imports are off.
func (c *Container) MarkdownImporter() *markdown.Importer {
	return c.importer
}

// MarkdownEnabled reports whether markdown imports are available.
func (c *Container) MarkdownEnabled() bool {
	return c.importer != nil
}

// CacheTTL is the repository and render cache lifetime.
func (c *Container) CacheTTL() time.Duration {
	if ttl := c.Config.Cache.DefaultTTL; ttl > 0 {
		return ttl
	}
	return time.Minute
}
