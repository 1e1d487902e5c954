package placemarks

import (
	"context"
	"errors"

	"github.com/goliatone/go-placemarks/internal/di"
	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/internal/markdown"
	"github.com/goliatone/go-placemarks/internal/notices"
	placemarksvc "github.com/goliatone/go-placemarks/internal/placemarks"
	"github.com/goliatone/go-placemarks/internal/settings"
	"github.com/goliatone/go-placemarks/internal/shortcode"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

// ErrMarkdownDisabled is returned by ImportMarkdown when no importer is configured.
var ErrMarkdownDisabled = errors.New("placemarks: markdown import is not enabled")

// PlacemarkService exports the placemark service.
type PlacemarkService = *placemarksvc.Service

// SettingsService exports the site settings service.
type SettingsService = *settings.Service

type (
	Placemark    = placemarksvc.Placemark
	Category     = placemarksvc.Category
	SaveRequest  = placemarksvc.SaveRequest
	Settings     = settings.Settings
	Notices      = notices.List
	ImportResult = markdown.ImportResult
)

// Module is the top level façade over the placemarks runtime.
type Module struct {
	container *di.Container
}

// New constructs a module using cfg and optional DI overrides. The embedded
// migrations are always available to the container.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	options := append([]di.Option{di.WithMigrationsFS(GetMigrationsFS())}, opts...)
	container, err := di.NewContainer(cfg, options...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases storage opened by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

func (m *Module) Placemarks() PlacemarkService {
	return m.container.PlacemarkService()
}

func (m *Module) Settings() SettingsService {
	return m.container.SettingsService()
}

// Shortcodes returns the configured shortcode service.
func (m *Module) Shortcodes() interfaces.ShortcodeService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.ShortcodeService()
}

func (m *Module) Geocoder() interfaces.Geocoder {
	return m.container.Geocoder()
}

// RenderContent expands the map and list shortcodes found in content.
// Diagnostics raised while rendering are returned for operators and never
// appear in the output.
func (m *Module) RenderContent(ctx context.Context, content string) (string, Notices, error) {
	collector := notices.NewCollector()
	out, err := m.container.ShortcodeService().Process(ctx, content, interfaces.ShortcodeProcessOptions{
		Notices: collector,
	})
	if err != nil {
		return content, collector.List(), err
	}
	return out, collector.List(), nil
}

// SavePlacemark creates or updates a placemark and drops cached renders.
func (m *Module) SavePlacemark(ctx context.Context, req SaveRequest) (*Placemark, Notices, error) {
	record, list, err := m.Placemarks().Save(ctx, req)
	if err != nil {
		return nil, list, err
	}
	m.invalidate(ctx, "placemark.saved")
	return record, list, nil
}

// DeletePlacemark removes a placemark and drops cached renders.
func (m *Module) DeletePlacemark(ctx context.Context, id int64) error {
	if err := m.Placemarks().Delete(ctx, id); err != nil {
		return err
	}
	m.invalidate(ctx, "placemark.deleted")
	return nil
}

// SaveSettings stores site-wide map defaults and drops cached renders.
func (m *Module) SaveSettings(ctx context.Context, in Settings) (Settings, Notices, error) {
	saved, list, err := m.Settings().Save(ctx, in)
	if err != nil {
		return saved, list, err
	}
	m.invalidate(ctx, "settings.saved")
	return saved, list, nil
}

// ImportMarkdown imports every Markdown file under dir.
func (m *Module) ImportMarkdown(ctx context.Context, dir string) (*ImportResult, error) {
	importer := m.container.MarkdownImporter()
	if importer == nil {
		return nil, ErrMarkdownDisabled
	}
	result, err := importer.ImportDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	if result.Imported() > 0 {
		m.invalidate(ctx, "markdown.imported")
	}
	return result, nil
}

// Upgrade brings data written by older releases up to date.
func (m *Module) Upgrade(ctx context.Context) (Notices, error) {
	list, err := m.Placemarks().UpgradeLegacy(ctx)
	if err != nil {
		return list, err
	}
	m.invalidate(ctx, "upgrade.completed")
	return list, nil
}

func (m *Module) invalidate(ctx context.Context, reason string) {
	cache := m.container.RenderCache()
	if cache == nil {
		return
	}
	if err := cache.DeleteByPrefix(ctx, shortcode.CacheKeyPrefix); err != nil {
		logging.WithFields(m.container.Logger().WithContext(ctx), map[string]any{
			"reason": reason,
		}).Warn("render_cache.clear_failed", "error", err)
	}
}
