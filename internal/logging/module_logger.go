package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

const (
	rootModule      = "placemarks"
	geocodingModule = "placemarks.geocoding"
	shortcodeModule = "placemarks.shortcode"
	settingsModule  = "placemarks.settings"
	markdownModule  = "placemarks.markdown"
	storeModule     = "placemarks.store"

	// ModuleCommands prefixes the command handler loggers.
	ModuleCommands = "placemarks.commands"
)

const (
	fieldPlacemarkID  = "placemark_id"
	fieldMarkdownPath = "markdown_path"
	fieldAction       = "action"
)

// ModuleLogger returns a logger scoped to module. Without a provider the
// result is a no-op logger. The module name is attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// RootLogger returns the top level placemarks logger.
func RootLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, rootModule)
}

// GeocodingLogger returns the logger namespace used by the geocoding client.
func GeocodingLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, geocodingModule)
}

// ShortcodeLogger returns the logger namespace used by shortcode rendering.
func ShortcodeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, shortcodeModule)
}

// SettingsLogger returns the logger namespace used by the settings service.
func SettingsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, settingsModule)
}

// MarkdownLogger returns the logger namespace used by markdown imports.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// StoreLogger returns the logger namespace used by placemark storage.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// WithPlacemarkContext enriches logger with the placemark id, source file and
// action. Empty values are skipped.
func WithPlacemarkContext(logger interfaces.Logger, id int64, path, action string) interfaces.Logger {
	fields := map[string]any{}
	if id > 0 {
		fields[fieldPlacemarkID] = id
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldMarkdownPath] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
