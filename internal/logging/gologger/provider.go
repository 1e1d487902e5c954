// Package gologger plugs github.com/goliatone/go-logger into the module's
// logger contract.
package gologger

import (
	"context"
	"fmt"
	"maps"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

type Config struct {
	Level     string
	Format    string
	AddSource bool
	// Focus limits output to the named loggers.
	Focus []string
}

var formats = map[string]glog.Option{
	"":        glog.WithLoggerTypeJSON(),
	"json":    glog.WithLoggerTypeJSON(),
	"console": glog.WithLoggerTypeConsole(),
	"pretty":  glog.WithLoggerTypePretty(),
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// Provider hands out named children of a single go-logger root.
type Provider struct {
	root *glog.BaseLogger
}

var _ interfaces.LoggerProvider = (*Provider)(nil)

func NewProvider(cfg Config) (*Provider, error) {
	format, ok := formats[strings.ToLower(strings.TrimSpace(cfg.Format))]
	if !ok {
		return nil, fmt.Errorf("placemarks logging: unsupported go-logger format %q", cfg.Format)
	}
	opts := []glog.Option{format}
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		opts = append(opts, glog.WithLevel(level))
	}
	if cfg.AddSource {
		opts = append(opts, glog.WithAddSource(true))
	}

	root := glog.NewLogger(opts...)
	var focus []string
	for _, name := range cfg.Focus {
		if name = strings.TrimSpace(name); name != "" {
			focus = append(focus, name)
		}
	}
	if len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

// GetLogger returns the child called name, or the root for a blank name.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name != "" {
		return wrap(p.root.GetLogger(name))
	}
	return wrap(p.root)
}

// wrap only advertises WithFields when the go-logger value supports it, so
// logging.WithFields can fall back to key/value arguments for the rest.
func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	if fields, ok := inner.(glog.FieldsLogger); ok {
		return fieldsLogger{logger{inner}, fields}
	}
	return logger{inner}
}

type logger struct {
	inner glog.Logger
}

func (l logger) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l logger) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

func (l logger) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return wrap(l.inner)
	}
	return wrap(l.inner.WithContext(ctx))
}

type fieldsLogger struct {
	logger
	fields glog.FieldsLogger
}

var _ interfaces.FieldsLogger = fieldsLogger{}

func (l fieldsLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	return wrap(l.fields.WithFields(maps.Clone(fields)))
}
