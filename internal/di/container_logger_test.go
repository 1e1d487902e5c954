package di_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-placemarks/internal/di"
	ditesting "github.com/goliatone/go-placemarks/internal/di/testing"
	"github.com/goliatone/go-placemarks/internal/logging/gologger"
	"github.com/goliatone/go-placemarks/internal/placemarks"
	"github.com/goliatone/go-placemarks/internal/runtimeconfig"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

func TestContainerLogsThroughInjectedProvider(t *testing.T) {
	rec := newRecordingProvider()

	container, err := di.NewContainer(runtimeconfig.DefaultConfig(),
		di.WithLoggerProvider(rec),
		di.WithGeocoder(ditesting.NewGeocoder(nil)),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	entry := rec.find("container.configured")
	if entry == nil {
		t.Fatalf("expected container.configured log entry, got %#v", rec.entries)
	}
	if got := entry.fields["storage"]; got != "memory" {
		t.Fatalf("expected storage field to be memory, got %v", got)
	}
	if got := entry.fields["module"]; got != "placemarks" {
		t.Fatalf("expected module field to be placemarks, got %v", got)
	}

	if _, _, err := container.PlacemarkService().Save(context.Background(), placemarks.SaveRequest{
		Title:   "Kerry Park",
		Address: "47.6295,-122.3599",
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	saved := rec.find("placemarks.saved")
	if saved == nil {
		t.Fatalf("expected placemarks.saved log entry, got %#v", rec.entries)
	}
	if got := saved.fields["module"]; got != "placemarks.store" {
		t.Fatalf("expected store module, got %v", got)
	}
	if got := saved.fields["located"]; got != true {
		t.Fatalf("expected located=true, got %v", got)
	}
}

func TestContainerConsoleProviderWhenLoggerEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Level = "debug"

	container, err := di.NewContainer(cfg, di.WithGeocoder(ditesting.NewGeocoder(nil)))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if container.LoggerProvider() == nil {
		t.Fatal("expected console provider when the logger feature is enabled")
	}
}

func TestContainerUsesGoLoggerProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := di.NewContainer(cfg, di.WithGeocoder(ditesting.NewGeocoder(nil)))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	provider, ok := container.LoggerProvider().(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}
	if provider.GetLogger("placemarks.test") == nil {
		t.Fatal("expected a named go-logger child")
	}
}

// recordingProvider hands out loggers without native field support, so module
// and operation fields arrive as trailing key/value arguments.
type recordingProvider struct {
	entries []recordedEntry
}

type recordedEntry struct {
	level  string
	msg    string
	fields map[string]any
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{}
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	return recordingLogger{provider: p, name: name}
}

func (p *recordingProvider) find(msg string) *recordedEntry {
	for i := range p.entries {
		if p.entries[i].msg == msg {
			return &p.entries[i]
		}
	}
	return nil
}

type recordingLogger struct {
	provider *recordingProvider
	name     string
}

func (l recordingLogger) Trace(msg string, args ...any) { l.log("TRACE", msg, args) }
func (l recordingLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args) }
func (l recordingLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args) }
func (l recordingLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args) }
func (l recordingLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args) }
func (l recordingLogger) Fatal(msg string, args ...any) { l.log("FATAL", msg, args) }

func (l recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l recordingLogger) log(level, msg string, args []any) {
	fields := map[string]any{"logger": l.name}
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok && key != "" {
			fields[key] = args[i+1]
		}
	}
	l.provider.entries = append(l.provider.entries, recordedEntry{level: level, msg: msg, fields: fields})
}
