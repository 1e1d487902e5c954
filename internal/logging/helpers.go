package logging

import (
	"context"
	"maps"
	"slices"

	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

// WithFields returns logger with fields attached. Nil values and empty keys
// are dropped. Loggers without native field support get a wrapper that
// appends the fields as trailing key/value arguments, sorted by key.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil {
		return nil
	}
	clean := make(map[string]any, len(fields))
	for key, value := range fields {
		if key == "" || value == nil {
			continue
		}
		clean[key] = value
	}
	if len(clean) == 0 {
		return logger
	}

	if native, ok := logger.(interfaces.FieldsLogger); ok {
		return native.WithFields(clean)
	}
	if wrapped, ok := logger.(argsLogger); ok {
		merged := maps.Clone(wrapped.fields)
		maps.Copy(merged, clean)
		return argsLogger{next: wrapped.next, fields: merged}
	}
	return argsLogger{next: logger, fields: clean}
}

type argsLogger struct {
	next   interfaces.Logger
	fields map[string]any
}

func (l argsLogger) args(args []any) []any {
	keys := slices.Sorted(maps.Keys(l.fields))
	out := make([]any, 0, len(args)+len(keys)*2)
	out = append(out, args...)
	for _, key := range keys {
		out = append(out, key, l.fields[key])
	}
	return out
}

func (l argsLogger) Trace(msg string, args ...any) { l.next.Trace(msg, l.args(args)...) }
func (l argsLogger) Debug(msg string, args ...any) { l.next.Debug(msg, l.args(args)...) }
func (l argsLogger) Info(msg string, args ...any)  { l.next.Info(msg, l.args(args)...) }
func (l argsLogger) Warn(msg string, args ...any)  { l.next.Warn(msg, l.args(args)...) }
func (l argsLogger) Error(msg string, args ...any) { l.next.Error(msg, l.args(args)...) }
func (l argsLogger) Fatal(msg string, args ...any) { l.next.Fatal(msg, l.args(args)...) }

func (l argsLogger) WithContext(ctx context.Context) interfaces.Logger {
	return argsLogger{next: l.next.WithContext(ctx), fields: l.fields}
}
