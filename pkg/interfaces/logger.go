package interfaces

import "context"

// Logger takes a message plus alternating key/value arguments. Its method
// set is a subset of go-logger's glog.Logger.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider returns the logger for a dotted module name such as
// placemarks.geocoding.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is optional. Loggers without it still receive fields, as
// trailing arguments, through logging.WithFields.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
