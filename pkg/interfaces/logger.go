package interfaces

import "context"

// Logger is the leveled logging contract used across the plugin. It matches
// the surface exposed by github.com/goliatone/go-logger so hosts already
// using that package can plug it in without adapters.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out named loggers. Implementations may return one
// shared instance or scope children per module name.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is an optional extension for attaching persistent structured
// fields. Providers supporting it should return a new logger that includes
// the supplied fields on every entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
