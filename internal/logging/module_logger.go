package logging

import (
	"context"

	"github.com/goliatone/go-localize/pkg/interfaces"
)

const (
	rootModule     = "localize"
	reviewModule   = "localize.review"
	executorModule = "localize.translate"
	bulkModule     = "localize.bulk"
	providerModule = "localize.provider"
	httpModule     = "localize.http"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as structured context so entries can be filtered downstream.
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

// ReviewLogger returns the logger namespace reserved for the review engine.
func ReviewLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, reviewModule)
}

// ExecutorLogger returns the logger namespace reserved for streaming translation runs.
func ExecutorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, executorModule)
}

// BulkLogger returns the logger namespace reserved for bulk orchestration.
func BulkLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, bulkModule)
}

// ProviderLogger returns the logger namespace reserved for translation provider clients.
func ProviderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, providerModule)
}

// HTTPLogger returns the logger namespace reserved for the HTTP adapters.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// NoOp returns a logger that discards every entry.
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
