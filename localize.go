// Package localize synchronizes translated copies of structured documents.
// It extracts the translatable fragments of a source document, reviews them
// against the translations already stored for each locale, machine-translates
// what is missing, and writes the reassembled documents back, streaming
// progress events along the way.
package localize

import (
	"context"
	"net/http"

	"github.com/goliatone/go-localize/internal/bulk"
	"github.com/goliatone/go-localize/internal/di"
	"github.com/goliatone/go-localize/internal/executor"
	"github.com/goliatone/go-localize/internal/fragments"
	"github.com/goliatone/go-localize/internal/httpapi"
	"github.com/goliatone/go-localize/internal/review"
	"github.com/goliatone/go-localize/internal/schema"
	"github.com/goliatone/go-localize/internal/settings"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

// ReviewService exports the review engine contract.
type ReviewService = review.Service

// ExecutorService exports the streaming translation executor contract.
type ExecutorService = executor.Service

// BulkService exports the bulk orchestrator contract.
type BulkService = bulk.Service

// Fragment exports the extracted fragment type.
type Fragment = fragments.Fragment

// Field exports the schema field node used to describe collections.
type Field = schema.Field

// Block exports the tagged-union block variant descriptor.
type Block = schema.Block

// Document exports the locale-scoped document record.
type Document = interfaces.Document

// DocumentStore exports the persistence contract for documents.
type DocumentStore = interfaces.DocumentStore

// TranslationProvider exports the combined translate/classify contract.
type TranslationProvider = interfaces.TranslationProvider

// Settings exports the runtime settings record.
type Settings = settings.Settings

// SettingsRepository exports the settings persistence contract.
type SettingsRepository = settings.Repository

// Exported schema field type identifiers.
const (
	FieldText     = schema.TypeText
	FieldTextarea = schema.TypeTextarea
	FieldRichText = schema.TypeRichText
	FieldGroup    = schema.TypeGroup
	FieldTab      = schema.TypeTab
	FieldArray    = schema.TypeArray
	FieldBlocks   = schema.TypeBlocks
)

// Re-exported DI options for host integrations.
var (
	WithDocumentStore      = di.WithDocumentStore
	WithTranslator         = di.WithTranslator
	WithLoggerProvider     = di.WithLoggerProvider
	WithBunDB              = di.WithBunDB
	WithCache              = di.WithCache
	WithSettingsRepository = di.WithSettingsRepository
)

// Module is the top level localization runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a localization module from configuration plus optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Bootstrap seeds locales and loads persisted settings. Call once at startup.
func (m *Module) Bootstrap(ctx context.Context) error {
	return m.container.Bootstrap(ctx)
}

// Review returns the configured review engine.
func (m *Module) Review() *ReviewService {
	return m.container.ReviewService()
}

// Executor returns the configured translation executor.
func (m *Module) Executor() *ExecutorService {
	return m.container.ExecutorService()
}

// Bulk returns the bulk orchestrator; nil when the feature is disabled.
func (m *Module) Bulk() *BulkService {
	return m.container.BulkService()
}

// Documents returns the wired document store.
func (m *Module) Documents() DocumentStore {
	return m.container.DocumentStore()
}

// Registry returns the collection schema registry.
func (m *Module) Registry() *schema.Registry {
	return m.container.Registry()
}

// SettingsState returns the live runtime settings view.
func (m *Module) SettingsState() *settings.State {
	return m.container.SettingsState()
}

// API returns the HTTP surface.
func (m *Module) API() *httpapi.API {
	return m.container.API()
}

// RegisterRoutes attaches the module's HTTP endpoints to the provided mux.
func (m *Module) RegisterRoutes(mux *http.ServeMux) error {
	return m.container.API().Register(mux)
}
