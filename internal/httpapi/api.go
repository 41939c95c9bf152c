// Package httpapi exposes the localization operations over net/http. The
// review endpoint answers a single JSON document; translate and bulk stream
// newline-delimited JSON events so clients can render live progress.
package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-localize/internal/bulk"
	"github.com/goliatone/go-localize/internal/executor"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/internal/review"
	"github.com/goliatone/go-localize/internal/schema"
	"github.com/goliatone/go-localize/internal/settings"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

// API registers the localization endpoints onto a ServeMux.
type API struct {
	basePath     string
	registry     *schema.Registry
	store        interfaces.DocumentStore
	reviewer     *review.Service
	runner       *executor.Service
	bulkRunner   *bulk.Service
	state        *settings.State
	sourceLocale string
	locales      []string
	chunkBudget  int
	logger       interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*API)

// New constructs an API instance.
func New(opts ...Option) *API {
	api := &API{
		basePath: "/localize",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/localize").
func WithBasePath(path string) Option {
	return func(api *API) {
		if api == nil {
			return
		}
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithRegistry wires the collection schema registry.
func WithRegistry(registry *schema.Registry) Option {
	return func(api *API) {
		if api != nil {
			api.registry = registry
		}
	}
}

// WithDocumentStore wires the document store.
func WithDocumentStore(store interfaces.DocumentStore) Option {
	return func(api *API) {
		if api != nil {
			api.store = store
		}
	}
}

// WithReviewService wires the review service.
func WithReviewService(service *review.Service) Option {
	return func(api *API) {
		if api != nil {
			api.reviewer = service
		}
	}
}

// WithExecutorService wires the translation executor.
func WithExecutorService(service *executor.Service) Option {
	return func(api *API) {
		if api != nil {
			api.runner = service
		}
	}
}

// WithBulkService wires the bulk orchestrator.
func WithBulkService(service *bulk.Service) Option {
	return func(api *API) {
		if api != nil {
			api.bulkRunner = service
		}
	}
}

// WithSettingsState wires the runtime settings gate. When the state reports
// sync disabled, mutating endpoints answer 503.
func WithSettingsState(state *settings.State) Option {
	return func(api *API) {
		if api != nil {
			api.state = state
		}
	}
}

// WithLocales sets the source locale and the default target locales.
func WithLocales(source string, targets []string) Option {
	return func(api *API) {
		if api == nil {
			return
		}
		api.sourceLocale = strings.TrimSpace(source)
		api.locales = append([]string(nil), targets...)
	}
}

// WithChunkBudget overrides the fragment batching budget.
func WithChunkBudget(budget int) Option {
	return func(api *API) {
		if api != nil && budget > 0 {
			api.chunkBudget = budget
		}
	}
}

// WithLogger attaches a request-scoped logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if api != nil && logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the localization endpoints to the provided mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("httpapi: mux is required")
	}
	if api == nil {
		return fmt.Errorf("httpapi: api is nil")
	}

	base := joinPath(api.basePath, "")
	mux.HandleFunc("POST "+joinPath(base, "review"), api.handleReview)
	mux.HandleFunc("POST "+joinPath(base, "translate"), api.handleTranslate)
	mux.HandleFunc("POST "+joinPath(base, "bulk"), api.handleBulk)

	return nil
}

func (api *API) syncEnabled() bool {
	if api.state == nil {
		return true
	}
	return api.state.SyncEnabled()
}
