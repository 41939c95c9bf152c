// Package di wires the module's services from configuration, defaulting to
// in-memory implementations so hosts can adopt persistence incrementally.
package di

import (
	"context"
	"errors"
	"fmt"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-localize/internal/bulk"
	"github.com/goliatone/go-localize/internal/executor"
	"github.com/goliatone/go-localize/internal/httpapi"
	"github.com/goliatone/go-localize/internal/logging"
	"github.com/goliatone/go-localize/internal/logging/console"
	"github.com/goliatone/go-localize/internal/logging/gologger"
	"github.com/goliatone/go-localize/internal/review"
	"github.com/goliatone/go-localize/internal/runtimeconfig"
	"github.com/goliatone/go-localize/internal/schema"
	"github.com/goliatone/go-localize/internal/settings"
	"github.com/goliatone/go-localize/internal/store"
	"github.com/goliatone/go-localize/internal/translator"
	"github.com/goliatone/go-localize/pkg/interfaces"
)

// ErrConfigInvalid wraps configuration validation failures raised during wiring.
var ErrConfigInvalid = errors.New("di: invalid configuration")

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	registry       *schema.Registry
	documents      interfaces.DocumentStore
	provider       interfaces.TranslationProvider
	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	hasCache      bool

	settingsRepo  settings.Repository
	settingsState *settings.State

	localeService *store.LocaleService

	reviewer   *review.Service
	runner     *executor.Service
	bulkRunner *bulk.Service
	api        *httpapi.API
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithDocumentStore overrides the default document store.
func WithDocumentStore(documents interfaces.DocumentStore) Option {
	return func(c *Container) {
		c.documents = documents
	}
}

// WithTranslator overrides the provider built from configuration.
func WithTranslator(provider interfaces.TranslationProvider) Option {
	return func(c *Container) {
		c.provider = provider
	}
}

// WithLoggerProvider overrides the logger provider built from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB binds a database; documents, locales, and settings persist to it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache enables the cached locale repository.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
		c.hasCache = service != nil && serializer != nil
	}
}

// WithSettingsRepository overrides the settings repository.
func WithSettingsRepository(repo settings.Repository) Option {
	return func(c *Container) {
		c.settingsRepo = repo
	}
}

// NewContainer validates the configuration and wires every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.loggerProvider == nil {
		provider, err := buildLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}

	c.registry = schema.NewRegistry()
	for _, collection := range cfg.Collections {
		c.registry.Register(collection.Slug, collection.Fields)
	}

	if c.documents == nil {
		if c.bunDB != nil {
			c.documents = store.NewBunDocumentStore(c.bunDB)
		} else {
			c.documents = store.NewMemoryDocumentStore()
		}
	}

	if c.bunDB != nil {
		if c.hasCache {
			c.localeService = store.NewLocaleService(store.NewLocaleRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer))
		} else {
			c.localeService = store.NewLocaleService(store.NewLocaleRepository(c.bunDB))
		}
	}

	if c.settingsRepo == nil {
		if c.bunDB != nil {
			c.settingsRepo = settings.NewBunRepository(c.bunDB)
		} else {
			c.settingsRepo = settings.NewMemoryRepository()
		}
	}
	c.settingsState = settings.NewState(settings.Settings{
		SyncEnabled: cfg.Enabled,
		Model:       cfg.Provider.Model,
		ChunkBudget: cfg.ChunkBudget,
	})

	if c.provider == nil {
		c.provider = buildProvider(cfg.Provider, c.loggerProvider, c.settingsState)
	}

	if err := c.buildServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) buildServices() error {
	cfg := c.Config
	targets := cfg.TargetLocales()

	reviewOpts := []review.Option{
		review.WithLogger(logging.ReviewLogger(c.loggerProvider)),
		review.WithHTMLBridge(cfg.Features.HTMLBridge),
	}
	if cfg.ChunkBudget > 0 {
		reviewOpts = append(reviewOpts, review.WithChunkBudget(cfg.ChunkBudget))
	}
	reviewer, err := review.New(c.documents, c.provider, reviewOpts...)
	if err != nil {
		return err
	}
	c.reviewer = reviewer

	executorOpts := []executor.Option{
		executor.WithLogger(logging.ExecutorLogger(c.loggerProvider)),
	}
	if len(cfg.StripFields) > 0 {
		executorOpts = append(executorOpts, executor.WithStripFields(cfg.StripFields))
	}
	runner, err := executor.New(c.documents, c.provider, executorOpts...)
	if err != nil {
		return err
	}
	c.runner = runner

	if cfg.Features.Bulk {
		state := c.settingsState
		bulkOpts := []bulk.Option{
			bulk.WithLogger(logging.BulkLogger(c.loggerProvider)),
			bulk.WithBudgetSource(func() int {
				return state.Snapshot().ChunkBudget
			}),
		}
		if cfg.ChunkBudget > 0 {
			bulkOpts = append(bulkOpts, bulk.WithChunkBudget(cfg.ChunkBudget))
		}
		bulkRunner, err := bulk.New(c.documents, c.reviewer, c.runner, c.registry, bulk.Config{
			SourceLocale: cfg.DefaultLocale,
			Locales:      targets,
		}, bulkOpts...)
		if err != nil {
			return err
		}
		c.bulkRunner = bulkRunner
	}

	apiOpts := []httpapi.Option{
		httpapi.WithBasePath(cfg.HTTP.BasePath),
		httpapi.WithRegistry(c.registry),
		httpapi.WithDocumentStore(c.documents),
		httpapi.WithExecutorService(c.runner),
		httpapi.WithSettingsState(c.settingsState),
		httpapi.WithLocales(cfg.DefaultLocale, targets),
		httpapi.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	}
	if cfg.Features.Review {
		apiOpts = append(apiOpts, httpapi.WithReviewService(c.reviewer))
	}
	if c.bulkRunner != nil {
		apiOpts = append(apiOpts, httpapi.WithBulkService(c.bulkRunner))
	}
	if cfg.ChunkBudget > 0 {
		apiOpts = append(apiOpts, httpapi.WithChunkBudget(cfg.ChunkBudget))
	}
	c.api = httpapi.New(apiOpts...)

	return nil
}

// Bootstrap performs startup work that needs a context: locale seeding,
// persisted settings, and the settings watch loop.
func (c *Container) Bootstrap(ctx context.Context) error {
	if c.localeService != nil {
		codes := append([]string{c.Config.DefaultLocale}, c.Config.TargetLocales()...)
		if err := c.localeService.EnsureSeeded(ctx, codes); err != nil {
			return err
		}
	}

	if c.settingsRepo != nil {
		stored, err := c.settingsRepo.Get(ctx)
		switch {
		case err == nil:
			c.settingsState.Apply(stored)
		case errors.Is(err, settings.ErrSettingsNotFound):
			if _, err := c.settingsRepo.Upsert(ctx, c.settingsState.Snapshot()); err != nil {
				return err
			}
		default:
			return err
		}

		events, err := c.settingsRepo.Subscribe(ctx)
		if err != nil {
			return err
		}
		go c.settingsState.Watch(events)
	}

	return nil
}

// Registry exposes the collection schema registry.
func (c *Container) Registry() *schema.Registry {
	return c.registry
}

// DocumentStore exposes the wired document store.
func (c *Container) DocumentStore() interfaces.DocumentStore {
	return c.documents
}

// TranslationProvider exposes the wired provider.
func (c *Container) TranslationProvider() interfaces.TranslationProvider {
	return c.provider
}

// LoggerProvider exposes the wired logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// ReviewService exposes the review engine.
func (c *Container) ReviewService() *review.Service {
	return c.reviewer
}

// ExecutorService exposes the streaming translation executor.
func (c *Container) ExecutorService() *executor.Service {
	return c.runner
}

// BulkService exposes the bulk orchestrator; nil when the feature is disabled.
func (c *Container) BulkService() *bulk.Service {
	return c.bulkRunner
}

// SettingsRepository exposes the settings repository.
func (c *Container) SettingsRepository() settings.Repository {
	return c.settingsRepo
}

// SettingsState exposes the live settings view.
func (c *Container) SettingsState() *settings.State {
	return c.settingsState
}

// API exposes the HTTP surface.
func (c *Container) API() *httpapi.API {
	return c.api
}

func buildLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch provider := cfg.Provider; provider {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		// Console is the configured default; unknown providers are rejected
		// by config validation before we get here.
		level := console.ParseLevel(cfg.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	}
}

func buildProvider(cfg runtimeconfig.ProviderConfig, loggers interfaces.LoggerProvider, state *settings.State) interfaces.TranslationProvider {
	switch cfg.Name {
	case "openai":
		return translator.NewOpenAIClient(translator.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
		},
			translator.WithLogger(logging.ProviderLogger(loggers)),
			// Persisted settings override the configured model at call time.
			translator.WithModelSource(func() string {
				return state.Snapshot().Model
			}),
		)
	default:
		return &translator.Static{}
	}
}
