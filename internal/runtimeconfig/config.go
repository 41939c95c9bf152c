package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-localize/internal/fragments"
	"github.com/goliatone/go-localize/internal/schema"
)

var ErrDefaultLocaleRequired = errors.New("localize config: default locale is required")
var ErrNoTargetLocales = errors.New("localize config: at least one target locale is required")
var ErrLocaleConflict = errors.New("localize config: default locale cannot also be a target locale")
var ErrCollectionSlugRequired = errors.New("localize config: collection slug is required")
var ErrDuplicateCollection = errors.New("localize config: duplicate collection slug")
var ErrChunkBudgetInvalid = errors.New("localize config: chunk budget must be zero or positive")
var ErrProviderKeyRequired = errors.New("localize config: provider api key is required when provider is openai")
var ErrProviderUnknown = errors.New("localize config: provider is invalid")
var ErrTemperatureInvalid = errors.New("localize config: provider temperature must be between 0 and 2")
var ErrLoggingProviderUnknown = errors.New("localize config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("localize config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("localize config: logging format is invalid")

// Config aggregates locale topology, collection schemas, and provider
// bindings for the localization module. Fields use simple types so host
// applications can load them from YAML or build them in code.
type Config struct {
	Enabled       bool               `yaml:"enabled"`
	DefaultLocale string             `yaml:"default_locale"`
	Locales       []string           `yaml:"locales"`
	Collections   []CollectionConfig `yaml:"collections"`
	Provider      ProviderConfig     `yaml:"provider"`
	ChunkBudget   int                `yaml:"chunk_budget"`
	StripFields   []string           `yaml:"strip_fields"`
	HTTP          HTTPConfig         `yaml:"http"`
	Features      Features           `yaml:"features"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// CollectionConfig binds a collection slug to its field schema.
type CollectionConfig struct {
	Slug   string         `yaml:"slug"`
	Fields []schema.Field `yaml:"fields"`
}

// ProviderConfig selects and configures the translation provider.
type ProviderConfig struct {
	Name        string  `yaml:"name"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float32 `yaml:"temperature"`
}

// HTTPConfig captures the mount point for the HTTP surface.
type HTTPConfig struct {
	BasePath string `yaml:"base_path"`
}

// Features toggles module functionality.
type Features struct {
	Review     bool `yaml:"review"`
	Bulk       bool `yaml:"bulk"`
	HTMLBridge bool `yaml:"html_bridge"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string `yaml:"provider"`
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// DefaultConfig returns opinionated defaults for a single-locale install.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		DefaultLocale: "en",
		Locales:       []string{},
		Collections:   []CollectionConfig{},
		Provider: ProviderConfig{
			Name: "openai",
		},
		ChunkBudget: fragments.DefaultChunkBudget,
		HTTP: HTTPConfig{
			BasePath: "/localize",
		},
		Features: Features{
			Review:     true,
			Bulk:       true,
			HTMLBridge: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		return ErrDefaultLocaleRequired
	}
	if len(cfg.Locales) == 0 {
		return ErrNoTargetLocales
	}
	source := normalizeLocale(cfg.DefaultLocale)
	for _, locale := range cfg.Locales {
		if normalizeLocale(locale) == source {
			return fmt.Errorf("%w: %s", ErrLocaleConflict, locale)
		}
	}

	seen := make(map[string]struct{}, len(cfg.Collections))
	for _, collection := range cfg.Collections {
		slug := strings.TrimSpace(collection.Slug)
		if slug == "" {
			return ErrCollectionSlugRequired
		}
		if _, dup := seen[slug]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCollection, slug)
		}
		seen[slug] = struct{}{}
	}

	if cfg.ChunkBudget < 0 {
		return ErrChunkBudgetInvalid
	}

	switch provider := normalizeProvider(cfg.Provider.Name); provider {
	case "", "static":
	case "openai":
		if strings.TrimSpace(cfg.Provider.APIKey) == "" {
			return ErrProviderKeyRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrProviderUnknown, provider)
	}
	if cfg.Provider.Temperature < 0 || cfg.Provider.Temperature > 2 {
		return ErrTemperatureInvalid
	}

	if provider := normalizeProvider(cfg.Logging.Provider); provider != "" {
		if !isSupportedLoggingProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// TargetLocales returns the configured target locales trimmed and lowercased,
// with duplicates removed.
func (cfg Config) TargetLocales() []string {
	out := make([]string, 0, len(cfg.Locales))
	seen := make(map[string]struct{}, len(cfg.Locales))
	for _, locale := range cfg.Locales {
		normalized := normalizeLocale(locale)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.TrimSpace(locale))
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedLoggingProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
