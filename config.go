package localize

import "github.com/goliatone/go-localize/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired  = runtimeconfig.ErrDefaultLocaleRequired
	ErrNoTargetLocales        = runtimeconfig.ErrNoTargetLocales
	ErrLocaleConflict         = runtimeconfig.ErrLocaleConflict
	ErrCollectionSlugRequired = runtimeconfig.ErrCollectionSlugRequired
	ErrDuplicateCollection    = runtimeconfig.ErrDuplicateCollection
	ErrChunkBudgetInvalid     = runtimeconfig.ErrChunkBudgetInvalid
	ErrProviderKeyRequired    = runtimeconfig.ErrProviderKeyRequired
	ErrProviderUnknown        = runtimeconfig.ErrProviderUnknown
	ErrTemperatureInvalid     = runtimeconfig.ErrTemperatureInvalid
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	CollectionConfig = runtimeconfig.CollectionConfig
	ProviderConfig   = runtimeconfig.ProviderConfig
	HTTPConfig       = runtimeconfig.HTTPConfig
	Features         = runtimeconfig.Features
	LoggingConfig    = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
