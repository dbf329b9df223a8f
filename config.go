package siteadmin

import "github.com/brightpath-ai/siteadmin/internal/runtimeconfig"

var (
	ErrStorageDriverUnknown     = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrNotifyRequiresPostgres   = runtimeconfig.ErrNotifyRequiresPostgres
	ErrCacheTTLInvalid          = runtimeconfig.ErrCacheTTLInvalid
	ErrDebounceWindowInvalid    = runtimeconfig.ErrDebounceWindowInvalid
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrHTTPAddressRequired      = runtimeconfig.ErrHTTPAddressRequired
	ErrOperationsMailboxInvalid = runtimeconfig.ErrOperationsMailboxInvalid
	ErrLinksBaseURLInvalid      = runtimeconfig.ErrLinksBaseURLInvalid
)

type (
	Config              = runtimeconfig.Config
	StorageConfig       = runtimeconfig.StorageConfig
	CacheConfig         = runtimeconfig.CacheConfig
	RecordsConfig       = runtimeconfig.RecordsConfig
	LoggingConfig       = runtimeconfig.LoggingConfig
	HTTPConfig          = runtimeconfig.HTTPConfig
	NotificationsConfig = runtimeconfig.NotificationsConfig
	LinksConfig         = runtimeconfig.LinksConfig
	SeedConfig          = runtimeconfig.SeedConfig
)

// DefaultConfig returns defaults suitable for a local sqlite install.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file over the defaults and applies DATABASE_URL and
// PORT from the environment.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
