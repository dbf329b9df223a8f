package runtimeconfig

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
)

var (
	ErrStorageDriverUnknown     = errors.New("siteadmin config: storage driver is invalid")
	ErrStorageDSNRequired       = errors.New("siteadmin config: storage dsn is required")
	ErrNotifyRequiresPostgres   = errors.New("siteadmin config: change notifications require the postgres driver")
	ErrCacheTTLInvalid          = errors.New("siteadmin config: cache ttl must be positive when cache is enabled")
	ErrDebounceWindowInvalid    = errors.New("siteadmin config: records debounce window must be zero or positive")
	ErrLoggingProviderRequired  = errors.New("siteadmin config: logging provider is required")
	ErrLoggingProviderUnknown   = errors.New("siteadmin config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("siteadmin config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("siteadmin config: logging format is invalid")
	ErrHTTPAddressRequired      = errors.New("siteadmin config: http address is required")
	ErrOperationsMailboxInvalid = errors.New("siteadmin config: operations mailbox is not a valid address")
	ErrLinksBaseURLInvalid      = errors.New("siteadmin config: links base url must be absolute")
)

// Config aggregates the settings for the record admin.
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Cache         CacheConfig         `yaml:"cache"`
	Records       RecordsConfig       `yaml:"records"`
	Logging       LoggingConfig       `yaml:"logging"`
	HTTP          HTTPConfig          `yaml:"http"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Links         LinksConfig         `yaml:"links"`
	Seed          SeedConfig          `yaml:"seed"`
}

// StorageConfig selects the database backing the record tables.
type StorageConfig struct {
	// Driver is sqlite or postgres.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// Notify enables pg_notify change propagation between processes.
	Notify        bool   `yaml:"notify"`
	NotifyChannel string `yaml:"notify_channel"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"ttl"`
}

// RecordsConfig tunes the list controllers.
type RecordsConfig struct {
	DebounceWindow time.Duration `yaml:"debounce_window"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// HTTPConfig configures the admin API listener.
type HTTPConfig struct {
	Address     string `yaml:"address"`
	BasePath    string `yaml:"base_path"`
	ActorHeader string `yaml:"actor_header"`
}

// NotificationsConfig routes creation events.
type NotificationsConfig struct {
	OperationsMailbox string `yaml:"operations_mailbox"`
	Channel           string `yaml:"channel"`
}

// LinksConfig configures public URL building.
type LinksConfig struct {
	BaseURL string            `yaml:"base_url"`
	Paths   map[string]string `yaml:"paths"`
}

// SeedConfig points at the Markdown seed directory.
type SeedConfig struct {
	Directory string `yaml:"directory"`
}

// DefaultConfig returns defaults suitable for a local sqlite install.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver:        "sqlite",
			DSN:           "file:siteadmin.db?cache=shared&_fk=1",
			NotifyChannel: "siteadmin_records",
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Records: RecordsConfig{
			DebounceWindow: 300 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		HTTP: HTTPConfig{
			Address:     ":8080",
			BasePath:    "/admin/api",
			ActorHeader: "X-Actor-ID",
		},
		Notifications: NotificationsConfig{
			OperationsMailbox: "ops@brightpath.example",
			Channel:           "email",
		},
		Links: LinksConfig{
			BaseURL: "https://brightpath.example",
		},
		Seed: SeedConfig{
			Directory: "content",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	switch driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %q", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if cfg.Storage.Notify && driver != "postgres" {
		return ErrNotifyRequiresPostgres
	}
	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Records.DebounceWindow < 0 {
		return ErrDebounceWindowInvalid
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
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

	if strings.TrimSpace(cfg.HTTP.Address) == "" {
		return ErrHTTPAddressRequired
	}
	if mailbox := strings.TrimSpace(cfg.Notifications.OperationsMailbox); mailbox != "" {
		if _, err := mail.ParseAddress(mailbox); err != nil {
			return fmt.Errorf("%w: %s", ErrOperationsMailboxInvalid, mailbox)
		}
	}
	if base := strings.TrimSpace(cfg.Links.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil || !parsed.IsAbs() {
			return fmt.Errorf("%w: %s", ErrLinksBaseURLInvalid, base)
		}
	}
	return nil
}

// Postgres reports whether the postgres driver is selected.
func (cfg Config) Postgres() bool {
	return strings.EqualFold(strings.TrimSpace(cfg.Storage.Driver), "postgres")
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
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
