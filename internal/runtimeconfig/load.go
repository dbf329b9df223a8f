package runtimeconfig

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvPort        = "PORT"
)

// Load reads a YAML file over DefaultConfig, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("siteadmin config: read %s: %w", path, err)
		}
		if err := Decode(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("siteadmin config: %s: %w", path, err)
		}
	}
	ApplyEnv(&cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays YAML onto cfg. Unknown keys are rejected.
func Decode(raw []byte, cfg *Config) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	return decoder.Decode(cfg)
}

// ApplyEnv applies DATABASE_URL and PORT. A postgres:// URL switches the
// storage driver to postgres.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if cfg == nil || getenv == nil {
		return
	}
	if dsn := strings.TrimSpace(getenv(EnvDatabaseURL)); dsn != "" {
		cfg.Storage.DSN = dsn
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			cfg.Storage.Driver = "postgres"
		}
	}
	if port := strings.TrimSpace(getenv(EnvPort)); port != "" {
		cfg.HTTP.Address = ":" + strings.TrimPrefix(port, ":")
	}
}
