package di

import (
	"strings"

	"github.com/brightpath-ai/siteadmin/internal/logging/console"
	"github.com/brightpath-ai/siteadmin/internal/logging/gologger"
	"github.com/brightpath-ai/siteadmin/internal/runtimeconfig"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
)

// NewLoggerProvider builds the provider selected by the logging configuration.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		level, err := console.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		return console.NewProvider(console.Options{MinLevel: level}), nil
	}
}
