package logging

import (
	"context"
	"strings"

	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
)

const (
	rootModule     = "siteadmin"
	recordsModule  = "siteadmin.records"
	storeModule    = "siteadmin.store"
	httpModule     = "siteadmin.http"
	commandsModule = "siteadmin.commands"
	seedModule     = "siteadmin.seed"
)

const (
	fieldCollection = "collection"
	fieldRecordID   = "record_id"
	fieldAction     = "action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
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
	return WithFields(logger, map[string]any{"module": module})
}

// RecordsLogger is used by the record managers.
func RecordsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, recordsModule)
}

// StoreLogger is used by storage and change-notification plumbing.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// HTTPLogger is used by the admin API.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// CommandsLogger is used by command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// SeedLogger is used by the Markdown seed importer.
func SeedLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, seedModule)
}

// WithRecordContext enriches logger with collection, record id and action.
// Empty values are ignored.
func WithRecordContext(logger interfaces.Logger, collection, recordID, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(collection); trimmed != "" {
		fields[fieldCollection] = trimmed
	}
	if trimmed := strings.TrimSpace(recordID); trimmed != "" {
		fields[fieldRecordID] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
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
