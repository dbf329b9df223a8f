package commands

import (
	"strings"

	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
)

// CommandLogger returns the logger for one family of command handlers, e.g.
// CommandLogger(provider, "records") logs under siteadmin.commands.records.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		return logging.CommandsLogger(provider)
	}
	logger := logging.ModuleLogger(provider, "siteadmin.commands."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
