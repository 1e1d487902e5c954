package commands

import (
	"strings"

	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

// CommandLogger returns the logger for the handlers of one command group,
// named placemarks.commands.<group>.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.TrimSpace(group)
	if group == "" {
		group = "core"
	}
	return logging.WithFields(
		logging.ModuleLogger(provider, logging.ModuleCommands+"."+group),
		map[string]any{"command_group": group},
	)
}

// EnsureLogger substitutes a no-op logger for nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
