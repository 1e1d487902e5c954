package markdowncmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-placemarks/internal/commands"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry = commands.CommandRegistry

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar = commands.CronRegistrar

// HandlerSet groups the Markdown command handlers produced by RegisterMarkdownCommands.
type HandlerSet struct {
	Import *ImportDirectoryHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	importHandlerOpts []commands.HandlerOption[ImportDirectoryCommand]
}

// WithImportHandlerOptions forwards options to the ImportDirectoryHandler constructor.
func WithImportHandlerOptions(opts ...commands.HandlerOption[ImportDirectoryCommand]) Option {
	return func(cfg *options) {
		cfg.importHandlerOpts = append(cfg.importHandlerOpts, opts...)
	}
}

// RegisterMarkdownCommands builds the Markdown command handlers and registers
// them with reg when it is non-nil.
func RegisterMarkdownCommands(reg CommandRegistry, importer DirectoryImporter, provider interfaces.LoggerProvider, enabled Gate, opts ...Option) (*HandlerSet, error) {
	if importer == nil {
		return nil, errors.New("markdown command registration: importer is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "markdown")
	importHandler := NewImportDirectoryHandler(importer, logger, enabled, cfg.importHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(importHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{Import: importHandler}, nil
}

// RegisterMarkdownCron schedules handler through reg with msg as the payload.
// The handler runs with a background context.
func RegisterMarkdownCron(reg CronRegistrar, handler *ImportDirectoryHandler, cfg command.HandlerConfig, msg ImportDirectoryCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
