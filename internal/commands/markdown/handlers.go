package markdowncmd

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-placemarks/internal/commands"
	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/internal/markdown"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const importOperation = "markdown.import_directory"

var (
	// ErrMarkdownFeatureDisabled is returned when the markdown feature flag is disabled at runtime.
	ErrMarkdownFeatureDisabled = errors.New("markdown command: feature disabled")
)

var _ command.Commander[ImportDirectoryCommand] = (*ImportDirectoryHandler)(nil)

// DirectoryImporter imports a directory of Markdown placemarks.
type DirectoryImporter interface {
	ImportDir(ctx context.Context, dir string) (*markdown.ImportResult, error)
}

// Gate reports whether imports may run right now. A nil Gate always allows them.
type Gate func() bool

func (g Gate) allows() bool {
	return g == nil || g()
}

// ImportDirectoryHandler runs Markdown imports through the shared command handler.
type ImportDirectoryHandler struct {
	inner *commands.Handler[ImportDirectoryCommand]
}

// NewImportDirectoryHandler creates a handler bound to importer.
func NewImportDirectoryHandler(importer DirectoryImporter, logger interfaces.Logger, enabled Gate, opts ...commands.HandlerOption[ImportDirectoryCommand]) *ImportDirectoryHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ImportDirectoryCommand) error {
		if !enabled.allows() {
			return ErrMarkdownFeatureDisabled
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := importer.ImportDir(ctx, strings.TrimSpace(msg.Directory))
		if err != nil {
			return err
		}
		if result == nil {
			return nil
		}
		if msg.Notices != nil {
			msg.Notices.Merge(result.Notices)
		}

		fileErrs := result.Errors()
		logging.WithFields(baseLogger.WithContext(ctx), map[string]any{
			"directory":      msg.Directory,
			"file_count":     len(result.Files),
			"imported_count": result.Imported(),
			"error_count":    len(fileErrs),
		}).Info("markdown.command.import_directory.completed")

		if msg.Strict && len(fileErrs) > 0 {
			return errors.Join(fileErrs...)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportDirectoryCommand]{
		commands.WithLogger[ImportDirectoryCommand](baseLogger),
		commands.WithOperation[ImportDirectoryCommand](importOperation),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportDirectoryHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ImportDirectoryCommand].
func (h *ImportDirectoryHandler) Execute(ctx context.Context, msg ImportDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CLIHandler exposes the handler to CLI integrations.
func (h *ImportDirectoryHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for Markdown imports.
func (h *ImportDirectoryHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"markdown", "import"},
		Group:       "markdown",
		Description: "Import Markdown files as placemarks",
	}
}
