package placemarkscmd

import (
	"context"
	"strings"

	"github.com/goliatone/go-placemarks/internal/commands"
	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/internal/notices"
	"github.com/goliatone/go-placemarks/internal/placemarks"
	"github.com/goliatone/go-placemarks/internal/settings"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	savePlacemarkOperation   = "placemarks.save"
	deletePlacemarkOperation = "placemarks.delete"
	saveSettingsOperation    = "settings.save"
	upgradeOperation         = "placemarks.upgrade"
)

var (
	_ command.Commander[SavePlacemarkCommand]   = (*SavePlacemarkHandler)(nil)
	_ command.Commander[DeletePlacemarkCommand] = (*DeletePlacemarkHandler)(nil)
	_ command.Commander[SaveSettingsCommand]    = (*SaveSettingsHandler)(nil)
	_ command.Commander[UpgradeCommand]         = (*UpgradeHandler)(nil)
	_ command.CronCommand                       = (*UpgradeHandler)(nil)
)

// PlacemarkService is the subset of the placemark service used by handlers.
type PlacemarkService interface {
	Save(ctx context.Context, req placemarks.SaveRequest) (*placemarks.Placemark, notices.List, error)
	Delete(ctx context.Context, id int64) error
	UpgradeLegacy(ctx context.Context) (notices.List, error)
}

// SettingsService is the subset of the settings service used by handlers.
type SettingsService interface {
	Save(ctx context.Context, in settings.Settings) (settings.Settings, notices.List, error)
}

// SavePlacemarkHandler executes SavePlacemarkCommand.
type SavePlacemarkHandler struct {
	inner *commands.Handler[SavePlacemarkCommand]
}

// NewSavePlacemarkHandler binds the handler to service.
func NewSavePlacemarkHandler(service PlacemarkService, logger interfaces.Logger, opts ...commands.HandlerOption[SavePlacemarkCommand]) *SavePlacemarkHandler {
	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg SavePlacemarkCommand) error {
		record, list, err := service.Save(ctx, placemarks.SaveRequest{
			ID:         msg.ID,
			Title:      msg.Title,
			Slug:       msg.Slug,
			Details:    msg.Details,
			Address:    msg.Address,
			Icon:       msg.Icon,
			ZIndex:     msg.ZIndex,
			Categories: msg.Categories,
		})
		if err != nil {
			return err
		}
		forward(msg.Notices, list)
		if msg.SavedID != nil {
			*msg.SavedID = record.ID
		}
		logging.WithPlacemarkContext(logger.WithContext(ctx), record.ID, "", "save").
			Info("placemarks.command.save.completed", "notices", len(list))
		return nil
	}
	return &SavePlacemarkHandler{inner: commands.NewHandler(exec, handlerOptions(logger, savePlacemarkOperation, opts)...)}
}

// Execute implements command.Commander.
func (h *SavePlacemarkHandler) Execute(ctx context.Context, msg SavePlacemarkCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeletePlacemarkHandler executes DeletePlacemarkCommand.
type DeletePlacemarkHandler struct {
	inner *commands.Handler[DeletePlacemarkCommand]
}

// NewDeletePlacemarkHandler binds the handler to service.
func NewDeletePlacemarkHandler(service PlacemarkService, logger interfaces.Logger, opts ...commands.HandlerOption[DeletePlacemarkCommand]) *DeletePlacemarkHandler {
	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg DeletePlacemarkCommand) error {
		if err := service.Delete(ctx, msg.ID); err != nil {
			return err
		}
		logging.WithPlacemarkContext(logger.WithContext(ctx), msg.ID, "", "delete").
			Info("placemarks.command.delete.completed", "id", formatID(msg.ID))
		return nil
	}
	return &DeletePlacemarkHandler{inner: commands.NewHandler(exec, handlerOptions(logger, deletePlacemarkOperation, opts)...)}
}

// Execute implements command.Commander.
func (h *DeletePlacemarkHandler) Execute(ctx context.Context, msg DeletePlacemarkCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SaveSettingsHandler executes SaveSettingsCommand.
type SaveSettingsHandler struct {
	inner *commands.Handler[SaveSettingsCommand]
}

// NewSaveSettingsHandler binds the handler to service.
func NewSaveSettingsHandler(service SettingsService, logger interfaces.Logger, opts ...commands.HandlerOption[SaveSettingsCommand]) *SaveSettingsHandler {
	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg SaveSettingsCommand) error {
		saved, list, err := service.Save(ctx, msg.Settings)
		if err != nil {
			return err
		}
		forward(msg.Notices, list)
		logging.WithFields(logger.WithContext(ctx), map[string]any{
			"address": saved.Address,
			"notices": len(list),
		}).Info("settings.command.save.completed")
		return nil
	}
	return &SaveSettingsHandler{inner: commands.NewHandler(exec, handlerOptions(logger, saveSettingsOperation, opts)...)}
}

// Execute implements command.Commander.
func (h *SaveSettingsHandler) Execute(ctx context.Context, msg SaveSettingsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpgradeHandler executes UpgradeCommand. It also satisfies
// command.CronCommand so hosts can schedule it.
type UpgradeHandler struct {
	inner      *commands.Handler[UpgradeCommand]
	cronConfig command.HandlerConfig
}

type upgradeConfig struct {
	cronConfig  command.HandlerConfig
	handlerOpts []commands.HandlerOption[UpgradeCommand]
}

// UpgradeOption customises the upgrade handler.
type UpgradeOption func(*upgradeConfig)

// UpgradeWithCronExpression overrides the cron expression used when the
// handler is scheduled.
func UpgradeWithCronExpression(expression string) UpgradeOption {
	return func(cfg *upgradeConfig) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			cfg.cronConfig.Expression = trimmed
		}
	}
}

// UpgradeWithHandlerOptions forwards options to the wrapped command handler.
func UpgradeWithHandlerOptions(opts ...commands.HandlerOption[UpgradeCommand]) UpgradeOption {
	return func(cfg *upgradeConfig) {
		cfg.handlerOpts = append(cfg.handlerOpts, opts...)
	}
}

// NewUpgradeHandler binds the handler to service.
func NewUpgradeHandler(service PlacemarkService, logger interfaces.Logger, opts ...UpgradeOption) *UpgradeHandler {
	cfg := upgradeConfig{
		cronConfig: command.HandlerConfig{Expression: "@daily"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg UpgradeCommand) error {
		list, err := service.UpgradeLegacy(ctx)
		forward(msg.Notices, list)
		return err
	}
	return &UpgradeHandler{
		inner:      commands.NewHandler(exec, handlerOptions(logger, upgradeOperation, cfg.handlerOpts)...),
		cronConfig: cfg.cronConfig,
	}
}

// Execute implements command.Commander.
func (h *UpgradeHandler) Execute(ctx context.Context, msg UpgradeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CronHandler runs the upgrade with a background context.
func (h *UpgradeHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), UpgradeCommand{})
	}
}

// CronOptions returns the cron registration metadata.
func (h *UpgradeHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// CLIHandler exposes the handler to CLI integrations.
func (h *UpgradeHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for the upgrade.
func (h *UpgradeHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"placemarks", "upgrade"},
		Group:       "placemarks",
		Description: "Upgrade stored placemarks written by older releases",
	}
}

func handlerOptions[T command.Message](logger interfaces.Logger, operation string, extra []commands.HandlerOption[T]) []commands.HandlerOption[T] {
	opts := []commands.HandlerOption[T]{
		commands.WithLogger[T](logger),
		commands.WithOperation[T](operation),
	}
	return append(opts, extra...)
}

func forward(dst *notices.Collector, list notices.List) {
	if dst != nil && len(list) > 0 {
		dst.Merge(list)
	}
}
