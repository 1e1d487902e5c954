package placemarkscmd

import (
	"errors"

	"github.com/goliatone/go-placemarks/internal/commands"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

// CommandRegistry is the registration contract used when wiring handlers.
type CommandRegistry = commands.CommandRegistry

// HandlerSet groups the placemark command handlers.
type HandlerSet struct {
	SavePlacemark   *SavePlacemarkHandler
	DeletePlacemark *DeletePlacemarkHandler
	SaveSettings    *SaveSettingsHandler
	Upgrade         *UpgradeHandler
}

// Handlers returns the handlers in registration order.
func (s *HandlerSet) Handlers() []any {
	if s == nil {
		return nil
	}
	return []any{s.SavePlacemark, s.DeletePlacemark, s.SaveSettings, s.Upgrade}
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	upgradeOpts []UpgradeOption
	recorder    commands.OutcomeRecorder
}

// WithUpgradeOptions forwards options to the upgrade handler constructor.
func WithUpgradeOptions(opts ...UpgradeOption) Option {
	return func(cfg *options) {
		cfg.upgradeOpts = append(cfg.upgradeOpts, opts...)
	}
}

// WithRecorder reports every handler outcome to recorder.
func WithRecorder(recorder commands.OutcomeRecorder) Option {
	return func(cfg *options) {
		cfg.recorder = recorder
	}
}

// RegisterPlacemarkCommands builds the handlers and registers them with reg
// when it is non-nil.
func RegisterPlacemarkCommands(reg CommandRegistry, placemarkService PlacemarkService, settingsService SettingsService, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if placemarkService == nil {
		return nil, errors.New("placemark command registration: placemark service is nil")
	}
	if settingsService == nil {
		return nil, errors.New("placemark command registration: settings service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "placemarks")
	upgradeOpts := cfg.upgradeOpts
	var (
		saveOpts     []commands.HandlerOption[SavePlacemarkCommand]
		deleteOpts   []commands.HandlerOption[DeletePlacemarkCommand]
		settingsOpts []commands.HandlerOption[SaveSettingsCommand]
	)
	if cfg.recorder != nil {
		saveOpts = append(saveOpts, commands.WithRecorder[SavePlacemarkCommand](cfg.recorder))
		deleteOpts = append(deleteOpts, commands.WithRecorder[DeletePlacemarkCommand](cfg.recorder))
		settingsOpts = append(settingsOpts, commands.WithRecorder[SaveSettingsCommand](cfg.recorder))
		upgradeOpts = append(upgradeOpts, UpgradeWithHandlerOptions(commands.WithRecorder[UpgradeCommand](cfg.recorder)))
	}
	set := &HandlerSet{
		SavePlacemark:   NewSavePlacemarkHandler(placemarkService, logger, saveOpts...),
		DeletePlacemark: NewDeletePlacemarkHandler(placemarkService, logger, deleteOpts...),
		SaveSettings:    NewSaveSettingsHandler(settingsService, commands.CommandLogger(provider, "settings"), settingsOpts...),
		Upgrade:         NewUpgradeHandler(placemarkService, logger, upgradeOpts...),
	}

	if reg != nil {
		for _, handler := range set.Handlers() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
