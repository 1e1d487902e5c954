// Package commands exposes the placemark command handlers to host
// applications through go-command registries, dispatchers and cron.
package commands

import (
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	internalcommands "github.com/goliatone/go-placemarks/internal/commands"
	markdowncmd "github.com/goliatone/go-placemarks/internal/commands/markdown"
	placemarkscmd "github.com/goliatone/go-placemarks/internal/commands/placemarks"
	"github.com/goliatone/go-placemarks/internal/di"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

type (
	CommandRegistry     = internalcommands.CommandRegistry
	CommandDispatcher   = internalcommands.CommandDispatcher
	CommandSubscription = internalcommands.CommandSubscription
	CronRegistrar       = internalcommands.CronRegistrar
)

// ErrNoHandlers is returned when the container has no service a handler could bind to.
var ErrNoHandlers = errors.New("placemarks commands: no handlers registered")

// RegistrationOptions selects the integrations handlers are attached to.
// Every field is optional.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
	// UpgradeCron takes precedence over Commands.UpgradeCron.
	UpgradeCron string
}

// RegistrationResult lists the handlers in registration order: the four
// placemark handlers, then the markdown import when it is enabled.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Close unsubscribes from the dispatcher. It is safe to call twice.
func (r *RegistrationResult) Close() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
	r.Subscriptions = nil
}

type registrar struct {
	opts   RegistrationOptions
	result *RegistrationResult
	errs   []error
}

func (r *registrar) fail(err error) {
	if err != nil {
		r.errs = append(r.errs, err)
	}
}

func (r *registrar) add(handler any) {
	r.result.Handlers = append(r.result.Handlers, handler)
	if r.opts.Registry != nil {
		r.fail(r.opts.Registry.RegisterCommand(handler))
	}
	if r.opts.Dispatcher != nil {
		sub, err := r.opts.Dispatcher.RegisterCommand(handler)
		r.fail(err)
		if sub != nil {
			r.result.Subscriptions = append(r.result.Subscriptions, sub)
		}
	}
	if cron, ok := handler.(command.CronCommand); ok && r.opts.CronRegistrar != nil {
		r.fail(r.opts.CronRegistrar(cron.CronOptions(), cron.CronHandler()))
	}
}

// RegisterContainerCommands builds a handler for every command the container
// can serve and attaches it to each integration in opts. Integration errors
// are joined and returned alongside the handlers that were built.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{}
	if container == nil {
		return result, nil
	}
	if opts.LoggerProvider == nil {
		opts.LoggerProvider = container.LoggerProvider()
	}
	if reg, ok := opts.Registry.(interface {
		SetCronRegister(func(command.HandlerConfig, any) error) *command.Registry
	}); ok && opts.CronRegistrar != nil {
		reg.SetCronRegister(opts.CronRegistrar)
	}

	r := &registrar{opts: opts, result: result}
	metrics := container.Metrics()

	if places, settings := container.PlacemarkService(), container.SettingsService(); places != nil && settings != nil {
		cron := strings.TrimSpace(opts.UpgradeCron)
		if cron == "" {
			cron = strings.TrimSpace(container.Config.Commands.UpgradeCron)
		}
		setOpts := []placemarkscmd.Option{
			placemarkscmd.WithUpgradeOptions(placemarkscmd.UpgradeWithCronExpression(cron)),
		}
		if metrics != nil {
			setOpts = append(setOpts, placemarkscmd.WithRecorder(metrics))
		}
		set, err := placemarkscmd.RegisterPlacemarkCommands(nil, places, settings, opts.LoggerProvider, setOpts...)
		r.fail(err)
		for _, handler := range set.Handlers() {
			r.add(handler)
		}
	}

	if importer := container.MarkdownImporter(); importer != nil {
		var mdOpts []markdowncmd.Option
		if metrics != nil {
			mdOpts = append(mdOpts, markdowncmd.WithImportHandlerOptions(
				internalcommands.WithRecorder[markdowncmd.ImportDirectoryCommand](metrics)))
		}
		set, err := markdowncmd.RegisterMarkdownCommands(nil, importer, opts.LoggerProvider,
			container.MarkdownEnabled, mdOpts...)
		r.fail(err)
		if set != nil {
			r.add(set.Import)
		}
	}

	if len(result.Handlers) == 0 {
		r.fail(ErrNoHandlers)
	}
	return result, errors.Join(r.errs...)
}
