package commands

import command "github.com/goliatone/go-command"

// Hosts expose handlers through any mix of these three integrations. Each is
// optional during registration.

// CommandRegistry is satisfied by *command.Registry.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher routes messages to handlers and returns a handle for
// unsubscribing them.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar schedules a handler; the signature matches
// command.Registry.SetCronRegister.
type CronRegistrar func(cfg command.HandlerConfig, handler any) error
