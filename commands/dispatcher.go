package commands

import (
	"fmt"

	"github.com/goliatone/go-command/dispatcher"
	markdowncmd "github.com/goliatone/go-placemarks/internal/commands/markdown"
	placemarkscmd "github.com/goliatone/go-placemarks/internal/commands/placemarks"
)

// Dispatcher subscribes the module handlers to the go-command dispatcher so
// hosts can call dispatcher.Dispatch with the command messages.
type Dispatcher struct{}

// NewDispatcher returns a CommandDispatcher backed by the go-command dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// RegisterCommand satisfies CommandDispatcher.
func (Dispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *placemarkscmd.SavePlacemarkHandler:
		return dispatcher.SubscribeCommand[placemarkscmd.SavePlacemarkCommand](h), nil
	case *placemarkscmd.DeletePlacemarkHandler:
		return dispatcher.SubscribeCommand[placemarkscmd.DeletePlacemarkCommand](h), nil
	case *placemarkscmd.SaveSettingsHandler:
		return dispatcher.SubscribeCommand[placemarkscmd.SaveSettingsCommand](h), nil
	case *placemarkscmd.UpgradeHandler:
		return dispatcher.SubscribeCommand[placemarkscmd.UpgradeCommand](h), nil
	case *markdowncmd.ImportDirectoryHandler:
		return dispatcher.SubscribeCommand[markdowncmd.ImportDirectoryCommand](h), nil
	default:
		return nil, fmt.Errorf("placemarks commands: no dispatcher binding for %T", handler)
	}
}

var _ CommandDispatcher = Dispatcher{}
