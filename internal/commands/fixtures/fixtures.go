// Package fixtures holds recording fakes for the registries, dispatchers and
// cron schedulers that command registration talks to.
package fixtures

import (
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-placemarks/internal/commands"
)

var (
	_ commands.CommandRegistry   = (*Registry)(nil)
	_ commands.CommandDispatcher = (*Dispatcher)(nil)
)

// Registry records handlers in registration order.
type Registry struct {
	Handlers []any
}

func (r *Registry) RegisterCommand(handler any) error {
	r.Handlers = append(r.Handlers, handler)
	return nil
}

// Dispatcher hands out a Subscription per handler, or fails with Err.
type Dispatcher struct {
	Subscriptions []*Subscription
	Err           error
}

func (d *Dispatcher) RegisterCommand(handler any) (commands.CommandSubscription, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	sub := &Subscription{Handler: handler}
	d.Subscriptions = append(d.Subscriptions, sub)
	return sub, nil
}

type Subscription struct {
	Handler      any
	Unsubscribed bool
}

func (s *Subscription) Unsubscribe() {
	s.Unsubscribed = true
}

// CronCall is one Register invocation.
type CronCall struct {
	Config  command.HandlerConfig
	Handler any
}

// Cron records schedules. Pass its Register method where a
// commands.CronRegistrar is expected. A non-nil Err fails every call.
type Cron struct {
	Calls []CronCall
	Err   error
}

func (c *Cron) Register(cfg command.HandlerConfig, handler any) error {
	if c.Err != nil {
		return c.Err
	}
	c.Calls = append(c.Calls, CronCall{Config: cfg, Handler: handler})
	return nil
}
