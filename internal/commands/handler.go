package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

// DefaultCommandTimeout bounds a command when no timeout is configured.
const DefaultCommandTimeout = 30 * time.Second

type HandlerOption[T command.Message] func(*Handler[T])

// Handler adapts a command function to go-command's Commander. It validates
// the message, bounds execution with a timeout and classifies the error with
// a go-errors category before reporting the outcome to its observer.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	observe   Observer[T]
	recorder  OutcomeRecorder
}

func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: DefaultCommandTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.observe == nil {
		h.observe = LogOutcome[T](h.logger)
	}
	if h.recorder != nil {
		h.observe = RecordOutcome(h.recorder, h.observe)
	}
	return h
}

func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return wrapValidationError(err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return wrapContextError(err)
	}

	name := command.GetMessageType(msg)
	outcome := Outcome{Command: name, Operation: h.operation}
	logging.WithFields(h.logger.WithContext(ctx), outcome.fields()).Debug("command.execute.start")

	started := time.Now()
	err := h.exec(ctx, msg)
	outcome.Duration = time.Since(started)

	switch {
	case isContextError(err):
		outcome.Status = StatusInterrupted
		err = wrapContextError(err)
	case err != nil:
		outcome.Status = StatusFailed
		err = wrapExecuteError(err)
	case ctx.Err() != nil:
		outcome.Status = StatusInterrupted
		err = wrapContextError(ctx.Err())
	default:
		outcome.Status = StatusSucceeded
	}
	outcome.Err = err

	h.observe(ctx, msg, outcome)
	return err
}

// WithTimeout overrides DefaultCommandTimeout. Zero or less disables it.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = max(timeout, 0)
	}
}

func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logger = EnsureLogger(logger)
	}
}

// WithOperation names the domain operation in every log entry and outcome.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithObserver replaces LogOutcome.
func WithObserver[T command.Message](observer Observer[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.observe = observer
	}
}

// WithRecorder reports every outcome to recorder in addition to the observer.
func WithRecorder[T command.Message](recorder OutcomeRecorder) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.recorder = recorder
	}
}
