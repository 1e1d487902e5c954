package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	// StatusInterrupted covers cancellation and deadline expiry.
	StatusInterrupted Status = "interrupted"
)

// Outcome summarises one handler execution.
type Outcome struct {
	Command   string
	Operation string
	Status    Status
	Duration  time.Duration
	Err       error
}

func (o Outcome) fields() map[string]any {
	fields := map[string]any{"command": o.Command}
	if o.Operation != "" {
		fields["operation"] = o.Operation
	}
	return fields
}

// Observer is called once per execution that reached the wrapped function.
type Observer[T command.Message] func(ctx context.Context, msg T, outcome Outcome)

// LogOutcome logs successes at info and everything else at error.
func LogOutcome[T command.Message](logger interfaces.Logger) Observer[T] {
	logger = EnsureLogger(logger)
	return func(ctx context.Context, _ T, outcome Outcome) {
		entry := logging.WithFields(logger.WithContext(ctx), outcome.fields())
		if outcome.Status == StatusSucceeded {
			entry.Info("command.execute.completed", "duration_ms", outcome.Duration.Milliseconds())
			return
		}
		entry.Error("command.execute."+string(outcome.Status),
			"duration_ms", outcome.Duration.Milliseconds(),
			"error", outcome.Err,
		)
	}
}

// OutcomeRecorder receives command outcomes as metrics.
type OutcomeRecorder interface {
	ObserveCommand(command string, status string, duration time.Duration)
}

// RecordOutcome forwards every outcome to recorder before calling next.
func RecordOutcome[T command.Message](recorder OutcomeRecorder, next Observer[T]) Observer[T] {
	return func(ctx context.Context, msg T, outcome Outcome) {
		if recorder != nil {
			recorder.ObserveCommand(outcome.Command, string(outcome.Status), outcome.Duration)
		}
		if next != nil {
			next(ctx, msg, outcome)
		}
	}
}
