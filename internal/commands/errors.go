package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeValidation    = "COMMAND_VALIDATION_FAILED"
	TextCodeCanceled      = "COMMAND_CONTEXT_CANCELED"
	TextCodeTimeout       = "COMMAND_CONTEXT_TIMEOUT"
	TextCodeContext       = "COMMAND_CONTEXT_ERROR"
	TextCodeExecuteFailed = "COMMAND_EXECUTION_FAILED"
)

// Errors already carrying a go-errors category pass through untouched so the
// service layer classification (validation, not found) survives.

func wrapValidationError(err error) error {
	return wrapOnce(err, goerrors.CategoryValidation, "command validation failed", TextCodeValidation)
}

func wrapContextError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return wrapOnce(err, goerrors.CategoryCommand, "command execution cancelled", TextCodeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return wrapOnce(err, goerrors.CategoryCommand, "command execution deadline exceeded", TextCodeTimeout)
	default:
		return wrapOnce(err, goerrors.CategoryCommand, "command context error", TextCodeContext)
	}
}

func wrapExecuteError(err error) error {
	if isContextError(err) {
		return wrapContextError(err)
	}
	return wrapOnce(err, goerrors.CategoryCommand, "command execution failed", TextCodeExecuteFailed)
}

func wrapOnce(err error, category goerrors.Category, message, code string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
