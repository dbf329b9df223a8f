package commands

import (
	"context"
	"errors"

	"github.com/brightpath-ai/siteadmin/internal/records"
	goerrors "github.com/goliatone/go-errors"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"

	recordValidationCode  = "RECORD_VALIDATION_FAILED"
	recordNotFoundCode    = "RECORD_NOT_FOUND"
	recordStoreCode       = "RECORD_STORE_UNAVAILABLE"
	recordReorderCode     = "RECORD_REORDER_INCONSISTENT"
	recordActorMissingErr = "RECORD_ACTOR_REQUIRED"
	recordFieldPathCode   = "RECORD_FIELD_PATH_INVALID"
)

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	wrapped := goerrors.FromOzzoValidation(err, "command validation failed")
	return wrapped.WithCode(goerrors.CodeBadRequest).WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithCode(goerrors.CodeRequestTimeout).
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

// wrapExecuteError maps record manager failures onto go-errors categories so
// transports can pick a status without knowing the records package.
func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch records.Kind(err) {
	case "validation":
		var verr *records.ValidationError
		if errors.As(err, &verr) {
			wrapped := goerrors.FromOzzoValidation(verr.Issues, verr.Error())
			wrapped.Source = err
			return wrapped.WithCode(goerrors.CodeBadRequest).WithTextCode(recordValidationCode)
		}
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(recordValidationCode)
	case "not_found":
		return goerrors.Wrap(err, goerrors.CategoryNotFound, err.Error()).
			WithCode(goerrors.CodeNotFound).
			WithTextCode(recordNotFoundCode)
	case "store_unavailable":
		return goerrors.Wrap(err, goerrors.CategoryExternal, "record store unavailable").
			WithCode(503).
			WithTextCode(recordStoreCode)
	case "reorder_inconsistent":
		return goerrors.Wrap(err, goerrors.CategoryConflict, err.Error()).
			WithCode(goerrors.CodeConflict).
			WithTextCode(recordReorderCode)
	}
	if errors.Is(err, records.ErrFieldPath) || errors.Is(err, records.ErrIDImmutable) {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, err.Error()).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(recordFieldPathCode)
	}
	if errors.Is(err, records.ErrActorRequired) {
		return goerrors.Wrap(err, goerrors.CategoryAuth, err.Error()).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode(recordActorMissingErr)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(commandExecuteFailed)
}
