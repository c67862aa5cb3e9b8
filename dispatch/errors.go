package dispatch

import (
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeBadInput        = "ACCOUNTS_BAD_INPUT"
	TextCodeHandlerNotFound = "ACCOUNTS_HANDLER_NOT_FOUND"
	TextCodeInternal        = "ACCOUNTS_INTERNAL_ERROR"
)

var (
	ErrHandlerNotFound = errors.New("dispatch: handler not found")
	ErrNoPrior         = errors.New("dispatch: no prior handler")
)

// LookupError reports a pattern with no handler to run. It unwraps to
// ErrHandlerNotFound or ErrNoPrior.
type LookupError struct {
	Pattern Pattern
	Err     error
}

func (e *LookupError) Error() string {
	if e == nil || e.Err == nil {
		return ErrHandlerNotFound.Error()
	}
	return e.Err.Error() + " for " + e.Pattern.String()
}

func (e *LookupError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *LookupError) ToServiceError() *goerrors.Error {
	if e == nil {
		return goerrors.New(ErrHandlerNotFound.Error(), goerrors.CategoryNotFound).
			WithCode(http.StatusNotFound).
			WithTextCode(TextCodeHandlerNotFound)
	}
	return goerrors.Wrap(e, goerrors.CategoryNotFound, e.Error()).
		WithCode(http.StatusNotFound).
		WithTextCode(TextCodeHandlerNotFound).
		WithMetadata(map[string]any{"pattern": e.Pattern.String()})
}

func dispatchError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func badInput(message string, metadata map[string]any) error {
	return dispatchError(message, goerrors.CategoryBadInput, http.StatusBadRequest, TextCodeBadInput, metadata)
}

func internal(message string, metadata map[string]any) error {
	return dispatchError(message, goerrors.CategoryInternal, http.StatusInternalServerError, TextCodeInternal, metadata)
}

func handlerNotFound(pattern Pattern) error {
	return &LookupError{Pattern: pattern, Err: ErrHandlerNotFound}
}

func noPrior(pattern Pattern) error {
	return &LookupError{Pattern: pattern, Err: ErrNoPrior}
}

func missingArgs(pattern Pattern, fields []string) error {
	errs := make([]goerrors.FieldError, 0, len(fields))
	for _, field := range fields {
		errs = append(errs, goerrors.FieldError{
			Field:   field,
			Message: "is required",
		})
	}
	return goerrors.NewValidation("dispatch: validation failed for "+pattern.String(), errs...).
		WithCode(http.StatusBadRequest).
		WithTextCode(TextCodeBadInput).
		WithMetadata(map[string]any{"pattern": pattern.String(), "missing": fields})
}
