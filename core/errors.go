package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ServiceErrorBadInput        = "ACCOUNTS_BAD_INPUT"
	ServiceErrorNotFound        = "ACCOUNTS_NOT_FOUND"
	ServiceErrorStoreFailure    = "ACCOUNTS_STORE_FAILURE"
	ServiceErrorPartialWrite    = "ACCOUNTS_PARTIAL_WRITE"
	ServiceErrorHandlerNotFound = "ACCOUNTS_HANDLER_NOT_FOUND"
	ServiceErrorExtensionFailed = "ACCOUNTS_EXTENSION_FAILED"
	ServiceErrorInternal        = "ACCOUNTS_INTERNAL_ERROR"
)

var ErrNotFound = errors.New("core: entity not found")

// NotFoundError is returned by stores for ids that do not resolve.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrNotFound.Error()
	}
	return fmt.Sprintf("core: %s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func (e *NotFoundError) ToServiceError() *goerrors.Error {
	err := typedEnvelope(e, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(ServiceErrorNotFound)
	if e != nil {
		err.WithMetadata(map[string]any{"kind": e.Kind, "id": e.ID})
	}
	return err
}

func NotFound(kind string, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// PartialWriteError reports a dual-entity save where the user was persisted
// and the account was not. Nothing is rolled back.
type PartialWriteError struct {
	UserID    string
	AccountID string
	Cause     error
}

func (e *PartialWriteError) Error() string {
	if e == nil {
		return "core: partial membership write"
	}
	message := fmt.Sprintf("core: user %q saved but account %q was not", e.UserID, e.AccountID)
	if e.Cause != nil {
		message += ": " + e.Cause.Error()
	}
	return message
}

func (e *PartialWriteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *PartialWriteError) ToServiceError() *goerrors.Error {
	err := typedEnvelope(e, goerrors.CategoryOperation).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ServiceErrorPartialWrite)
	if e != nil {
		err.WithMetadata(map[string]any{
			"user_id":         e.UserID,
			"account_id":      e.AccountID,
			"user_committed":  true,
			"reconcile_ready": e.UserID != "",
		})
	}
	return err
}

// ExtensionError reports a failed lifecycle extension. The wrapped prior
// handler already ran, so its effects may be committed.
type ExtensionError struct {
	Operation      string
	PriorCommitted bool
	Cause          error
}

func (e *ExtensionError) Error() string {
	if e == nil {
		return "core: extension failed"
	}
	message := fmt.Sprintf("core: %s extension failed", e.Operation)
	if e.Cause != nil {
		message += ": " + e.Cause.Error()
	}
	return message
}

func (e *ExtensionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *ExtensionError) ToServiceError() *goerrors.Error {
	err := typedEnvelope(e, goerrors.CategoryOperation).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ServiceErrorExtensionFailed)
	if e != nil {
		err.WithMetadata(map[string]any{
			"operation":       e.Operation,
			"prior_committed": e.PriorCommitted,
		})
	}
	return err
}

// typedEnvelope keeps source reachable through errors.As. goerrors.Wrap
// would return a clone of any envelope already in source's chain instead.
func typedEnvelope(source error, category goerrors.Category) *goerrors.Error {
	err := goerrors.New(source.Error(), category)
	err.Source = source
	return err
}

type serviceErrorConverter interface {
	ToServiceError() *goerrors.Error
}

// MapError converts any error into the go-errors envelope used by outer
// layers.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	// The outermost envelope or converter in the chain wins.
	for current := err; current != nil; current = errors.Unwrap(current) {
		switch typed := current.(type) {
		case *goerrors.Error:
			return ensureServiceErrorEnvelope(typed)
		case serviceErrorConverter:
			return ensureServiceErrorEnvelope(typed.ToServiceError())
		}
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"):
		return newServiceError(err.Error(), goerrors.CategoryNotFound, ServiceErrorNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newServiceError(err.Error(), goerrors.CategoryBadInput, ServiceErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped)
}

func newServiceError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureServiceErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureServiceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = serviceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultServiceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultServiceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ServiceErrorBadInput
	case goerrors.CategoryNotFound:
		return ServiceErrorNotFound
	case goerrors.CategoryExternal:
		return ServiceErrorStoreFailure
	case goerrors.CategoryOperation:
		return ServiceErrorExtensionFailed
	default:
		return ServiceErrorInternal
	}
}

func serviceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func badInputError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ServiceErrorBadInput)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func validationError(field string, message string) error {
	return goerrors.NewValidation("core: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(ServiceErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

// storeError classifies a store failure. Not found stays NOT_FOUND so the
// caller can tell a missing required entity from an unavailable store.
func storeError(err error, message string, metadata map[string]any) error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return err
	}
	var partial *PartialWriteError
	if errors.As(err, &partial) {
		return err
	}
	category := goerrors.CategoryExternal
	code := http.StatusBadGateway
	textCode := ServiceErrorStoreFailure
	if IsNotFound(err) {
		category = goerrors.CategoryNotFound
		code = http.StatusNotFound
		textCode = ServiceErrorNotFound
	}
	wrapped := goerrors.Wrap(err, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		wrapped.WithMetadata(metadata)
	}
	return wrapped
}
