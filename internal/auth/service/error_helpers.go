package service

import (
	"errors"
	"net/http"

	commonerrors "github.com/blogsphere/backend/internal/common/errors"
)

func handleCircuitBreakerError(err error) error {
	if errors.Is(err, commonerrors.ErrCircuitOpen) {
		return ErrServiceUnavailable.WithCause(err)
	}
	return err
}

// handleStoreError turns a refresh store failure into a domain error; the cause
// stays attached for logs but is never rendered to clients.
func handleStoreError(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, commonerrors.ErrCircuitOpen) {
		return handleCircuitBreakerError(err)
	}
	if commonerrors.IsDomainError(err) {
		return err
	}
	return newInternalError("SESSION_STORE_ERROR", message, err)
}

func newInternalError(code, message string, cause error) commonerrors.DomainError {
	err := commonerrors.NewDomainError(
		code,
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		message,
	)
	if cause != nil {
		err = err.WithCause(cause)
	}
	return err
}
