package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "VALIDATION"
	CategoryNotFound     ErrorCategory = "NOT_FOUND"
	CategoryConflict     ErrorCategory = "CONFLICT"
	CategoryUnauthorized ErrorCategory = "UNAUTHORIZED"
	CategoryInternal     ErrorCategory = "INTERNAL"
	CategoryExternal     ErrorCategory = "EXTERNAL"
)

type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	HTTPStatus() int
	Message() string
	Details() map[string]any
	Unwrap() error
	WithCause(cause error) DomainError
	WithDetails(details map[string]any) DomainError
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	details  map[string]any
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string {
	return e.code
}

func (e *domainError) Category() ErrorCategory {
	return e.category
}

func (e *domainError) HTTPStatus() int {
	return e.status
}

func (e *domainError) Message() string {
	return e.message
}

func (e *domainError) Details() map[string]any {
	return e.details
}

func (e *domainError) Unwrap() error {
	return e.cause
}

// Is matches by code so a copy made by WithCause or WithDetails still equals its sentinel.
func (e *domainError) Is(target error) bool {
	var other *domainError
	if errors.As(target, &other) {
		return other.code == e.code
	}
	return false
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		details:  e.details,
		cause:    cause,
	}
}

func (e *domainError) WithDetails(details map[string]any) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		details:  details,
		cause:    e.cause,
	}
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func IsDomainError(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func IsCategory(err error, category ErrorCategory) bool {
	de, ok := AsDomainError(err)
	return ok && de.Category() == category
}

var (
	ErrCircuitOpen = NewDomainError(
		"CIRCUIT_OPEN",
		CategoryExternal,
		http.StatusServiceUnavailable,
		"circuit breaker is open",
	)

	ErrValidation = NewDomainError(
		"VALIDATION_FAILED",
		CategoryValidation,
		http.StatusBadRequest,
		"validation failed",
	)

	ErrEmptyUUID = NewDomainError(
		"EMPTY_UUID",
		CategoryValidation,
		http.StatusBadRequest,
		"uuid cannot be empty",
	)

	ErrUnauthenticated = NewDomainError(
		"UNAUTHENTICATED",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"unauthorized",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"internal server error",
	)

	ErrDatabaseError = NewDomainError(
		"DATABASE_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"database operation failed",
	)

	ErrInvalidPayload = NewDomainError(
		"INVALID_PAYLOAD",
		CategoryValidation,
		http.StatusBadRequest,
		"invalid payload",
	)
)
