package http

import (
	"net/http"
	"strconv"

	commonerrors "github.com/blogsphere/backend/internal/common/errors"
	"github.com/blogsphere/backend/internal/common/httpmetrics"
	"github.com/blogsphere/backend/internal/common/logger"
	"github.com/blogsphere/backend/internal/observability/metrics"
)

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

// HandleError renders err as an ErrorEnvelope. Causes of domain errors are logged,
// never sent to the client.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		h.handleDomainError(w, r, domainErr)
		return
	}

	ctx := r.Context()
	traceID := TraceIDFromContext(ctx)

	h.log.WithFields(ctx, logger.Fields{
		"error":  err.Error(),
		"action": "unhandled_error",
	}).Errorf("unhandled error: %v", err)

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(http.StatusInternalServerError),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteErrorEnvelope(w, http.StatusInternalServerError, CodeInternal, "internal server error", nil, traceID)
}

func (h *ErrorHandler) handleDomainError(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError) {
	ctx := r.Context()
	traceID := TraceIDFromContext(ctx)
	status := err.HTTPStatus()

	fields := logger.Fields{
		"error_code": err.Code(),
		"category":   string(err.Category()),
		"status":     status,
		"action":     "domain_error",
	}

	switch {
	case status >= http.StatusInternalServerError:
		h.log.WithFields(ctx, fields).Errorf("domain error: %s", err.Error())
	case h.log.ShouldLog(logger.DEBUG):
		h.log.WithFields(ctx, fields).Debugf("domain error: %s", err.Error())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(err.Category()),
		err.Code(),
		strconv.Itoa(status),
	).Inc()

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteErrorEnvelope(w, status, err.Code(), err.Message(), err.Details(), traceID)
}

func HandleError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	NewErrorHandler(log).HandleError(w, r, err)
}
