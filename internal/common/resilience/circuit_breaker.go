package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/blogsphere/backend/internal/common/clock"
	commonerrors "github.com/blogsphere/backend/internal/common/errors"
	"github.com/blogsphere/backend/internal/common/logger"
	"github.com/blogsphere/backend/internal/observability/metrics"
)

type CircuitBreaker struct {
	failures    atomic.Int32
	lastFailure atomic.Value
	threshold   int32
	timeout     time.Duration
	resetAfter  time.Duration
	name        string
	ignore      []error
	clock       clock.Clock
	log         *logger.Logger
}

type CircuitBreakerConfig struct {
	Threshold  int32
	Timeout    time.Duration
	ResetAfter time.Duration
	Name       string
	// Ignore lists errors that are returned to the caller without counting as a failure.
	Ignore []error
	Clock  clock.Clock
	Logger *logger.Logger
}

func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	clk := config.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}
	cb := &CircuitBreaker{
		threshold:  config.Threshold,
		timeout:    config.Timeout,
		resetAfter: config.ResetAfter,
		name:       config.Name,
		ignore:     config.Ignore,
		clock:      clk,
		log:        config.Logger,
	}
	cb.lastFailure.Store(time.Time{})
	return cb
}

func (cb *CircuitBreaker) IsOpen() bool {
	if cb.failures.Load() < cb.threshold {
		cb.setState(metrics.BreakerClosed)
		return false
	}

	lastFailure := cb.lastFailure.Load().(time.Time)
	if lastFailure.IsZero() {
		cb.setState(metrics.BreakerClosed)
		return false
	}

	if cb.clock.Since(lastFailure) > cb.resetAfter {
		cb.reset()
		cb.setState(metrics.BreakerClosed)
		return false
	}

	cb.setState(metrics.BreakerOpen)
	return true
}

func (cb *CircuitBreaker) setState(state float64) {
	if cb.name != "" {
		metrics.CircuitBreakerState.WithLabelValues(cb.name).Set(state)
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.failures.Add(1)
	cb.lastFailure.Store(cb.clock.Now())
	if cb.name != "" {
		metrics.CircuitBreakerFailures.WithLabelValues(cb.name).Inc()
	}
	if cb.log != nil {
		cb.log.Warnf("circuit breaker [%s]: failure recorded", cb.name)
	}
}

func (cb *CircuitBreaker) reset() {
	cb.failures.Store(0)
	cb.lastFailure.Store(time.Time{})
}

func (cb *CircuitBreaker) ignored(err error) bool {
	for _, target := range cb.ignore {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (cb *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	return cb.CallWithFallback(ctx, fn, nil)
}

func (cb *CircuitBreaker) CallWithFallback(ctx context.Context, fn func(context.Context) error, fallback func() error) error {
	if cb.IsOpen() {
		if cb.log != nil {
			if fallback != nil {
				cb.log.Warnf("circuit breaker [%s]: circuit is open, using fallback", cb.name)
			} else {
				cb.log.Warnf("circuit breaker [%s]: circuit is open, rejecting request", cb.name)
			}
		}
		if fallback != nil {
			return fallback()
		}
		return commonerrors.ErrCircuitOpen
	}

	callCtx := ctx
	if cb.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cb.timeout)
		defer cancel()
	}

	err := fn(callCtx)
	if err != nil {
		if cb.ignored(err) {
			return err
		}
		cb.recordFailure()
		if fallback != nil {
			if cb.log != nil {
				cb.log.Infof("circuit breaker [%s]: operation failed, using fallback", cb.name)
			}
			return fallback()
		}
		return err
	}

	cb.reset()
	return nil
}
