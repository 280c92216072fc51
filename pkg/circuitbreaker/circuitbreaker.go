// Package circuitbreaker wraps sony/gobreaker for calls leaving the process (Redis, SMTP).
package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrOpen is returned without calling through while the breaker is open or saturated
var ErrOpen = errors.New("circuit breaker is open")

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

type Settings struct {
	Name string
	// MaxRequests allowed through while half-open
	MaxRequests uint32
	// Interval clears the counts while closed
	Interval time.Duration
	// Timeout before an open breaker goes half-open
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker
	ConsecutiveFailures uint32
}

func DefaultSettings(name string) Settings {
	return Settings{
		Name:                name,
		MaxRequests:         3,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

type CircuitBreaker struct {
	cb     *gobreaker.CircuitBreaker
	name   string
	logger *zap.Logger
	tracer trace.Tracer
}

func NewCircuitBreaker(settings Settings, logger *zap.Logger) *CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}

	c := &CircuitBreaker{
		name:   settings.Name,
		logger: logger,
		tracer: otel.Tracer("medilink/circuitbreaker"),
	}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			var ign ignored
			return err == nil || errors.As(err, &ign)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", string(mapState(from))),
				zap.String("to", string(mapState(to))))
		},
	})
	return c
}

// Execute runs fn through the breaker. Context cancellation is not counted as a failure of the remote side.
func (c *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "circuit_breaker.execute",
		trace.WithAttributes(
			attribute.String("breaker", c.name),
			attribute.String("state", string(c.State())),
		))
	defer span.End()

	_, err := c.cb.Execute(func() (interface{}, error) {
		if err := fn(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ignored{err}
			}
			return nil, err
		}
		return nil, nil
	})

	var ign ignored
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		span.SetAttributes(attribute.Bool("circuit_open", true))
		return ErrOpen
	case errors.As(err, &ign):
		return ign.err
	default:
		span.RecordError(err)
		return err
	}
}

func (c *CircuitBreaker) State() State {
	return mapState(c.cb.State())
}

func (c *CircuitBreaker) Name() string {
	return c.name
}

// ignored marks errors that should not trip the breaker
type ignored struct{ err error }

func (i ignored) Error() string { return i.err.Error() }

func mapState(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}
