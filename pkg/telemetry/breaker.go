package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-flightcore/pkg/logging"
)

// BreakerSettings configures the circuit breaker around a remote recorder.
type BreakerSettings struct {
	// MaxConsecutiveFailures trips the breaker.
	MaxConsecutiveFailures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// HalfOpenRequests is the number of trial requests allowed while half-open.
	HalfOpenRequests uint32
}

// DefaultBreakerSettings returns the settings used for remote backends.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxConsecutiveFailures: 5,
		Timeout:                30 * time.Second,
		HalfOpenRequests:       1,
	}
}

// BreakerRecorder wraps a recorder with a circuit breaker. While the
// breaker is open, batches are dropped immediately instead of waiting on an
// unreachable backend every tick.
type BreakerRecorder struct {
	next    Recorder
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
	dropped uint64
}

// NewBreakerRecorder wraps next. A nil logger discards state changes.
func NewBreakerRecorder(name string, next Recorder, settings BreakerSettings, logger *logging.Logger) *BreakerRecorder {
	if logger == nil {
		logger = logging.Discard()
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.HalfOpenRequests,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "telemetry circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return &BreakerRecorder{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(st),
		logger:  logger,
	}
}

// Record forwards samples unless the breaker is open.
func (b *BreakerRecorder) Record(ctx context.Context, samples []Sample) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.next.Record(ctx, samples)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			b.dropped += uint64(len(samples))
		}
		return fmt.Errorf("circuit breaker: %w", err)
	}
	return nil
}

// Flush forwards to the wrapped recorder through the breaker.
func (b *BreakerRecorder) Flush(ctx context.Context) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.next.Flush(ctx)
	})
	if err != nil {
		return fmt.Errorf("circuit breaker: %w", err)
	}
	return nil
}

// Close closes the wrapped recorder regardless of breaker state.
func (b *BreakerRecorder) Close() error { return b.next.Close() }

// Ping checks the wrapped recorder's backend.
func (b *BreakerRecorder) Ping(ctx context.Context) error { return Ping(ctx, b.next) }

// State returns the current state of the circuit breaker.
func (b *BreakerRecorder) State() gobreaker.State { return b.breaker.State() }

// Dropped returns the number of samples discarded while the breaker was open.
func (b *BreakerRecorder) Dropped() uint64 { return b.dropped }
