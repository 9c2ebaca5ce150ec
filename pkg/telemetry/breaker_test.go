package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerRecorder_TripsOnConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	next := &failingRecorder{}
	b := NewBreakerRecorder("test", next, BreakerSettings{
		MaxConsecutiveFailures: 3,
		Timeout:                time.Hour,
		HalfOpenRequests:       1,
	}, nil)

	for i := 0; i < 3; i++ {
		err := b.Record(ctx, []Sample{testSample(uint64(i), 1)})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.Equal(t, 3, next.calls)

	err := b.Record(ctx, []Sample{testSample(4, 1), testSample(4, 2)})
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, 3, next.calls, "open breaker must not reach the backend")
	assert.Equal(t, uint64(2), b.Dropped())
}

func TestBreakerRecorder_PassesThrough(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRecorder()
	b := NewBreakerRecorder("test", m, DefaultBreakerSettings(), nil)

	require.NoError(t, b.Record(ctx, []Sample{testSample(1, 1)}))
	require.NoError(t, b.Flush(ctx))
	require.NoError(t, b.Ping(ctx))
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, 1, m.Len())

	require.NoError(t, b.Close())
	assert.True(t, errors.Is(m.Record(ctx, nil), ErrClosed))
}
