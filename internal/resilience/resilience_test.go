package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerTrips(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", MaxFailures: 2, OpenDuration: time.Hour})
	boom := errors.New("boom")
	fail := func(context.Context) error { return boom }

	assert.ErrorIs(t, cb.Execute(context.Background(), fail), boom)
	assert.ErrorIs(t, cb.Execute(context.Background(), fail), boom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreakerIgnoresCancellation(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "cancel", MaxFailures: 1})
	err := cb.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerTimeout(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "slow", Timeout: 10 * time.Millisecond})
	err := cb.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWithRetry(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := WithRetry(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("flaky")
		}
		return nil
	}, RetryConfig{Attempts: 3, Delay: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryStopsOnPermanent(t *testing.T) {
	t.Parallel()

	attempts := 0
	boom := errors.New("404")
	err := WithRetry(context.Background(), func(context.Context) error {
		attempts++
		return Permanent(boom)
	}, RetryConfig{Attempts: 5, Delay: time.Millisecond})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryStopsOnOpenCircuit(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := WithRetry(context.Background(), func(context.Context) error {
		attempts++
		return ErrCircuitOpen
	}, RetryConfig{Attempts: 5, Delay: time.Millisecond})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 1, attempts)
}

func TestCircuitStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "HALF-OPEN", StateHalfOpen.String())
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "UNKNOWN", CircuitState(9).String())
}
