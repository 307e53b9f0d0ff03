package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("broker down")

func testConfig() Config {
	return Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             20 * time.Millisecond,
		HalfOpenMaxRequests: 3,
	}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errDown })
		assert.ErrorIs(t, err, errDown)
	}

	calls := 0
	err := cb.Execute(func() error { calls++; return nil })
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.Equal(t, 0, calls, "open breaker must not invoke the function")
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errDown })
	}
	require.ErrorIs(t, cb.Execute(func() error { return nil }), ErrCircuitBreakerOpen)

	time.Sleep(25 * time.Millisecond)

	// Probes succeed, breaker closes again.
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errDown })
	}
	time.Sleep(25 * time.Millisecond)

	require.ErrorIs(t, cb.Execute(func() error { return errDown }), errDown)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := New(testConfig())

	cb.Execute(func() error { return errDown })
	cb.Execute(func() error { return errDown })
	require.NoError(t, cb.Execute(func() error { return nil }))

	// The streak was broken, so two more failures do not open it.
	cb.Execute(func() error { return errDown })
	cb.Execute(func() error { return errDown })
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
}
