package connmon

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_FailureThresholdDebounces(t *testing.T) {
	p := &probeConfig{
		name:             "api",
		timeout:          time.Second,
		failureThreshold: 3,
		successThreshold: 1,
	}
	p.up.Store(true)

	fail := errors.New("unreachable")
	p.probe = func(context.Context) error { return fail }

	ctx := context.Background()
	p.run(ctx)
	p.run(ctx)
	assert.True(t, p.up.Load(), "two failures should not flip the probe yet")

	p.run(ctx)
	assert.False(t, p.up.Load(), "third consecutive failure flips the probe")

	// One success brings it back.
	p.probe = func(context.Context) error { return nil }
	p.run(ctx)
	assert.True(t, p.up.Load())
}

func TestProbe_SuccessResetsFailureCount(t *testing.T) {
	p := &probeConfig{
		name:             "api",
		timeout:          time.Second,
		failureThreshold: 3,
		successThreshold: 1,
	}
	p.up.Store(true)

	calls := 0
	p.probe = func(context.Context) error {
		calls++
		if calls == 3 {
			return nil // success in between resets the streak
		}
		return errors.New("unreachable")
	}

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		p.run(ctx)
	}
	assert.True(t, p.up.Load())
}

func TestMonitor_OnlineAndSnapshot(t *testing.T) {
	m := New()
	var apiUp atomic.Bool
	apiUp.Store(true)

	m.AddProbe("api", time.Second, func(context.Context) error {
		if apiUp.Load() {
			return nil
		}
		return errors.New("connection refused")
	})
	m.AddProbe("push", time.Second, func(context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx, 5*time.Millisecond)
	defer m.Stop()

	assert.True(t, m.Online())

	apiUp.Store(false)
	require.Eventually(t, func() bool { return !m.Online() }, 2*time.Second, 5*time.Millisecond)

	var api Status
	for _, s := range m.Snapshot() {
		if s.Name == "api" {
			api = s
		}
	}
	assert.False(t, api.Up)
	require.Error(t, api.Err)
	assert.Contains(t, api.Err.Error(), "connection refused")
}
