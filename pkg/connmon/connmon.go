// Package connmon tracks the reachability of the client's upstream
// dependencies (the REST API, the push channel).
//
// Each registered probe runs in its own background goroutine at a
// configurable interval. Probes use failure/success thresholds to avoid
// flapping: a probe must fail consecutively failureThreshold times before
// its target is reported down, and succeed successThreshold times before it
// is reported up again.
package connmon

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// ProbeFunc checks one upstream dependency. It should return nil when the
// dependency is reachable, or an error describing the problem.
type ProbeFunc func(ctx context.Context) error

// probeConfig holds the configuration and runtime state for a single probe.
//
// Concurrency model: run() is called from exactly one goroutine (the ticker).
// The counters are only accessed by run(), so they need no synchronization.
// The up flag and lastErr are read by Snapshot from arbitrary goroutines, so
// they use atomic operations.
type probeConfig struct {
	name             string
	timeout          time.Duration
	probe            ProbeFunc
	failureThreshold int
	successThreshold int

	up      atomic.Bool
	lastErr atomic.Pointer[error]

	consecutiveFails int
	consecutiveOK    int
}

// run executes the probe once and updates thresholds accordingly.
// Must be called from a single goroutine.
func (p *probeConfig) run(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.probe(probeCtx)
	p.lastErr.Store(&err)

	if err != nil {
		p.consecutiveOK = 0
		p.consecutiveFails++
		if p.consecutiveFails >= p.failureThreshold {
			p.up.Store(false)
		}
	} else {
		p.consecutiveFails = 0
		p.consecutiveOK++
		if p.consecutiveOK >= p.successThreshold {
			p.up.Store(true)
		}
	}
}

// Status describes one probed dependency at a point in time.
type Status struct {
	Name string
	Up   bool
	Err  error
}

// Monitor manages connectivity probes for the client.
type Monitor struct {
	// mu protects the probe slice and cancel. Only held during registration
	// (before Start) and in Start/Stop.
	mu     sync.RWMutex
	probes []*probeConfig
	cancel context.CancelFunc
}

// New creates an empty Monitor.
func New() *Monitor {
	return &Monitor{}
}

// AddProbe registers a connectivity probe.
func (m *Monitor) AddProbe(name string, timeout time.Duration, probe ProbeFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := &probeConfig{
		name:             name,
		timeout:          timeout,
		probe:            probe,
		failureThreshold: 3,
		successThreshold: 1,
	}
	p.up.Store(true) // assume reachable until proven otherwise
	m.probes = append(m.probes, p)
}

// Start begins running all registered probes in background goroutines at the
// given interval. Typically called once after all probes are registered.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.cancel = cancel
	probes := make([]*probeConfig, len(m.probes))
	copy(probes, m.probes)
	m.mu.Unlock()

	for _, p := range probes {
		go runProbe(ctx, p, interval)
	}
}

// runProbe periodically executes a single probe until the context is cancelled.
func runProbe(ctx context.Context, p *probeConfig, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start.
	p.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

// Online reports whether every probed dependency is currently reachable.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	probes := m.probes
	m.mu.RUnlock()

	for _, p := range probes {
		if !p.up.Load() {
			return false
		}
	}
	return true
}

// Snapshot returns the current state of every probe.
func (m *Monitor) Snapshot() []Status {
	m.mu.RLock()
	probes := make([]*probeConfig, len(m.probes))
	copy(probes, m.probes)
	m.mu.RUnlock()

	out := make([]Status, len(probes))
	for i, p := range probes {
		s := Status{Name: p.name, Up: p.up.Load()}
		if ptr := p.lastErr.Load(); ptr != nil {
			s.Err = *ptr
		}
		out[i] = s
	}
	return out
}

// Stop cancels all background probe goroutines. Safe to call multiple times.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}
