// Package connectivity tracks the reachability of the POS API with a
// polling state machine.
package connectivity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the connectivity indicator shown to the operator.
type State int

const (
	Unknown State = iota
	Ok
	Degraded
	Offline
)

func (s State) String() string {
	switch s {
	case Ok:
		return "ok"
	case Degraded:
		return "degraded"
	case Offline:
		return "offline"
	default:
		return "unknown"
	}
}

// ProbeKind tags the outcome of a single health probe.
type ProbeKind int

const (
	ProbeSuccess ProbeKind = iota
	ProbeHTTPError
	ProbeTimeout
	ProbeNetworkError
)

// ProbeResult is one health probe outcome. Status is the reported health
// status for ProbeSuccess, HTTPStatus the response code for ProbeHTTPError.
type ProbeResult struct {
	Kind       ProbeKind
	HTTPStatus int
	Status     string
	Err        error
}

// Next maps a probe result to the state it leads to.
func Next(r ProbeResult) State {
	switch r.Kind {
	case ProbeSuccess:
		if r.Status == "ok" {
			return Ok
		}
		return Degraded
	case ProbeHTTPError:
		if r.HTTPStatus >= 500 {
			return Offline
		}
		return Degraded
	default:
		return Offline
	}
}

// Prober performs one health probe. It should return promptly once ctx is
// done; results arriving after the deadline count as a timeout.
type Prober interface {
	Probe(ctx context.Context) ProbeResult
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) ProbeResult

func (f ProberFunc) Probe(ctx context.Context) ProbeResult {
	return f(ctx)
}

const (
	DefaultInterval = 5 * time.Second
	DefaultTimeout  = 3 * time.Second
)

type Options struct {
	Interval time.Duration
	Timeout  time.Duration
	// OnChange is called from the monitor goroutine after every state
	// change. It must not call Stop.
	OnChange func(from, to State)
	Logger   *zap.Logger
}

// Monitor probes on start, on every interval tick and on Focus. Probes
// never overlap.
type Monitor struct {
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	onChange func(from, to State)
	logger   *zap.Logger

	mu     sync.Mutex
	state  State
	active bool
	cancel context.CancelFunc
	focus  chan struct{}
	done   chan struct{}
}

func NewMonitor(p Prober, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Monitor{
		prober:   p,
		interval: opts.Interval,
		timeout:  opts.Timeout,
		onChange: opts.OnChange,
		logger:   opts.Logger,
	}
}

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start begins monitoring with an immediate probe. Calling Start on a
// running monitor does nothing.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.focus = make(chan struct{}, 1)
	m.done = make(chan struct{})
	m.active = true
	go m.run(ctx, m.focus, m.done)
}

// Focus requests an extra probe. Requests made while a probe is pending
// collapse into one. It does nothing when the monitor is stopped.
func (m *Monitor) Focus() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return
	}
	select {
	case m.focus <- struct{}{}:
	default:
	}
}

// Stop cancels any in-flight probe and waits for the monitor goroutine to
// exit. No state change or OnChange call happens once Stop returns.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	m.cancel()
	done := m.done
	m.cancel, m.focus, m.done = nil, nil, nil
	m.mu.Unlock()

	<-done
}

func (m *Monitor) run(ctx context.Context, focus <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		case <-focus:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	ch := make(chan ProbeResult, 1)
	go func() {
		ch <- m.prober.Probe(pctx)
	}()

	var res ProbeResult
	select {
	case res = <-ch:
		if pctx.Err() != nil {
			res = ProbeResult{Kind: ProbeTimeout, Err: pctx.Err()}
		}
	case <-pctx.Done():
		res = ProbeResult{Kind: ProbeTimeout, Err: pctx.Err()}
	}

	from, to, changed := m.apply(ctx, Next(res))
	if !changed {
		return
	}
	m.logger.Info("connectivity changed",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Error(res.Err),
	)
	if m.onChange != nil {
		m.onChange(from, to)
	}
}

// apply records next unless ctx was cancelled by Stop, which happens
// under the same lock.
func (m *Monitor) apply(ctx context.Context, next State) (State, State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ctx.Err() != nil || m.state == next {
		return m.state, m.state, false
	}
	from := m.state
	m.state = next
	return from, next, true
}
