package strategy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentstation/plait"
)

// BreakerState represents the state of a circuit breaker.
type BreakerState int

const (
	// StateClosed allows executions to pass through.
	StateClosed BreakerState = iota
	// StateOpen rejects executions immediately.
	StateOpen
	// StateHalfOpen allows limited executions to probe recovery.
	StateHalfOpen
)

// String returns the string representation of the breaker state.
func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker is a circuit breaker shared across every leaf invocation within
// the scopes it is attached to. Unlike Retry or Timeout it deliberately
// carries state between invocations: consecutive failures open the
// circuit, executions are rejected while it is open, and after a reset
// timeout a limited number of probes decide whether it closes again.
type Breaker struct {
	name string

	maxFailures    int
	resetTimeout   time.Duration
	halfOpenProbes int

	mu              sync.Mutex
	state           BreakerState
	failures        int
	lastFailureTime time.Time
	probeSuccesses  int

	onStateChange func(from, to BreakerState)
}

// BreakerOption configures a Breaker.
type BreakerOption func(*Breaker)

// WithMaxFailures sets the consecutive-failure threshold that opens the
// circuit.
func WithMaxFailures(n int) BreakerOption {
	return func(b *Breaker) {
		b.maxFailures = n
	}
}

// WithResetTimeout sets how long the circuit stays open before probing.
func WithResetTimeout(d time.Duration) BreakerOption {
	return func(b *Breaker) {
		b.resetTimeout = d
	}
}

// WithHalfOpenProbes sets how many successful probes close the circuit
// again.
func WithHalfOpenProbes(n int) BreakerOption {
	return func(b *Breaker) {
		b.halfOpenProbes = n
	}
}

// WithStateChange sets a callback invoked on state transitions.
func WithStateChange(fn func(from, to BreakerState)) BreakerOption {
	return func(b *Breaker) {
		b.onStateChange = fn
	}
}

// NewBreaker creates a circuit breaker.
func NewBreaker(name string, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		name:           name,
		maxFailures:    5,
		resetTimeout:   30 * time.Second,
		halfOpenProbes: 3,
		state:          StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the breaker's current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Strategy exposes the breaker as a plait strategy. The same *Breaker
// may guard several scopes; they then share one circuit.
func (b *Breaker) Strategy() plait.Strategy {
	return func(ctx context.Context, pending *plait.Promise, leaf *plait.Leaf) *plait.Promise {
		return plait.Then(ctx, pending, func(ctx context.Context, input any) (any, error) {
			if err := b.allow(); err != nil {
				return nil, err
			}
			out, err := leaf.Transform(ctx, input)
			b.record(err == nil)
			return out, err
		})
	}
}

// allow checks whether the circuit admits an execution.
func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return nil
	case StateOpen:
		if time.Since(b.lastFailureTime) > b.resetTimeout {
			b.transition(StateHalfOpen)
			return nil
		}
		return fmt.Errorf("circuit breaker %q is open", b.name)
	default:
		return fmt.Errorf("circuit breaker %q in unknown state", b.name)
	}
}

// record updates the circuit with one execution outcome.
func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		b.lastFailureTime = time.Now()
		if b.failures >= b.maxFailures {
			b.transition(StateOpen)
		}

	case StateHalfOpen:
		if !success {
			b.lastFailureTime = time.Now()
			b.transition(StateOpen)
			return
		}
		b.probeSuccesses++
		if b.probeSuccesses >= b.halfOpenProbes {
			b.transition(StateClosed)
		}
	}
}

// transition moves the breaker to a new state. Caller holds b.mu.
func (b *Breaker) transition(to BreakerState) {
	from := b.state
	if from == to {
		return
	}
	b.state = to

	switch to {
	case StateClosed:
		b.failures = 0
		b.probeSuccesses = 0
	case StateHalfOpen:
		b.probeSuccesses = 0
	}

	if b.onStateChange != nil {
		b.onStateChange(from, to)
	}
}
