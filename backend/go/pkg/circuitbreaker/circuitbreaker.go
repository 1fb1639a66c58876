package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the state of the circuit breaker.
type State int

const (
	// Closed lets every request through.
	Closed State = iota
	// Open rejects every request until the timeout elapses.
	Open
	// HalfOpen lets trial requests through to test recovery.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "Half-Open"
	default:
		return "Unknown"
	}
}

// ErrCircuitOpen is returned when the circuit breaker is in the Open state.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker is the interface for the circuit breaker pattern.
type CircuitBreaker interface {
	// Execute runs req unless the circuit is open.
	Execute(req func() (interface{}, error)) (interface{}, error)
	State() State
}

// Option customizes a breaker.
type Option func(*breaker)

// WithStateChange registers a callback invoked after every transition.
// It runs with the breaker lock held and must not call back into the breaker.
func WithStateChange(fn func(from, to State)) Option {
	return func(b *breaker) { b.onStateChange = fn }
}

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(b *breaker) { b.now = now }
}

type breaker struct {
	failureThreshold     uint32
	successThreshold     uint32
	timeout              time.Duration
	consecutiveSuccesses uint32
	consecutiveFailures  uint32
	openedAt             time.Time
	state                State
	now                  func() time.Time
	onStateChange        func(from, to State)
	mutex                sync.Mutex
}

// New creates a breaker that opens after failureThreshold consecutive failures,
// stays open for timeout and closes again after successThreshold consecutive
// successes in the half-open state.
func New(failureThreshold, successThreshold uint32, timeout time.Duration, opts ...Option) CircuitBreaker {
	b := &breaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
		state:            Closed,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *breaker) State() State {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.refresh()
	return b.state
}

func (b *breaker) Execute(req func() (interface{}, error)) (interface{}, error) {
	b.mutex.Lock()
	b.refresh()
	if b.state == Open {
		b.mutex.Unlock()
		return nil, ErrCircuitOpen
	}
	b.mutex.Unlock()

	res, err := req()
	if err != nil {
		b.onFailure()
		return nil, err
	}
	b.onSuccess()
	return res, nil
}

// refresh moves Open to HalfOpen once the timeout has elapsed. Caller holds the lock.
func (b *breaker) refresh() {
	if b.state == Open && b.now().Sub(b.openedAt) > b.timeout {
		b.setState(HalfOpen)
		b.consecutiveSuccesses = 0
	}
}

func (b *breaker) onSuccess() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	switch b.state {
	case HalfOpen:
		b.consecutiveSuccesses++
		if b.consecutiveSuccesses >= b.successThreshold {
			b.setState(Closed)
			b.consecutiveFailures = 0
			b.consecutiveSuccesses = 0
		}
	case Closed:
		b.consecutiveFailures = 0
	}
}

func (b *breaker) onFailure() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	switch b.state {
	case HalfOpen:
		b.trip()
	case Closed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.failureThreshold {
			b.trip()
		}
	}
}

func (b *breaker) trip() {
	b.setState(Open)
	b.openedAt = b.now()
	b.consecutiveFailures = 0
	b.consecutiveSuccesses = 0
}

func (b *breaker) setState(to State) {
	from := b.state
	b.state = to
	if from != to && b.onStateChange != nil {
		b.onStateChange(from, to)
	}
}
