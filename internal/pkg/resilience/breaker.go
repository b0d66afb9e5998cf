package resilience

import (
	"log/slog"
	"sync"
	"time"
)

// BreakerState represents the current state of the circuit breaker
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// BreakerStatus is a read-only snapshot for monitoring.
type BreakerStatus struct {
	State                BreakerState
	ConsecutiveFailures  int
	ConsecutiveSuccesses int
	LastFailure          time.Time
	RemainingWait        time.Duration
}

// circuitBreaker guards one provider. State is owned by its client and
// mutex-protected, so overlapping sync runs cannot race the counters.
//
// No single-flight control in HALF_OPEN: any probe call may flip the state.
type circuitBreaker struct {
	mu sync.Mutex

	name             string
	failureThreshold int
	successThreshold int
	openDuration     time.Duration

	state       BreakerState
	failures    int
	successes   int // meaningful only in half-open
	lastFailure time.Time
}

func newCircuitBreaker(name string, failureThreshold, successThreshold int, openDuration time.Duration) *circuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if successThreshold <= 0 {
		successThreshold = 3
	}
	if openDuration <= 0 {
		openDuration = 30 * time.Second
	}
	return &circuitBreaker{
		name:             name,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		openDuration:     openDuration,
		state:            StateClosed,
	}
}

// allow returns nil when a call may proceed. In OPEN it fails fast with the
// remaining cool-down; once the cool-down elapses it transitions to HALF_OPEN.
func (cb *circuitBreaker) allow() *Error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateOpen {
		return nil
	}

	elapsed := time.Since(cb.lastFailure)
	if elapsed < cb.openDuration {
		return &Error{
			Kind:       KindCircuitOpen,
			Provider:   cb.name,
			RetryAfter: cb.openDuration - elapsed,
			Msg:        "circuit open, failing fast",
		}
	}

	cb.setState(StateHalfOpen)
	cb.successes = 0
	return nil
}

// onSuccess records a successful call (after retries, i.e. one logical request).
func (cb *circuitBreaker) onSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.successThreshold {
			cb.setState(StateClosed)
			cb.failures = 0
		}
	default:
		cb.failures = 0
	}
}

// onFailure records a terminal failure (retries exhausted).
func (cb *circuitBreaker) onFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.successes = 0
	cb.lastFailure = time.Now()

	switch cb.state {
	case StateHalfOpen:
		cb.setState(StateOpen)
	case StateClosed:
		if cb.failures >= cb.failureThreshold {
			cb.setState(StateOpen)
		}
	}
}

// reset forces the breaker back to CLOSED for manual recovery.
func (cb *circuitBreaker) reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.setState(StateClosed)
	cb.failures = 0
	cb.successes = 0
}

func (cb *circuitBreaker) setState(state BreakerState) {
	if cb.state != state {
		slog.Info("Circuit breaker state changed",
			"provider", cb.name, "from", cb.state.String(), "to", state.String())
		cb.state = state
	}
}

func (cb *circuitBreaker) status() BreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	st := BreakerStatus{
		State:                cb.state,
		ConsecutiveFailures:  cb.failures,
		ConsecutiveSuccesses: cb.successes,
		LastFailure:          cb.lastFailure,
	}
	if cb.state == StateOpen {
		if remaining := cb.openDuration - time.Since(cb.lastFailure); remaining > 0 {
			st.RemainingWait = remaining
		}
	}
	return st
}
