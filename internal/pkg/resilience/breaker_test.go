package resilience

import (
	"testing"
	"time"
)

func TestBreakerOpensAfterFailureThreshold(t *testing.T) {
	cb := newCircuitBreaker("test", 5, 3, 30*time.Second)

	for i := 0; i < 4; i++ {
		cb.onFailure()
	}
	if cb.status().State != StateClosed {
		t.Fatalf("breaker should stay closed at 4 failures, got %s", cb.status().State)
	}

	cb.onFailure()
	if cb.status().State != StateOpen {
		t.Fatalf("breaker should open at 5 failures, got %s", cb.status().State)
	}
}

func TestBreakerFailsFastWhileOpen(t *testing.T) {
	cb := newCircuitBreaker("test", 1, 3, time.Minute)
	cb.onFailure()

	err := cb.allow()
	if err == nil {
		t.Fatal("expected circuit-open error")
	}
	if err.Kind != KindCircuitOpen {
		t.Errorf("expected KindCircuitOpen, got %s", err.Kind)
	}
	if err.RetryAfter <= 0 || err.RetryAfter > time.Minute {
		t.Errorf("RetryAfter should carry remaining wait, got %v", err.RetryAfter)
	}
}

func TestBreakerHalfOpenAfterCoolDown(t *testing.T) {
	cb := newCircuitBreaker("test", 1, 3, 10*time.Millisecond)
	cb.onFailure()

	time.Sleep(20 * time.Millisecond)

	if err := cb.allow(); err != nil {
		t.Fatalf("call after cool-down should proceed, got %v", err)
	}
	if cb.status().State != StateHalfOpen {
		t.Errorf("expected HALF_OPEN, got %s", cb.status().State)
	}
}

func TestBreakerClosesAfterSuccessThreshold(t *testing.T) {
	cb := newCircuitBreaker("test", 1, 3, 10*time.Millisecond)
	cb.onFailure()
	time.Sleep(20 * time.Millisecond)
	if err := cb.allow(); err != nil {
		t.Fatal(err)
	}

	cb.onSuccess()
	cb.onSuccess()
	if cb.status().State != StateHalfOpen {
		t.Fatalf("2 successes should not close, got %s", cb.status().State)
	}

	cb.onSuccess()
	if cb.status().State != StateClosed {
		t.Fatalf("3 successes should close, got %s", cb.status().State)
	}
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	cb := newCircuitBreaker("test", 1, 3, 10*time.Millisecond)
	cb.onFailure()
	time.Sleep(20 * time.Millisecond)
	if err := cb.allow(); err != nil {
		t.Fatal(err)
	}

	cb.onFailure()
	if cb.status().State != StateOpen {
		t.Fatalf("half-open failure should reopen, got %s", cb.status().State)
	}
}

func TestBreakerSuccessResetsClosedFailureCount(t *testing.T) {
	cb := newCircuitBreaker("test", 3, 3, time.Minute)
	cb.onFailure()
	cb.onFailure()
	cb.onSuccess()
	cb.onFailure()
	cb.onFailure()

	if cb.status().State != StateClosed {
		t.Errorf("non-consecutive failures should not open, got %s", cb.status().State)
	}
}

func TestBreakerManualReset(t *testing.T) {
	cb := newCircuitBreaker("test", 1, 3, time.Hour)
	cb.onFailure()
	if cb.status().State != StateOpen {
		t.Fatal("setup: breaker should be open")
	}

	cb.reset()
	st := cb.status()
	if st.State != StateClosed || st.ConsecutiveFailures != 0 {
		t.Errorf("reset should close and clear counters, got %+v", st)
	}
}
