package resilience

import (
	"sync"
	"time"
)

const latencyWindow = 100

// Metrics is a snapshot of per-client request statistics.
type Metrics struct {
	TotalRequests  int64         `json:"total_requests"`
	TotalSuccesses int64         `json:"total_successes"`
	TotalFailures  int64         `json:"total_failures"`
	AvgLatency     time.Duration `json:"avg_latency"`
}

// requestMetrics accumulates attempt outcomes with a rolling latency window
// over the last 100 samples.
type requestMetrics struct {
	mu sync.Mutex

	total     int64
	successes int64
	failures  int64

	latencies [latencyWindow]time.Duration
	idx       int
	filled    int
}

func (m *requestMetrics) record(success bool, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	if success {
		m.successes++
	} else {
		m.failures++
	}

	m.latencies[m.idx] = latency
	m.idx = (m.idx + 1) % latencyWindow
	if m.filled < latencyWindow {
		m.filled++
	}
}

func (m *requestMetrics) snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Metrics{
		TotalRequests:  m.total,
		TotalSuccesses: m.successes,
		TotalFailures:  m.failures,
	}
	if m.filled > 0 {
		var sum time.Duration
		for i := 0; i < m.filled; i++ {
			sum += m.latencies[i]
		}
		s.AvgLatency = sum / time.Duration(m.filled)
	}
	return s
}
