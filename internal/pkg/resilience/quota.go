package resilience

import (
	"fmt"
	"sync"
	"time"
)

// UsageStats is the quota snapshot exposed for monitoring and for the
// priority-sync early-stop decision.
type UsageStats struct {
	DailyCount  int       `json:"daily_count"`
	DailyLimit  int       `json:"daily_limit"`
	Remaining   int       `json:"remaining"`
	PercentUsed float64   `json:"percent_used"`
	LastReset   time.Time `json:"last_reset"`
}

// dailyQuota tracks requests against a provider's daily cap.
// The counter resets once 24h elapse since the last reset, not at midnight;
// that matches how the upstream plans meter usage.
type dailyQuota struct {
	mu        sync.Mutex
	name      string
	limit     int // 0 means unlimited
	count     int
	lastReset time.Time

	now func() time.Time // injectable for tests
}

func newDailyQuota(name string, limit int) *dailyQuota {
	return &dailyQuota{
		name:      name,
		limit:     limit,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

func (q *dailyQuota) maybeReset() {
	if q.now().Sub(q.lastReset) >= 24*time.Hour {
		q.count = 0
		q.lastReset = q.now()
	}
}

// check fails with KindQuotaExhausted when the cap is already met.
// No network call and no retry follow a quota error.
func (q *dailyQuota) check() *Error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.maybeReset()
	if q.limit > 0 && q.count >= q.limit {
		return &Error{
			Kind:     KindQuotaExhausted,
			Provider: q.name,
			Msg:      fmt.Sprintf("daily quota exhausted (%d/%d)", q.count, q.limit),
		}
	}
	return nil
}

// increment counts one issued HTTP request (each retry attempt counts).
func (q *dailyQuota) increment() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.maybeReset()
	q.count++
}

func (q *dailyQuota) stats() UsageStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.maybeReset()
	s := UsageStats{
		DailyCount: q.count,
		DailyLimit: q.limit,
		LastReset:  q.lastReset,
	}
	if q.limit > 0 {
		s.Remaining = q.limit - q.count
		if s.Remaining < 0 {
			s.Remaining = 0
		}
		s.PercentUsed = float64(q.count) / float64(q.limit) * 100
	} else {
		s.Remaining = -1 // unlimited
	}
	return s
}
