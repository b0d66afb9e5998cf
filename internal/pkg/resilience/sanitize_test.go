package resilience

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"script tag", `before<script>alert(1)</script>after`, "beforeafter"},
		{"iframe tag", `x<iframe src="a"></iframe>y`, "xy"},
		{"javascript scheme", `javascript:void(0)`, "void(0)"},
		{"case insensitive", `<SCRIPT>a</SCRIPT>ok`, "ok"},
		{"entity encoding", `Lions & Tigers`, "Lions &amp; Tigers"},
		{"plain text", `Arsenal`, "Arsenal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeString(tt.input); got != tt.expected {
				t.Errorf("SanitizeString(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeBodyRecursesNestedStructures(t *testing.T) {
	raw := `{"team":{"name":"<script>x</script>Lions","tags":["ok","javascript:evil"]},"count":3}`

	out, err := SanitizeBody("test", []byte(raw))
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Team struct {
			Name string   `json:"name"`
			Tags []string `json:"tags"`
		} `json:"team"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.Team.Name != "Lions" {
		t.Errorf("script not stripped from nested object: %q", decoded.Team.Name)
	}
	if decoded.Team.Tags[1] != "evil" {
		t.Errorf("javascript: not stripped inside array: %q", decoded.Team.Tags[1])
	}
	if decoded.Count != 3 {
		t.Errorf("non-string values must pass through, got %d", decoded.Count)
	}
}

func TestSanitizeBodyRejectsNonJSON(t *testing.T) {
	_, err := SanitizeBody("test", []byte("<html></html>"))
	if KindOf(err) != KindParse {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestDailyQuotaResetAfter24h(t *testing.T) {
	q := newDailyQuota("test", 10)
	base := time.Now()
	q.now = func() time.Time { return base }
	q.lastReset = base

	for i := 0; i < 10; i++ {
		q.increment()
	}
	if q.check() == nil {
		t.Fatal("quota should be exhausted")
	}

	q.now = func() time.Time { return base.Add(25 * time.Hour) }
	if err := q.check(); err != nil {
		t.Fatalf("quota should reset after 24h, got %v", err)
	}
	if got := q.stats().DailyCount; got != 0 {
		t.Errorf("count should reset to 0, got %d", got)
	}
}

func TestUsageStatsPercent(t *testing.T) {
	q := newDailyQuota("test", 100)
	for i := 0; i < 25; i++ {
		q.increment()
	}
	s := q.stats()
	if s.Remaining != 75 || s.PercentUsed != 25 {
		t.Errorf("unexpected stats: %+v", s)
	}
}

func TestMetricsRollingAverage(t *testing.T) {
	m := &requestMetrics{}
	for i := 0; i < latencyWindow+50; i++ {
		m.record(true, 10*time.Millisecond)
	}
	s := m.snapshot()
	if s.TotalRequests != latencyWindow+50 {
		t.Errorf("total = %d", s.TotalRequests)
	}
	if s.AvgLatency != 10*time.Millisecond {
		t.Errorf("avg latency = %v", s.AvgLatency)
	}
}
