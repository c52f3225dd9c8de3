package monitoring

import (
	"sync/atomic"
	"time"
)

// Metrics holds the service's request counters. All fields are updated
// atomically and safe for concurrent use.
type Metrics struct {
	RequestCount  atomic.Int64
	ErrorCount    atomic.Int64
	CacheHits     atomic.Int64
	CacheMisses   atomic.Int64
	GitHubCalls   atomic.Int64
	AnalysisCalls atomic.Int64

	totalDuration atomic.Int64 // nanoseconds
	startTime     time.Time
}

// NewMetrics creates a metrics instance anchored at the current time.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordRequest accounts one finished request.
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.RequestCount.Add(1)
	m.totalDuration.Add(int64(duration))
	if failed {
		m.ErrorCount.Add(1)
	}
}

// AverageResponseTime returns the mean request duration so far.
func (m *Metrics) AverageResponseTime() time.Duration {
	count := m.RequestCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(m.totalDuration.Load() / count)
}

// Uptime returns how long the service has been running.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Snapshot returns the counters as a flat map for the health endpoint.
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"requests":        m.RequestCount.Load(),
		"errors":          m.ErrorCount.Load(),
		"cache_hits":      m.CacheHits.Load(),
		"cache_misses":    m.CacheMisses.Load(),
		"github_calls":    m.GitHubCalls.Load(),
		"analysis_calls":  m.AnalysisCalls.Load(),
		"avg_response_ms": m.AverageResponseTime().Milliseconds(),
		"uptime_seconds":  int64(m.Uptime().Seconds()),
	}
}
