package metrics

import (
	"sync"
	"time"
)

// TimerMetric captures timing information
type TimerMetric struct {
	Count         int64   `json:"count"`
	TotalTimeMs   int64   `json:"total_time_ms"`
	AverageTimeMs float64 `json:"average_time_ms"`
	MinTimeMs     int64   `json:"min_time_ms"`
	MaxTimeMs     int64   `json:"max_time_ms"`
}

type timerState struct {
	count       int64
	totalTimeMs int64
	minTimeMs   int64
	maxTimeMs   int64
}

// Metrics is the main in-process metrics collector
type Metrics struct {
	mu           sync.RWMutex
	counters     map[string]int64
	gauges       map[string]int64
	timers       map[string]*timerState
	healthChecks map[string]bool
	startTime    time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		counters:     make(map[string]int64),
		gauges:       make(map[string]int64),
		timers:       make(map[string]*timerState),
		healthChecks: make(map[string]bool),
		startTime:    time.Now(),
	}
}

// IncrementCounter increments a counter by one
func (m *Metrics) IncrementCounter(name string) {
	m.AddCounter(name, 1)
}

// AddCounter increments a counter by a delta
func (m *Metrics) AddCounter(name string, delta int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += delta
}

// GetCounter returns a counter's current value
func (m *Metrics) GetCounter(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// SetGauge sets a gauge to a point-in-time value
func (m *Metrics) SetGauge(name string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// RecordTimer records a duration measurement
func (m *Metrics) RecordTimer(name string, duration time.Duration) {
	ms := duration.Milliseconds()

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.timers[name]
	if !ok {
		t = &timerState{minTimeMs: ms, maxTimeMs: ms}
		m.timers[name] = t
	}
	t.count++
	t.totalTimeMs += ms
	if ms < t.minTimeMs {
		t.minTimeMs = ms
	}
	if ms > t.maxTimeMs {
		t.maxTimeMs = ms
	}
}

// SetHealth records a health check outcome
func (m *Metrics) SetHealth(name string, healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthChecks[name] = healthy
}

// GetHealthChecks returns all health check states
func (m *Metrics) GetHealthChecks() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]bool, len(m.healthChecks))
	for name, healthy := range m.healthChecks {
		out[name] = healthy
	}
	return out
}

// GetAllMetrics returns a snapshot of all metrics
func (m *Metrics) GetAllMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for name, value := range m.counters {
		counters[name] = value
	}

	gauges := make(map[string]int64, len(m.gauges))
	for name, value := range m.gauges {
		gauges[name] = value
	}

	timers := make(map[string]TimerMetric, len(m.timers))
	for name, t := range m.timers {
		metric := TimerMetric{
			Count:       t.count,
			TotalTimeMs: t.totalTimeMs,
			MinTimeMs:   t.minTimeMs,
			MaxTimeMs:   t.maxTimeMs,
		}
		if t.count > 0 {
			metric.AverageTimeMs = float64(t.totalTimeMs) / float64(t.count)
		}
		timers[name] = metric
	}

	health := make(map[string]bool, len(m.healthChecks))
	for name, healthy := range m.healthChecks {
		health[name] = healthy
	}

	return map[string]interface{}{
		"uptime_seconds": int64(time.Since(m.startTime).Seconds()),
		"counters":       counters,
		"gauges":         gauges,
		"timers":         timers,
		"health":         health,
	}
}
