package goLoad

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricRunActivated counts runs that passed admission and dispatch.
	MetricRunActivated MetricID = iota
	// MetricRunUnauthorized counts run requests from unknown identities.
	MetricRunUnauthorized
	// MetricRunExpired counts run requests from expired principals.
	MetricRunExpired
	// MetricRunDurationLimited counts run requests over the duration cap.
	MetricRunDurationLimited
	// MetricRunConcurrencyLimited counts run requests at the session cap.
	MetricRunConcurrencyLimited
	// MetricRunMethodUnknown counts run requests naming unknown methods.
	MetricRunMethodUnknown
	// MetricRunValidationFailed counts malformed run requests.
	MetricRunValidationFailed
	// MetricDispatchFailure counts fan-outs with at least one failed
	// endpoint call.
	MetricDispatchFailure
	// MetricSessionCompleted counts sessions removed by natural expiry.
	MetricSessionCompleted
	// MetricSessionCancelled counts sessions removed by explicit stop.
	MetricSessionCancelled
	// MetricPrincipalUpserted counts administrative record writes.
	MetricPrincipalUpserted
	// MetricPrincipalRemoved counts administrative record deletions.
	MetricPrincipalRemoved
	// MetricPersistFailure counts principal saves that failed after the
	// in-memory mutation was applied.
	MetricPersistFailure

	metricIDCount
)

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

type paddedCounter struct {
	value uint64
	_     [56]byte
}

// Metrics is the engine's fixed set of atomic counters. Disabled metrics
// make Inc a no-op and Snapshot empty.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

func newMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counting is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter into a map keyed by MetricID.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
