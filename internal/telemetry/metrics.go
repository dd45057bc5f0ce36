package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector tracks connection and backend-lifecycle counters for the
// admin server's /metrics endpoint, adapted from the teacher's route-hit
// counters to slumber's single-backend domain: backend starts/stops instead
// of per-route hit counts, plus the last probe outcome the supervisor
// observed.
type MetricsCollector struct {
	activeConnections atomic.Int64
	totalConnections  atomic.Int64
	bytesIngress      atomic.Int64
	bytesEgress       atomic.Int64

	backendStarts atomic.Int64
	backendStops  atomic.Int64

	probeMu       sync.Mutex
	lastProbeAt   time.Time
	lastProbeOK   bool
	lastProbeOnline int
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

func (m *MetricsCollector) IncActive() {
	m.activeConnections.Add(1)
	m.totalConnections.Add(1)
}

func (m *MetricsCollector) DecActive() {
	m.activeConnections.Add(-1)
}

func (m *MetricsCollector) AddIngress(n int64) {
	m.bytesIngress.Add(n)
}

func (m *MetricsCollector) AddEgress(n int64) {
	m.bytesEgress.Add(n)
}

func (m *MetricsCollector) IncBackendStarts() {
	m.backendStarts.Add(1)
}

func (m *MetricsCollector) IncBackendStops() {
	m.backendStops.Add(1)
}

// RecordProbe records the outcome of the most recent supervisor health
// check: whether it succeeded and, if so, the reported online player count.
func (m *MetricsCollector) RecordProbe(at time.Time, ok bool, online int) {
	m.probeMu.Lock()
	defer m.probeMu.Unlock()
	m.lastProbeAt = at
	m.lastProbeOK = ok
	m.lastProbeOnline = online
}

type MetricsSnapshot struct {
	ActiveConnections int64     `json:"active_connections"`
	TotalConnections  int64     `json:"total_connections_handled"`
	BytesIngress      int64     `json:"bytes_ingress"`
	BytesEgress       int64     `json:"bytes_egress"`
	BackendStarts     int64     `json:"backend_starts"`
	BackendStops      int64     `json:"backend_stops"`
	LastProbeAt       time.Time `json:"last_probe_at,omitempty"`
	LastProbeOK       bool      `json:"last_probe_ok"`
	LastProbeOnline   int       `json:"last_probe_online"`
}

func (m *MetricsCollector) Snapshot() MetricsSnapshot {
	m.probeMu.Lock()
	at, ok, online := m.lastProbeAt, m.lastProbeOK, m.lastProbeOnline
	m.probeMu.Unlock()

	return MetricsSnapshot{
		ActiveConnections: m.activeConnections.Load(),
		TotalConnections:  m.totalConnections.Load(),
		BytesIngress:      m.bytesIngress.Load(),
		BytesEgress:       m.bytesEgress.Load(),
		BackendStarts:     m.backendStarts.Load(),
		BackendStops:      m.backendStops.Load(),
		LastProbeAt:       at,
		LastProbeOK:       ok,
		LastProbeOnline:   online,
	}
}
