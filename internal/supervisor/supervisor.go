// Package supervisor runs the periodic idle-shutdown loop: probe the
// backend's player count, extend the idle deadline while players are
// online, and stop the backend once the deadline has elapsed.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"slumber/internal/backend"
	"slumber/internal/slp"
)

const (
	probePeriod  = 5 * time.Second
	idleDuration = 30 * time.Minute
)

// metricsSink is the subset of telemetry.MetricsCollector the supervisor
// needs; kept as a small interface so this package doesn't import telemetry.
type metricsSink interface {
	RecordProbe(at time.Time, ok bool, online int)
	IncBackendStops()
}

// Supervisor owns the idle deadline and drives the probe loop described in
// spec.md §4.4, against a backend.Guarded shared with the dispatcher.
type Supervisor struct {
	guard    *backend.Guarded
	logger   *slog.Logger
	metrics  metricsSink
	deadline time.Time

	probePeriod     time.Duration
	idleDuration    time.Duration
	protocolVersion int32
}

// Option customizes probe cadence and idle duration; tests use these to
// avoid waiting on the production defaults.
type Option func(*Supervisor)

func WithProbePeriod(d time.Duration) Option  { return func(s *Supervisor) { s.probePeriod = d } }
func WithIdleDuration(d time.Duration) Option { return func(s *Supervisor) { s.idleDuration = d } }
func WithMetrics(m metricsSink) Option        { return func(s *Supervisor) { s.metrics = m } }

// WithProtocolVersion overrides the handshake protocol_version the probe
// ping advertises, matching the dispatcher's config-driven value.
func WithProtocolVersion(v int32) Option {
	return func(s *Supervisor) { s.protocolVersion = v }
}

func New(guard *backend.Guarded, logger *slog.Logger, opts ...Option) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Supervisor{
		guard:        guard,
		logger:       logger,
		probePeriod:  probePeriod,
		idleDuration: idleDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.deadline = time.Now().Add(s.idleDuration)
	return s
}

// Run loops until ctx is canceled. It never holds the guard across the
// sleep between ticks, per spec.md §4.4's ordering contract.
func (s *Supervisor) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.probePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Supervisor) tick(ctx context.Context) {
	if shouldStop := s.probe(ctx); shouldStop {
		if err := s.guard.Stop(ctx); err != nil {
			s.logger.Warn("failed to stop idle backend", "error", err)
			return
		}
		if s.metrics != nil {
			s.metrics.IncBackendStops()
		}
	}
}

// probe reports whether the backend should be stopped: it is reachable and
// reported zero online players (or was unreachable), and the idle deadline
// has elapsed. A successful probe with players online always extends the
// deadline and never triggers a stop.
func (s *Supervisor) probe(ctx context.Context) bool {
	host, ok := s.guard.Addr()
	if ok {
		var pingOpts []slp.Option
		if s.protocolVersion != 0 {
			pingOpts = append(pingOpts, slp.WithProtocolVersion(s.protocolVersion))
		}
		s.guard.Lock()
		status, err := slp.Ping(ctx, host.Host, host.Addr, pingOpts...)
		s.guard.Unlock()
		switch {
		case err == nil && status.Players.Online > 0:
			s.logger.Info("players online", "count", status.Players.Online)
			s.deadline = time.Now().Add(s.idleDuration)
			if s.metrics != nil {
				s.metrics.RecordProbe(time.Now(), true, int(status.Players.Online))
			}
			return false
		case err == nil:
			s.logger.Info("no players online")
			if s.metrics != nil {
				s.metrics.RecordProbe(time.Now(), true, 0)
			}
		default:
			s.logger.Debug("health check probe failed", "error", err)
			if s.metrics != nil {
				s.metrics.RecordProbe(time.Now(), false, 0)
			}
		}
	}

	return !time.Now().Before(s.deadline)
}
