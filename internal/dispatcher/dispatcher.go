// Package dispatcher accepts inbound game-client connections, ensures the
// backend is live per spec.md §4.5, and relays bytes to it.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"slumber/internal/backend"
	"slumber/internal/netutil"
	"slumber/internal/slp"
)

// ensureLiveKey is the sole singleflight key: there is only ever one
// backend, so every caller coalesces onto the same in-flight operation.
const ensureLiveKey = "backend"

// connMetrics is the subset of telemetry.MetricsCollector the dispatcher
// needs, kept as a narrow interface so this package doesn't import telemetry.
type connMetrics interface {
	IncActive()
	DecActive()
	AddIngress(n int64)
	AddEgress(n int64)
	IncBackendStarts()
}

type Options struct {
	ListenAddr      string
	ConnectTimeout  time.Duration
	RetryInterval   time.Duration
	ProtocolVersion int32

	Metrics connMetrics
	Logger  *slog.Logger
}

// Dispatcher is the TCP front door described in spec.md §4.5: bind, accept,
// ensure the shared backend is live, then relay bytes until either side
// closes. Grounded on the teacher's internal/server.TCPServer ListenAndServe
// / Shutdown shape.
type Dispatcher struct {
	guard  *backend.Guarded
	opts   Options
	bridge *Bridge
	sf     singleflight.Group

	ln        net.Listener
	listening atomic.Bool
	wg        sync.WaitGroup
}

func New(guard *backend.Guarded, opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}

	var bridgeMetrics BridgeMetrics
	if opts.Metrics != nil {
		bridgeMetrics = opts.Metrics
	}

	return &Dispatcher{
		guard: guard,
		opts:  opts,
		bridge: NewBridge(BridgeOptions{
			BufferPool: NewSyncPoolBufferPool(32 * 1024),
			Metrics:    bridgeMetrics,
		}),
	}
}

func (d *Dispatcher) IsListening() bool { return d.listening.Load() }

// ListenAndServe binds opts.ListenAddr and accepts connections until ctx is
// canceled or the listener is closed via Shutdown.
func (d *Dispatcher) ListenAndServe(ctx context.Context) error {
	ln, err := netutil.ListenConfig().Listen(ctx, "tcp", d.opts.ListenAddr)
	if err != nil {
		d.opts.Logger.Error("dispatcher: listen failed", "addr", d.opts.ListenAddr, "error", err)
		return err
	}
	d.ln = ln
	d.listening.Store(true)
	defer d.listening.Store(false)
	d.opts.Logger.Info("dispatcher: listening", "addr", d.opts.ListenAddr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				d.opts.Logger.Info("dispatcher: listener closed")
				return nil
			}
			d.opts.Logger.Error("dispatcher: accept failed", "error", err)
			return err
		}

		d.wg.Add(1)
		go func(c net.Conn) {
			defer d.wg.Done()
			d.handle(ctx, c)
		}(conn)
	}
}

func (d *Dispatcher) Shutdown(ctx context.Context) error {
	if d.ln != nil {
		_ = d.ln.Close()
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// handle implements spec.md §4.5's per-connection sequence: ensure the
// backend is live, dial it, then relay until either half closes. Any
// error in the ensure-live or dial phase simply closes the inbound
// connection, per the spec's failure semantics.
func (d *Dispatcher) handle(ctx context.Context, conn net.Conn) {
	host, err := d.ensureLive(ctx)
	if err != nil {
		d.opts.Logger.Warn("dispatcher: backend not live, dropping connection", "error", err)
		conn.Close()
		return
	}

	dialCtx, cancel := context.WithTimeout(ctx, d.opts.ConnectTimeout)
	upstream, err := netutil.DialContext(dialCtx, "tcp", host.Addr)
	cancel()
	if err != nil {
		d.opts.Logger.Warn("dispatcher: dial backend failed", "addr", host.Addr, "error", err)
		conn.Close()
		return
	}

	if d.opts.Metrics != nil {
		d.opts.Metrics.IncActive()
		defer d.opts.Metrics.DecActive()
	}

	if err := d.bridge.Proxy(ctx, conn, upstream); err != nil && !errors.Is(err, context.Canceled) {
		d.opts.Logger.Debug("dispatcher: relay ended", "error", err)
	}
}

// ensureLive runs spec.md §4.5 steps 1-3: acquire the driver lock, probe the
// cached address, and start+retry-ping if the backend is down, all as one
// atomic sequence with respect to other dispatcher invocations and the
// supervisor. Concurrent callers arriving while this sequence is in flight
// are coalesced onto the same result via singleflight, so a start storm
// from N simultaneous clients still issues exactly one start.
func (d *Dispatcher) ensureLive(ctx context.Context) (backend.HostInfo, error) {
	v, err, _ := d.sf.Do(ensureLiveKey, func() (any, error) {
		return d.ensureLiveLocked(ctx)
	})
	if err != nil {
		return backend.HostInfo{}, err
	}
	return v.(backend.HostInfo), nil
}

func (d *Dispatcher) ensureLiveLocked(ctx context.Context) (backend.HostInfo, error) {
	d.guard.Lock()
	defer d.guard.Unlock()

	driver := d.guard.Driver()

	if host, ok := driver.Addr(); ok {
		pingCtx, cancel := context.WithTimeout(ctx, d.opts.ConnectTimeout)
		_, err := slp.Ping(pingCtx, host.Host, host.Addr, d.pingOpts()...)
		cancel()
		if err == nil {
			return host, nil
		}
		d.opts.Logger.Debug("dispatcher: liveness probe failed, starting backend", "error", err)
	}

	if err := driver.Start(ctx); err != nil {
		return backend.HostInfo{}, fmt.Errorf("start backend: %w", err)
	}
	if d.opts.Metrics != nil {
		d.opts.Metrics.IncBackendStarts()
	}

	host, ok := driver.Addr()
	if !ok {
		return backend.HostInfo{}, errors.New("dispatcher: backend started but address still unknown")
	}

	if _, err := slp.RetryPing(ctx, host.Host, host.Addr, d.opts.RetryInterval, d.pingOpts()...); err != nil {
		return backend.HostInfo{}, fmt.Errorf("wait for backend readiness: %w", err)
	}
	return host, nil
}

func (d *Dispatcher) pingOpts() []slp.Option {
	opts := []slp.Option{slp.WithConnectTimeout(d.opts.ConnectTimeout)}
	if d.opts.ProtocolVersion != 0 {
		opts = append(opts, slp.WithProtocolVersion(d.opts.ProtocolVersion))
	}
	return opts
}
