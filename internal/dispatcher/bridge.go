package dispatcher

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
)

// BridgeMetrics records bytes moved in each direction; satisfied by
// telemetry.MetricsCollector without this package importing it.
type BridgeMetrics interface {
	AddIngress(n int64)
	AddEgress(n int64)
}

type BridgeOptions struct {
	BufferPool BufferPool
	Metrics    BridgeMetrics
}

// Bridge runs the bidirectional byte copy of spec.md §4.5 step 4, trimmed of
// the teacher's PROXY-protocol injection and multi-upstream routing — this
// dispatcher always relays between exactly one client and one backend.
type Bridge struct {
	opts BridgeOptions
}

func NewBridge(opts BridgeOptions) *Bridge {
	return &Bridge{opts: opts}
}

func (b *Bridge) buffer() []byte {
	if b.opts.BufferPool != nil {
		return b.opts.BufferPool.Get()
	}
	return make([]byte, 32*1024)
}

func (b *Bridge) putBuffer(buf []byte) {
	if b.opts.BufferPool != nil {
		b.opts.BufferPool.Put(buf)
	}
}

// Proxy relays bytes between client and upstream until either half-closes.
// Both sockets are closed on return.
func (b *Bridge) Proxy(ctx context.Context, client net.Conn, upstream net.Conn) error {
	defer client.Close()
	defer upstream.Close()

	errCh := make(chan error, 2)
	var wg sync.WaitGroup
	copyFn := func(dst net.Conn, src io.Reader, countFn func(int64)) {
		defer wg.Done()
		buf := b.buffer()
		defer b.putBuffer(buf)
		written, err := io.CopyBuffer(dst, src, buf)
		if written > 0 && countFn != nil {
			countFn(written)
		}
		if err != nil && !errors.Is(err, net.ErrClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}

	var ingressFn, egressFn func(int64)
	if b.opts.Metrics != nil {
		ingressFn = b.opts.Metrics.AddIngress
		egressFn = b.opts.Metrics.AddEgress
	}

	wg.Add(1)
	go copyFn(upstream, client, ingressFn)
	wg.Add(1)
	go copyFn(client, upstream, egressFn)

	select {
	case <-ctx.Done():
		_ = client.Close()
		_ = upstream.Close()
		wg.Wait()
		return ctx.Err()
	case err := <-errCh:
		_ = client.Close()
		_ = upstream.Close()
		wg.Wait()
		<-errCh
		return err
	}
}
