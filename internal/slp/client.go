package slp

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"golang.org/x/time/rate"

	"slumber/pkg/mcproto"
)

// ProtocolVersion is the handshake protocol_version slumber advertises to
// backends, per spec.md §4.2.
const ProtocolVersion int32 = 764

// connectTimeout bounds the dial itself; spec.md §4.2 step 1 fixes it at 1s.
const connectTimeout = 1 * time.Second

// readBufSize is the fixed-capacity accumulator for the status-response read
// loop; spec.md §4.2 step 4 requires at least 20KiB.
const readBufSize = 24 * 1024

// options holds the tunable fields the config-driven callers in
// internal/dispatcher and internal/supervisor may override; resolveOptions
// seeds it with the fixed defaults (connectTimeout, ProtocolVersion) before
// applying any Option.
type options struct {
	connectTimeout  time.Duration
	protocolVersion int32
}

// Option overrides a Ping/RetryPing tunable away from its spec default.
type Option func(*options)

// WithConnectTimeout overrides the 1s connect deadline with a
// config-supplied value.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) { o.connectTimeout = d }
}

// WithProtocolVersion overrides the advertised handshake protocol_version.
func WithProtocolVersion(v int32) Option {
	return func(o *options) { o.protocolVersion = v }
}

func resolveOptions(opts []Option) options {
	o := options{connectTimeout: connectTimeout, protocolVersion: ProtocolVersion}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Ping performs a single server-list-ping: connect, handshake, status
// request, then a read loop that feeds mcproto.ParseStatusResponse
// incrementally until a full response arrives or the connection closes.
func Ping(ctx context.Context, host string, addr string, opts ...Option) (mcproto.StatusResponse, error) {
	o := resolveOptions(opts)

	dialCtx, cancel := context.WithTimeout(ctx, o.connectTimeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return mcproto.StatusResponse{}, newPingError(ErrConnectTimeout, err)
		}
		return mcproto.StatusResponse{}, newPingError(ErrConnectRefused, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return mcproto.StatusResponse{}, newPingError(ErrProtocolMalformed, err)
	}
	portNum, err := parsePort(port)
	if err != nil {
		return mcproto.StatusResponse{}, newPingError(ErrProtocolMalformed, err)
	}

	handshake, err := mcproto.EncodeHandshake(o.protocolVersion, host, portNum, mcproto.NextStateStatus)
	if err != nil {
		return mcproto.StatusResponse{}, newPingError(ErrProtocolMalformed, err)
	}
	if _, err := conn.Write(handshake); err != nil {
		return mcproto.StatusResponse{}, classifyWriteErr(err)
	}
	if _, err := conn.Write(mcproto.EncodeStatusRequest()); err != nil {
		return mcproto.StatusResponse{}, classifyWriteErr(err)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}

	buf := make([]byte, 0, readBufSize)
	scratch := make([]byte, readBufSize)
	for {
		n, readErr := conn.Read(scratch)
		if n > 0 {
			buf = append(buf, scratch[:n]...)
			_, resp, parseErr := mcproto.ParseStatusResponse(buf)
			switch {
			case parseErr == nil:
				return resp, nil
			case errors.Is(parseErr, mcproto.ErrIncomplete):
				// keep reading
			case errors.Is(parseErr, mcproto.ErrMalformed):
				return mcproto.StatusResponse{}, newPingError(ErrProtocolMalformed, parseErr)
			default:
				return mcproto.StatusResponse{}, newPingError(ErrJSONInvalid, parseErr)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return mcproto.StatusResponse{}, newPingError(ErrPrematureClose, readErr)
			}
			return mcproto.StatusResponse{}, newPingError(ErrConnectRefused, readErr)
		}
	}
}

// RetryPing repeats Ping at a fixed interval until it succeeds or ctx is
// canceled, per spec.md §4.2. Pacing uses a rate.Limiter instead of a bare
// time.Sleep loop so the single wait point is itself cancellation-aware.
func RetryPing(ctx context.Context, host string, addr string, interval time.Duration, opts ...Option) (mcproto.StatusResponse, error) {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	limiter.Allow() // drain the initial burst token so the first retry also waits a full interval
	for {
		resp, err := Ping(ctx, host, addr, opts...)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return mcproto.StatusResponse{}, ctx.Err()
		}
		if waitErr := limiter.Wait(ctx); waitErr != nil {
			return mcproto.StatusResponse{}, waitErr
		}
	}
}

func classifyWriteErr(err error) error {
	if errors.Is(err, io.EOF) {
		return newPingError(ErrPrematureClose, err)
	}
	return newPingError(ErrConnectRefused, err)
}

func parsePort(s string) (uint16, error) {
	var v int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, errors.New("slp: invalid port " + s)
		}
		v = v*10 + int(c-'0')
		if v > 65535 {
			return 0, errors.New("slp: port out of range " + s)
		}
	}
	return uint16(v), nil
}
