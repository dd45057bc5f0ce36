//go:build linux

// Package netutil applies the socket-level tuning a latency-sensitive relay
// wants on the sockets it owns: TCP_NODELAY (Minecraft's framing is small
// and bursty, so Nagle's algorithm only adds latency) and a short TCP
// keepalive (so a half-open peer — a client that vanished mid-session, or a
// backend container that was killed out from under its socket — is
// reclaimed instead of leaking a goroutine and a file descriptor forever).
package netutil

import (
	"context"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

const (
	keepaliveIdle     = 30 * time.Second
	keepaliveInterval = 10 * time.Second
	keepaliveCount    = 3
)

// tune applies TCP_NODELAY and a short keepalive to fd via the raw-socket
// option idiom used for socket tuning throughout the retrieval pack's
// uping tool (golang.org/x/sys/unix.SetsockoptInt), restated here against
// net.Dialer/net.ListenConfig's Control hook instead of a hand-rolled raw
// socket.
func tune(fd uintptr) {
	_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
	_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, int(keepaliveIdle.Seconds()))
	_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, int(keepaliveInterval.Seconds()))
	_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPCNT, keepaliveCount)
}

func control(_ string, _ string, c syscall.RawConn) error {
	var ctrlErr error
	err := c.Control(func(fd uintptr) {
		tune(fd)
	})
	if err != nil {
		return err
	}
	return ctrlErr
}

// Dialer returns a net.Dialer that applies this package's TCP tuning to
// every connection it dials.
func Dialer() *net.Dialer {
	return &net.Dialer{Control: control}
}

// ListenConfig returns a net.ListenConfig that applies this package's TCP
// tuning to every connection the resulting listener accepts.
func ListenConfig() *net.ListenConfig {
	return &net.ListenConfig{Control: control}
}

// DialContext is a convenience wrapper around Dialer().DialContext.
func DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	return Dialer().DialContext(ctx, network, addr)
}
