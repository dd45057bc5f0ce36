package slp

import (
	"context"
	"net"
	"testing"
	"time"

	"slumber/pkg/mcproto"
)

func fakeStatusServer(t *testing.T, json string) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 1024)
		// Drain the handshake + status-request; we don't need to decode them
		// for this fake, just enough bytes to have seen both packets.
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _ = conn.Read(buf)

		resp := mcproto.WritePacket(0x00, encodeStatusString(t, json))
		_, _ = conn.Write(resp)
	}()
	return ln
}

func encodeStatusString(t *testing.T, s string) []byte {
	t.Helper()
	n := mcproto.VarIntLen(int32(len(s)))
	out := make([]byte, 0, n+len(s))
	if _, err := mcproto.WriteVarInt(sliceWriter{&out}, int32(len(s))); err != nil {
		t.Fatalf("WriteVarInt: %v", err)
	}
	out = append(out, s...)
	return out
}

type sliceWriter struct{ out *[]byte }

func (w sliceWriter) Write(p []byte) (int, error) {
	*w.out = append(*w.out, p...)
	return len(p), nil
}

func TestPingHappyPath(t *testing.T) {
	ln := fakeStatusServer(t, `{"version":{"name":"1.20.4","protocol":765},"players":{"max":20,"online":1},"description":{"text":"hi"}}`)
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	resp, err := Ping(ctx, "localhost", ln.Addr().String())
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if resp.Players.Online != 1 {
		t.Fatalf("players.online = %d, want 1", resp.Players.Online)
	}
}

func TestPingConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // nobody listening now

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = Ping(ctx, "localhost", addr)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsConnectError(err) {
		t.Fatalf("want connect error, got %v", err)
	}
}

func TestPingPrematureClose(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Close() // hang up with no response at all
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = Ping(ctx, "localhost", ln.Addr().String())
	var pe *PingError
	if err == nil {
		t.Fatalf("expected error")
	}
	if !asPingError(err, &pe) || pe.Kind != ErrPrematureClose {
		t.Fatalf("want ErrPrematureClose, got %v", err)
	}
}

func asPingError(err error, target **PingError) bool {
	pe, ok := err.(*PingError)
	if !ok {
		return false
	}
	*target = pe
	return true
}

func TestRetryPingEventuallySucceeds(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // closed for the first ~3 attempts (150ms at a 50ms interval), then reopened

	go func() {
		time.Sleep(150 * time.Millisecond)
		ln2, err := net.Listen("tcp", addr)
		if err != nil {
			return
		}
		defer ln2.Close()
		conn, err := ln2.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1024)
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _ = conn.Read(buf)
		resp := mcproto.WritePacket(0x00, encodeStatusString(t, `{"version":{"name":"x","protocol":1},"players":{"max":1,"online":0},"description":{"text":"t"}}`))
		_, _ = conn.Write(resp)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err = RetryPing(ctx, "localhost", addr, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("RetryPing: %v", err)
	}
}
