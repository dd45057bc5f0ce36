// Package slp implements the client side of the Server List Ping exchange:
// dial, handshake, status-request, and the incremental status-response read
// loop built on pkg/mcproto.
package slp

import "errors"

// PingError distinguishes why a ping attempt failed, mirroring the kinds a
// caller needs to tell transient container-startup noise (ConnectRefused,
// ConnectTimeout) from a wire-level fault (Protocol) or an early hangup
// (PrematureClose).
type PingError struct {
	Kind PingErrorKind
	Err  error
}

type PingErrorKind int

const (
	ErrConnectTimeout PingErrorKind = iota
	ErrConnectRefused
	ErrPrematureClose
	ErrProtocolMalformed
	ErrJSONInvalid
)

func (k PingErrorKind) String() string {
	switch k {
	case ErrConnectTimeout:
		return "connect_timeout"
	case ErrConnectRefused:
		return "connect_refused"
	case ErrPrematureClose:
		return "premature_close"
	case ErrProtocolMalformed:
		return "protocol_malformed"
	case ErrJSONInvalid:
		return "json_invalid"
	default:
		return "unknown"
	}
}

func (e *PingError) Error() string {
	if e.Err != nil {
		return "slp: " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "slp: " + e.Kind.String()
}

func (e *PingError) Unwrap() error { return e.Err }

func newPingError(kind PingErrorKind, cause error) *PingError {
	return &PingError{Kind: kind, Err: cause}
}

// IsConnectError reports whether err is a PingError signaling a transient
// connection failure (refused or timed out) as opposed to a protocol fault.
func IsConnectError(err error) bool {
	var pe *PingError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Kind == ErrConnectTimeout || pe.Kind == ErrConnectRefused
}
