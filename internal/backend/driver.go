// Package backend defines the capability set a backing Minecraft server must
// expose to the dispatcher and supervisor — start, stop, and its currently
// known address — plus the default Docker-backed implementation.
package backend

import "context"

// HostInfo is the resolved endpoint of a running backend, per spec.md §3.
// Host is an application-chosen identifier used as the SLP server_host; it
// need not resolve via DNS. Addr is the dialable "ip:port" the dispatcher
// connects sockets to.
type HostInfo struct {
	Host string
	Addr string
}

// State is an observability-only snapshot of a Driver's last known
// reachability; it does not own or replace the supervisor's state machine.
type State int

const (
	StateUnknown State = iota
	StateUp
	StateDown
)

func (s State) String() string {
	switch s {
	case StateUp:
		return "up"
	case StateDown:
		return "down"
	default:
		return "unknown"
	}
}

// Driver is the capability set spec.md §4.3 requires: start, stop, addr.
// Start and Stop are idempotent in effect — calling either when already in
// the target state still succeeds.
type Driver interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Addr() (HostInfo, bool)
}
