// Package backendtest provides an in-process backend.Driver double for
// exercising the supervisor and dispatcher without a real container runtime.
package backendtest

import (
	"context"
	"sync"
	"sync/atomic"

	"slumber/internal/backend"
)

// Fake is a backend.Driver with a tiny state machine and atomic call
// counters, matching spec.md §9's guidance that tests substitute a fake
// backend instead of driving a real container runtime.
type Fake struct {
	StartCalls atomic.Int64
	StopCalls  atomic.Int64

	// StartErr/StopErr, when set, are returned by every Start/Stop call
	// instead of succeeding, until they are cleared.
	StartErr error
	StopErr  error

	addrOnStart backend.HostInfo

	mu      sync.Mutex
	running bool
	have    bool
	addr    backend.HostInfo
}

// NewFake returns a Fake that, once started, reports addr as its HostInfo.
func NewFake(addr backend.HostInfo) *Fake {
	return &Fake{addrOnStart: addr}
}

func (f *Fake) Start(ctx context.Context) error {
	f.StartCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartErr != nil {
		return f.StartErr
	}
	f.running = true
	if !f.have {
		f.addr = f.addrOnStart
		f.have = true
	}
	return nil
}

func (f *Fake) Stop(ctx context.Context) error {
	f.StopCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StopErr != nil {
		return f.StopErr
	}
	f.running = false
	return nil
}

func (f *Fake) Addr() (backend.HostInfo, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addr, f.have
}

// Running reports whether Start has succeeded more recently than Stop.
func (f *Fake) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}
