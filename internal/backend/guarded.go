package backend

import (
	"context"
	"sync"
)

// Guarded wraps a Driver behind a single mutex — the mutual-exclusion guard
// spec.md §3/§5 requires the dispatcher and supervisor to share, so that an
// ensure-live sequence and a supervisor tick can never run concurrently
// against the same backend.
//
// Single-operation helpers (Addr, Stop) take the lock only for their own
// duration. Lock/Unlock are exported separately so the dispatcher's
// ensure-live sequence (addr query -> conditional start -> retry-ping) can
// hold the guard across several driver operations without a data race,
// releasing it before the byte-relay phase begins.
type Guarded struct {
	mu     sync.Mutex
	driver Driver
}

func NewGuarded(driver Driver) *Guarded {
	return &Guarded{driver: driver}
}

func (g *Guarded) Lock()   { g.mu.Lock() }
func (g *Guarded) Unlock() { g.mu.Unlock() }

// Driver returns the wrapped driver for use while the caller already holds
// the lock via Lock/Unlock.
func (g *Guarded) Driver() Driver { return g.driver }

// Addr takes the lock only for the duration of the address query.
func (g *Guarded) Addr() (HostInfo, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.driver.Addr()
}

// Stop takes the lock only for the duration of the stop call, matching the
// supervisor's per-tick locking (never held across the sleep between ticks).
func (g *Guarded) Stop(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.driver.Stop(ctx)
}
