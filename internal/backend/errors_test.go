package backend_test

import (
	"context"
	"testing"

	"slumber/internal/backend"
	"slumber/internal/backend/backendtest"
)

func TestFakeStartErrorSurfacesThroughGuarded(t *testing.T) {
	fake := backendtest.NewFake(backend.HostInfo{})
	fake.StartErr = context.DeadlineExceeded

	g := backend.NewGuarded(fake)
	g.Lock()
	err := g.Driver().Start(context.Background())
	g.Unlock()

	if err == nil {
		t.Fatalf("expected error")
	}
	if fake.StartCalls.Load() != 1 {
		t.Fatalf("StartCalls = %d, want 1", fake.StartCalls.Load())
	}
}
