package backend_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"slumber/internal/backend"
	"slumber/internal/backend/backendtest"
)

func TestGuardedMutualExclusion(t *testing.T) {
	fake := backendtest.NewFake(backend.HostInfo{Host: "mc", Addr: "10.0.0.2:25565"})
	g := backend.NewGuarded(fake)

	var wg sync.WaitGroup
	var concurrent int32
	var maxConcurrent int32
	var mu sync.Mutex

	enter := func() {
		mu.Lock()
		concurrent++
		if concurrent > maxConcurrent {
			maxConcurrent = concurrent
		}
		mu.Unlock()
	}
	leave := func() {
		mu.Lock()
		concurrent--
		mu.Unlock()
	}

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Lock()
			enter()
			time.Sleep(time.Millisecond)
			leave()
			g.Unlock()
		}()
	}
	wg.Wait()

	if maxConcurrent > 1 {
		t.Fatalf("observed %d concurrent holders of the guard, want at most 1", maxConcurrent)
	}
}

func TestGuardedAddrAndStop(t *testing.T) {
	fake := backendtest.NewFake(backend.HostInfo{Host: "mc", Addr: "10.0.0.2:25565"})
	g := backend.NewGuarded(fake)

	if _, ok := g.Addr(); ok {
		t.Fatalf("expected no addr before start")
	}

	g.Lock()
	if err := g.Driver().Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	g.Unlock()

	info, ok := g.Addr()
	if !ok || info.Addr != "10.0.0.2:25565" {
		t.Fatalf("Addr() = %+v, %v", info, ok)
	}

	if err := g.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if fake.StopCalls.Load() != 1 {
		t.Fatalf("StopCalls = %d, want 1", fake.StopCalls.Load())
	}
}
