package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestGateOpenByDefault(t *testing.T) {
	g := NewGate()
	if g.Paused() {
		t.Fatal("new gate is paused")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := g.Wait(ctx); err != nil {
		t.Fatalf("Wait on open gate: %v", err)
	}
}

func TestGatePauseResume(t *testing.T) {
	tests := []struct {
		name   string
		steps  []func(*Gate) bool
		want   []bool
		paused bool
	}{
		{"pause", []func(*Gate) bool{(*Gate).Pause}, []bool{true}, true},
		{"double pause", []func(*Gate) bool{(*Gate).Pause, (*Gate).Pause}, []bool{true, false}, true},
		{"resume open gate", []func(*Gate) bool{(*Gate).Resume}, []bool{false}, false},
		{"toggle twice", []func(*Gate) bool{(*Gate).Toggle, (*Gate).Toggle}, []bool{true, false}, false},
		{"pause then toggle", []func(*Gate) bool{(*Gate).Pause, (*Gate).Toggle}, []bool{true, false}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate()
			for i, step := range tt.steps {
				if got := step(g); got != tt.want[i] {
					t.Errorf("step %d = %v, want %v", i, got, tt.want[i])
				}
			}
			if g.Paused() != tt.paused {
				t.Errorf("Paused() = %v, want %v", g.Paused(), tt.paused)
			}
		})
	}
}

func TestGateReleasesAllWaiters(t *testing.T) {
	g := NewGate()
	g.Pause()

	const waiters = 5
	var wg sync.WaitGroup
	released := make(chan struct{}, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Wait(context.Background()) == nil {
				released <- struct{}{}
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	if len(released) != 0 {
		t.Fatalf("%d waiters passed a paused gate", len(released))
	}

	g.Resume()
	wg.Wait()
	if len(released) != waiters {
		t.Errorf("released %d waiters, want %d", len(released), waiters)
	}
}

func TestGateWaitCanceled(t *testing.T) {
	g := NewGate()
	g.Pause()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := g.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait = %v, want deadline exceeded", err)
	}
}

func TestGatePausedFor(t *testing.T) {
	g := NewGate()
	if g.PausedFor() != 0 {
		t.Fatal("fresh gate reports paused time")
	}
	g.Pause()
	time.Sleep(30 * time.Millisecond)
	g.Resume()
	first := g.PausedFor()
	if first < 30*time.Millisecond {
		t.Errorf("PausedFor = %v, want >= 30ms", first)
	}

	time.Sleep(20 * time.Millisecond)
	if g.PausedFor() != first {
		t.Error("paused time grew while running")
	}

	g.Pause()
	time.Sleep(10 * time.Millisecond)
	if g.PausedFor() <= first {
		t.Error("ongoing pause not counted")
	}
}
