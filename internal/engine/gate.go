package engine

import (
	"context"
	"sync"
	"time"
)

// Gate holds workers back between requests while a scan is paused.
// The zero value is not usable; use NewGate.
type Gate struct {
	mu     sync.Mutex
	open   chan struct{} // closed while running
	since  time.Time
	paused time.Duration
}

// NewGate returns an open gate.
func NewGate() *Gate {
	open := make(chan struct{})
	close(open)
	return &Gate{open: open}
}

// Wait returns immediately while the gate is open. Otherwise it blocks
// until Resume or until ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	open := g.open
	g.mu.Unlock()

	select {
	case <-open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause closes the gate. It reports false if it was already closed.
func (g *Gate) Pause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed() {
		return false
	}
	g.open = make(chan struct{})
	g.since = time.Now()
	return true
}

// Resume opens the gate and releases every waiter. It reports false if
// the gate was already open.
func (g *Gate) Resume() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed() {
		return false
	}
	g.paused += time.Since(g.since)
	close(g.open)
	return true
}

// Toggle pauses a running scan or resumes a paused one and reports
// whether the scan is now paused.
func (g *Gate) Toggle() bool {
	if g.Pause() {
		return true
	}
	g.Resume()
	return false
}

// Paused reports whether the gate is closed.
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed()
}

// PausedFor is the total time spent paused, including a pause in progress.
func (g *Gate) PausedFor() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	d := g.paused
	if g.closed() {
		d += time.Since(g.since)
	}
	return d
}

// closed must be called with g.mu held.
func (g *Gate) closed() bool {
	select {
	case <-g.open:
		return false
	default:
		return true
	}
}
