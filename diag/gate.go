package diag

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate serializes the refresh engine's critical section: a capacity-1
// semaphore whose Acquire suspends the caller until the previous holder
// releases. Combined with cancel-then-acquire this turns "last request wins"
// into a strict hand-off between refresh cycles.
type Gate struct {
	sem *semaphore.Weighted
}

// NewGate creates a gate admitting one holder at a time.
func NewGate() *Gate {
	return &Gate{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the gate is free and returns a release function. The
// release function must be called on every exit path.
func (g *Gate) Acquire(ctx context.Context) (release func(), err error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { g.sem.Release(1) }, nil
}
