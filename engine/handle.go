package engine

import (
	"context"
	"errors"
	"sync/atomic"

	mandel "github.com/marben/mandel_explorer"
)

// ErrCancelled is returned by Generate when its pass is cancelled by a
// newer one.
var ErrCancelled = errors.New("pass cancelled")

// State is the stage of a generation pass.
type State int32

const (
	Idle State = iota
	GeneratingBorder
	TracingInterior
	Done
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case GeneratingBorder:
		return "border"
	case TracingInterior:
		return "tracing"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Finished reports whether s is a final state.
func (s State) Finished() bool { return s == Done || s == Cancelled }

// Handle follows one generation pass.
type Handle struct {
	view    mandel.Viewport
	maxIter int
	pass    *pass

	state  atomic.Int32
	done   chan struct{}
	result Snapshot
}

func newHandle(vp mandel.Viewport, maxIter int) *Handle {
	return &Handle{view: vp, maxIter: maxIter, done: make(chan struct{})}
}

func (h *Handle) setState(s State) { h.state.Store(int32(s)) }

// finish records the final state. result is set before done is closed so
// that readers woken by Done see it.
func (h *Handle) finish(s State, result Snapshot) {
	h.result = result
	h.setState(s)
	close(h.done)
}

// State returns the current stage of the pass.
func (h *Handle) State() State { return State(h.state.Load()) }

// Done is closed when the pass reaches Done or Cancelled.
func (h *Handle) Done() <-chan struct{} { return h.done }

// View returns the viewport and bound the pass was started with.
func (h *Handle) View() (mandel.Viewport, int) { return h.view, h.maxIter }

// Wait blocks until the pass finishes or ctx ends.
func (h *Handle) Wait(ctx context.Context) (State, error) {
	select {
	case <-h.done:
		return h.State(), nil
	case <-ctx.Done():
		return h.State(), ctx.Err()
	}
}

// Stats returns the counters of a finished pass; zero before that.
func (h *Handle) Stats() mandel.Stats {
	return h.Snapshot().Stats
}

// Snapshot returns the result of a finished pass. Its Grid is nil unless
// the pass reached Done.
func (h *Handle) Snapshot() Snapshot {
	select {
	case <-h.done:
		return h.result
	default:
		return Snapshot{}
	}
}
