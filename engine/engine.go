// Package engine generates Mandelbrot iteration grids incrementally and in
// parallel.
//
// An Explorer owns a persistent pool of worker goroutines and the last
// completed grid. Each call to BeginGeneration starts a pass that
// evaluates the image border, then traces the interior with a quadtree:
// regions whose border holds a single value are filled, the others are
// split by a cross of freshly evaluated pixels into four quadrants that
// idle workers pick up through a single handoff slot.
//
// When only the iteration bound changes, pixels whose previous value is
// still valid are reused instead of evaluated (see grid.Reuse).
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mandel "github.com/marben/mandel_explorer"
	"github.com/marben/mandel_explorer/grid"
)

// Option configures an Explorer.
type Option func(*Explorer)

// WithWorkers sets the size of the worker pool. 0 or negative uses
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Explorer) { e.workers = n }
}

// WithLogger sets the logger of the Explorer. By default mandel.Logger()
// is used.
func WithLogger(l *slog.Logger) Option {
	return func(e *Explorer) { e.log = l }
}

// Snapshot is a completed pass.
// Grid is never written again.
type Snapshot struct {
	Grid    *grid.Grid
	View    mandel.Viewport
	MaxIter int
	Stats   mandel.Stats
}

// Explorer generates iteration grids for a fixed resolution.
//
// Thread safety: Explorer is safe for concurrent use. Calls that start or
// stop passes are serialized.
type Explorer struct {
	workers int
	log     *slog.Logger
	sched   *scheduler

	// control serializes BeginGeneration, Resize and Close.
	control sync.Mutex

	mu          sync.Mutex
	width       int
	height      int
	view        mandel.Viewport
	maxIter     int
	lastMaxIter int
	current     *Handle
	published   Snapshot
	closed      bool
}

// New creates an Explorer for width×height images and starts its worker
// pool. The initial view is mandel.Home with mandel.HomeMaxIter.
// It panics if either dimension is not positive.
func New(width, height int, opts ...Option) *Explorer {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("engine: invalid resolution %dx%d", width, height))
	}
	e := &Explorer{
		width:   width,
		height:  height,
		view:    mandel.Home,
		maxIter: mandel.HomeMaxIter,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sched = newScheduler(e.workers)
	e.workers = e.sched.workers
	return e
}

func (e *Explorer) logger() *slog.Logger {
	if e.log != nil {
		return e.log
	}
	return mandel.Logger()
}

// Workers returns the size of the worker pool.
func (e *Explorer) Workers() int { return e.workers }

// Size returns the resolution used by the next pass.
func (e *Explorer) Size() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

// View returns the viewport and bound of the most recently requested pass.
func (e *Explorer) View() (mandel.Viewport, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view, e.maxIter
}

// BeginGeneration starts a pass for vp with the given iteration bound,
// cancelling the pass in flight first. Previously computed values are
// reused when vp and the resolution equal those of the last completed
// grid and only the bound differs.
// It panics if vp is not Valid.
func (e *Explorer) BeginGeneration(vp mandel.Viewport, maxIter int) *Handle {
	return e.begin(vp, maxIter, true)
}

// SetIterationBound starts a pass with the current viewport and a new
// bound. This is the call that benefits from the incremental cache.
func (e *Explorer) SetIterationBound(maxIter int) *Handle {
	vp, _ := e.View()
	return e.begin(vp, maxIter, true)
}

// SetViewport starts a pass for a new viewport with the current bound.
// Every pixel is evaluated again.
func (e *Explorer) SetViewport(vp mandel.Viewport) *Handle {
	_, maxIter := e.View()
	return e.begin(vp, maxIter, false)
}

func (e *Explorer) begin(vp mandel.Viewport, maxIter int, allowCache bool) *Handle {
	if !vp.Valid() {
		panic(fmt.Sprintf("engine: invalid viewport %s", vp))
	}
	maxIter = max(maxIter, 1)

	e.control.Lock()
	defer e.control.Unlock()

	e.stopCurrent()

	e.mu.Lock()
	h := newHandle(vp, maxIter)
	if e.closed {
		e.mu.Unlock()
		h.finish(Cancelled, Snapshot{})
		return h
	}
	e.view, e.maxIter = vp, maxIter

	var cache *grid.Cache
	if prev := e.published; allowCache && prev.Grid != nil && prev.View == vp {
		cache = grid.NewCache(prev.Grid, e.width, e.height, maxIter, e.lastMaxIter)
	}
	p := newPass(grid.New(e.width, e.height), vp, maxIter, cache, e.sched)
	h.pass = p
	e.current = h
	e.mu.Unlock()

	e.logger().Debug("engine: pass started",
		"view", vp.String(), "max_iter", maxIter, "size", fmt.Sprintf("%dx%d", p.grid.Width(), p.grid.Height()),
		"cached", cache != nil)

	go e.run(h)
	return h
}

// stopCurrent cancels the pass in flight, if any, and waits for it.
// Must be called with control held.
func (e *Explorer) stopCurrent() {
	e.mu.Lock()
	cur := e.current
	e.mu.Unlock()
	if cur != nil {
		e.Cancel(cur)
	}
}

// run drives one pass through its states on its own goroutine.
func (e *Explorer) run(h *Handle) {
	p := h.pass
	start := time.Now()

	h.setState(GeneratingBorder)
	p.border()

	if !p.isCancelled() {
		h.setState(TracingInterior)
		p.trace(p.grid.Bounds())
		e.sched.wait()
	}

	stats := p.stats(time.Since(start))

	e.mu.Lock()
	if e.current == h {
		e.current = nil
	}
	if p.isCancelled() {
		e.mu.Unlock()
		e.logger().Warn("engine: pass cancelled", "view", h.view.String(), "max_iter", h.maxIter,
			"elapsed", stats.Elapsed)
		h.finish(Cancelled, Snapshot{View: h.view, MaxIter: h.maxIter, Stats: stats})
		return
	}
	snap := Snapshot{Grid: p.grid, View: h.view, MaxIter: h.maxIter, Stats: stats}
	e.published = snap
	e.lastMaxIter = h.maxIter
	e.mu.Unlock()

	e.logger().Info("engine: pass done", "view", h.view.String(), "max_iter", h.maxIter,
		"computed", stats.Computed, "cached", stats.Cached, "filled", stats.Filled,
		"handoffs", stats.Handoffs, "elapsed", stats.Elapsed)
	h.finish(Done, snap)
}

// Cancel requests the end of the pass of h and returns once the worker
// pool is quiescent. Cancelling a finished pass does nothing.
func (e *Explorer) Cancel(h *Handle) {
	if h == nil {
		return
	}
	if h.pass != nil {
		h.pass.cancel()
	}
	<-h.done
}

// IsComplete reports whether the pass of h finished normally.
func (e *Explorer) IsComplete(h *Handle) bool {
	return h != nil && h.State() == Done
}

// Grid returns the last completed grid, or nil if no pass completed yet.
// The returned grid is never written again.
func (e *Explorer) Grid() *grid.Grid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.published.Grid
}

// Snapshot returns the last completed pass.
func (e *Explorer) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.published
}

// LastMaxIter returns the bound of the last completed grid.
func (e *Explorer) LastMaxIter() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastMaxIter
}

// Resize changes the resolution of the following passes. The pass in
// flight is cancelled; the next pass evaluates every pixel.
func (e *Explorer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("engine: invalid resolution %dx%d", width, height))
	}
	e.control.Lock()
	defer e.control.Unlock()

	e.stopCurrent()

	e.mu.Lock()
	e.width, e.height = width, height
	e.mu.Unlock()
}

// Generate runs a pass and waits for it. If ctx ends first the pass is
// cancelled and ctx.Err() returned.
func (e *Explorer) Generate(ctx context.Context, vp mandel.Viewport, maxIter int) (Snapshot, error) {
	h := e.BeginGeneration(vp, maxIter)
	state, err := h.Wait(ctx)
	if err != nil {
		e.Cancel(h)
		return Snapshot{}, err
	}
	if state != Done {
		return Snapshot{}, fmt.Errorf("generate %s: %w", vp, ErrCancelled)
	}
	return h.Snapshot(), nil
}

// Close cancels the pass in flight and stops the worker pool.
// Close is safe to call multiple times.
func (e *Explorer) Close() {
	e.control.Lock()
	defer e.control.Unlock()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.stopCurrent()
	e.sched.close()
}
