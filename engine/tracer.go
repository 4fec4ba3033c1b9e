package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	mandel "github.com/marben/mandel_explorer"
	"github.com/marben/mandel_explorer/grid"
)

// cancelCheckEvery is how many pixels a strip evaluates between two looks
// at the cancellation flag.
const cancelCheckEvery = 64

// pass is one generation of a grid: the target grid, the parameters it is
// generated with and its counters. Every goroutine working on the pass
// receives it explicitly.
type pass struct {
	grid    *grid.Grid
	cache   *grid.Cache
	mapper  func(px, py int) (float64, float64)
	maxIter int
	sched   *scheduler

	cancelled atomic.Bool

	computed atomic.Int64
	cached   atomic.Int64
	filled   atomic.Int64
	handoffs atomic.Int64
}

func newPass(g *grid.Grid, vp mandel.Viewport, maxIter int, cache *grid.Cache, sched *scheduler) *pass {
	return &pass{
		grid:    g,
		cache:   cache,
		mapper:  vp.Mapper(g.Width(), g.Height()),
		maxIter: maxIter,
		sched:   sched,
	}
}

func (p *pass) cancel() { p.cancelled.Store(true) }

func (p *pass) isCancelled() bool { return p.cancelled.Load() }

// evaluate fills in the values of s, consulting the cache before running
// the escape loop. It stops early, leaving s incomplete, if the pass is
// cancelled.
func (p *pass) evaluate(s grid.Strip) grid.Strip {
	s.Iters = make([]int, s.Len)
	s.Kinds = make([]grid.Kind, s.Len)

	var computed, cached int64
	for n := range s.Len {
		if n%cancelCheckEvery == 0 && p.isCancelled() {
			break
		}
		x, y := s.At(n)
		if v, ok := p.cache.Lookup(x, y); ok {
			s.Iters[n], s.Kinds[n] = v, grid.Cached
			cached++
			continue
		}
		cx, cy := p.mapper(x, y)
		s.Iters[n], s.Kinds[n] = mandel.Escape(cx, cy, p.maxIter), grid.Computed
		computed++
	}
	p.computed.Add(computed)
	p.cached.Add(cached)
	return s
}

// border evaluates and writes the four edges of the image.
func (p *pass) border() {
	w, h := p.grid.Width(), p.grid.Height()

	strips := []grid.Strip{{X: 0, Y: 0, Len: w}}
	if h > 1 {
		strips = append(strips, grid.Strip{X: 0, Y: h - 1, Len: w})
	}
	if h > 2 {
		strips = append(strips, grid.Strip{X: 0, Y: 1, Vertical: true, Len: h - 2})
		if w > 1 {
			strips = append(strips, grid.Strip{X: w - 1, Y: 1, Vertical: true, Len: h - 2})
		}
	}

	for i := range strips {
		strips[i] = p.evaluate(strips[i])
		if p.isCancelled() {
			return
		}
	}
	p.grid.WriteStrips(strips...)
}

// trace resolves the interior of r, whose border is already in the grid.
//
// A uniform border fills the interior with the border value. This assumes
// the level set is simply connected at pixel resolution, which holds for
// typical views but not for every one: an island of a different value
// fully enclosed by the border is lost.
//
// Otherwise the cross through the centre is evaluated and written, and
// the four quadrants are offered to idle workers or traced here.
func (p *pass) trace(r grid.Region) {
	if !r.Valid() || !p.grid.Contains(r) {
		panic(fmt.Sprintf("engine: invalid region %s in %dx%d grid", r, p.grid.Width(), p.grid.Height()))
	}
	if p.isCancelled() || !r.HasInterior() {
		return
	}

	if v, ok := p.grid.UniformBorder(r); ok {
		p.grid.Fill(r, v)
		p.filled.Add(int64(r.Interior()))
		return
	}

	cross := r.Cross()
	for i := range cross {
		cross[i] = p.evaluate(cross[i])
	}
	if p.isCancelled() {
		return
	}
	p.grid.WriteStrips(cross...)

	for _, q := range r.Quadrants() {
		if !q.HasInterior() {
			continue
		}
		if p.isCancelled() {
			return
		}
		if p.sched != nil && p.sched.offer(p, q) {
			p.handoffs.Add(1)
			continue
		}
		p.trace(q)
	}
}

func (p *pass) stats(elapsed time.Duration) mandel.Stats {
	return mandel.Stats{
		Computed: int(p.computed.Load()),
		Cached:   int(p.cached.Load()),
		Filled:   int(p.filled.Load()),
		Handoffs: int(p.handoffs.Load()),
		Elapsed:  elapsed,
	}
}
