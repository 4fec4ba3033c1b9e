// Package grid holds the iteration counts of one generated image.
//
// A Grid is written concurrently by the tracer during a generation pass
// and is read-only once the pass is published. Values are stored in a flat
// row-major slice: index = y*width + x.
package grid

import (
	"fmt"
	"sync"
)

// Unset marks a cell not yet written in the current pass.
const Unset = -1

// Kind records how a cell got its value.
type Kind uint8

const (
	KindUnset Kind = iota
	Computed       // evaluated by the escape loop
	Cached         // reused from the previous grid
	Filled         // inferred from a uniform region border
)

func (k Kind) String() string {
	switch k {
	case Computed:
		return "computed"
	case Cached:
		return "cached"
	case Filled:
		return "filled"
	default:
		return "unset"
	}
}

// Grid is a width×height array of escape counts.
//
// Thread safety: reads take the shared lock and writes the exclusive one,
// each for a single strip, cross or fill.
type Grid struct {
	width  int
	height int

	mu    sync.RWMutex
	iters []int
	kinds []Kind
}

// New returns a grid with every cell Unset.
// It panics if either dimension is not positive.
func New(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("grid: invalid size %dx%d", width, height))
	}
	g := &Grid{
		width:  width,
		height: height,
		iters:  make([]int, width*height),
		kinds:  make([]Kind, width*height),
	}
	for i := range g.iters {
		g.iters[i] = Unset
	}
	return g
}

// Width returns the grid width in pixels.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in pixels.
func (g *Grid) Height() int { return g.height }

// Bounds returns the Region covering the whole grid.
func (g *Grid) Bounds() Region {
	return Region{MinX: 0, MaxX: g.width - 1, MinY: 0, MaxY: g.height - 1}
}

// Contains reports whether r lies inside the grid.
func (g *Grid) Contains(r Region) bool {
	return r.MinX >= 0 && r.MinY >= 0 && r.MaxX < g.width && r.MaxY < g.height
}

func (g *Grid) index(x, y int) int {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		panic(fmt.Sprintf("grid: pixel (%d, %d) out of %dx%d", x, y, g.width, g.height))
	}
	return y*g.width + x
}

// At returns the value at (x, y).
func (g *Grid) At(x, y int) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.iters[g.index(x, y)]
}

// KindAt returns how the value at (x, y) was obtained.
func (g *Grid) KindAt(x, y int) Kind {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.kinds[g.index(x, y)]
}

// Set writes a single cell.
func (g *Grid) Set(x, y, v int, k Kind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.index(x, y)
	g.iters[i] = v
	g.kinds[i] = k
}

// Strip is a one pixel wide run of values starting at (X, Y), going down
// when Vertical is set and right otherwise.
type Strip struct {
	X, Y     int
	Vertical bool
	Len      int
	Iters    []int
	Kinds    []Kind
}

// At returns the pixel covered by the n-th element of the strip.
func (s Strip) At(n int) (int, int) {
	if s.Vertical {
		return s.X, s.Y + n
	}
	return s.X + n, s.Y
}

// WriteStrips stores the strips under a single exclusive lock.
func (g *Grid) WriteStrips(strips ...Strip) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range strips {
		for n, v := range s.Iters {
			i := g.index(s.At(n))
			g.iters[i] = v
			g.kinds[i] = s.Kinds[n]
		}
	}
}

// UniformBorder reports whether every pixel on the border of r holds the
// same value, and returns that value.
func (g *Grid) UniformBorder(r Region) (int, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	top := g.index(r.MinX, r.MinY)
	want := g.iters[top]

	bottom := g.index(r.MinX, r.MaxY)
	for x := 0; x <= r.MaxX-r.MinX; x++ {
		if g.iters[top+x] != want || g.iters[bottom+x] != want {
			return 0, false
		}
	}
	left := g.index(r.MinX, r.MinY)
	right := g.index(r.MaxX, r.MinY)
	for y := 1; y < r.MaxY-r.MinY; y++ {
		off := y * g.width
		if g.iters[left+off] != want || g.iters[right+off] != want {
			return 0, false
		}
	}
	return want, true
}

// Fill writes v into every interior pixel of r.
func (g *Grid) Fill(r Region, v int) {
	if !r.HasInterior() {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for y := r.MinY + 1; y < r.MaxY; y++ {
		row := g.index(r.MinX+1, y)
		for x := 0; x < r.MaxX-r.MinX-1; x++ {
			g.iters[row+x] = v
			g.kinds[row+x] = Filled
		}
	}
}

// Iters returns a copy of all values in row-major order.
func (g *Grid) Iters() []int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]int, len(g.iters))
	copy(out, g.iters)
	return out
}

// Each calls fn for every cell in row-major order while holding the shared
// lock. fn must not write to the grid.
func (g *Grid) Each(fn func(x, y, iter int, k Kind)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for i, v := range g.iters {
		fn(i%g.width, i/g.width, v, g.kinds[i])
	}
}

// Count returns the number of cells of kind k.
func (g *Grid) Count(k Kind) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, c := range g.kinds {
		if c == k {
			n++
		}
	}
	return n
}

// Complete reports whether every cell has been written.
func (g *Grid) Complete() bool {
	return g.Count(KindUnset) == 0
}

// Equal reports whether both grids have the same size and values.
// Kinds are ignored.
func (g *Grid) Equal(o *Grid) bool {
	if g.width != o.width || g.height != o.height {
		return false
	}
	a, b := g.Iters(), o.Iters()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Diff returns the number of cells whose values differ. Grids must have
// the same size.
func (g *Grid) Diff(o *Grid) int {
	if g.width != o.width || g.height != o.height {
		panic("grid: Diff of differently sized grids")
	}
	a, b := g.Iters(), o.Iters()
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}
