package grid

// Reuse decides whether a value v stored by a pass with bound lastMaxIter
// is still the answer under the new bound maxIter, for an unchanged view.
//
//   - raised bound: values below the old bound escaped and escape at the
//     same iteration;
//   - lowered bound: values at or above the new bound do not escape
//     within it and clamp to maxIter.
//
// Everything else has to be recomputed.
func Reuse(v, maxIter, lastMaxIter int) (int, bool) {
	if v < 0 {
		return 0, false
	}
	switch {
	case maxIter > lastMaxIter && v < lastMaxIter:
		return v, true
	case maxIter < lastMaxIter && v >= maxIter:
		return maxIter, true
	}
	return 0, false
}

// Cache serves values of the previous completed grid to a new pass that
// only changed the iteration bound. A nil *Cache never hits.
type Cache struct {
	prev        *Grid
	maxIter     int
	lastMaxIter int
}

// NewCache returns a cache over prev, or nil when prev is nil, the bound
// did not change or the size differs from width×height.
// prev must not be written while the cache is in use.
func NewCache(prev *Grid, width, height, maxIter, lastMaxIter int) *Cache {
	if prev == nil || maxIter == lastMaxIter {
		return nil
	}
	if prev.width != width || prev.height != height {
		return nil
	}
	return &Cache{prev: prev, maxIter: maxIter, lastMaxIter: lastMaxIter}
}

// Lookup returns the reusable value at (x, y), if any.
func (c *Cache) Lookup(x, y int) (int, bool) {
	if c == nil {
		return 0, false
	}
	// prev is published and immutable, no lock needed.
	return Reuse(c.prev.iters[c.prev.index(x, y)], c.maxIter, c.lastMaxIter)
}
