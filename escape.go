package mandel

// Escape returns the iteration at which the orbit of c = (cx, cy) under
// z ↦ z² + c leaves the radius-2 disc, or maxIter if it stays inside for
// maxIter iterations.
//
// The loop uses three multiplications per step. The orbit is checkpointed
// at iterations 1, 2, 4, 8, ...; coming back exactly to the checkpoint
// means the orbit is periodic and will never escape.
//
// Escape has no shared state and is safe for concurrent use.
func Escape(cx, cy float64, maxIter int) int {
	var x, y, xsq, ysq float64
	var xcheck, ycheck float64
	next := 1

	for iter := 0; iter < maxIter; iter++ {
		y = x * y
		y += y
		y += cy
		x = xsq - ysq + cx

		xsq = x * x
		ysq = y * y
		if xsq+ysq > 4.0 {
			return iter
		}

		if x == xcheck && y == ycheck {
			return maxIter
		}
		if iter+1 == next {
			xcheck, ycheck = x, y
			next += next
		}
	}
	if maxIter < 0 {
		return 0
	}
	return maxIter
}
