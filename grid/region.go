package grid

import "fmt"

// Region is an inclusive pixel rectangle whose border values are known.
type Region struct {
	MinX, MaxX int
	MinY, MaxY int
}

// Valid reports whether the rectangle is non-empty and not inverted.
func (r Region) Valid() bool {
	return r.MinX >= 0 && r.MinY >= 0 && r.MinX <= r.MaxX && r.MinY <= r.MaxY
}

// Width returns the number of columns covered, border included.
func (r Region) Width() int { return r.MaxX - r.MinX + 1 }

// Height returns the number of rows covered, border included.
func (r Region) Height() int { return r.MaxY - r.MinY + 1 }

// HasInterior reports whether at least one pixel lies strictly inside the
// border. Regions narrower or shorter than 3 pixels have none.
func (r Region) HasInterior() bool {
	return r.MaxX-r.MinX >= 2 && r.MaxY-r.MinY >= 2
}

// Interior returns the number of pixels strictly inside the border.
func (r Region) Interior() int {
	if !r.HasInterior() {
		return 0
	}
	return (r.Width() - 2) * (r.Height() - 2)
}

// Mid returns the centre column and row of the region.
func (r Region) Mid() (int, int) {
	return (r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2
}

// Cross returns the interior strips through the region centre: the
// column at midX, then the row at midY left and right of it. Border
// pixels are excluded and every cross pixel appears exactly once.
// A region without interior has no cross.
func (r Region) Cross() []Strip {
	if !r.HasInterior() {
		return nil
	}
	midX, midY := r.Mid()
	strips := []Strip{{X: midX, Y: r.MinY + 1, Vertical: true, Len: r.Height() - 2}}
	if n := midX - r.MinX - 1; n > 0 {
		strips = append(strips, Strip{X: r.MinX + 1, Y: midY, Len: n})
	}
	if n := r.MaxX - midX - 1; n > 0 {
		strips = append(strips, Strip{X: midX + 1, Y: midY, Len: n})
	}
	return strips
}

// Quadrants returns the four regions bordered by the cross through the
// region centre.
func (r Region) Quadrants() [4]Region {
	midX, midY := r.Mid()
	return [4]Region{
		{MinX: r.MinX, MaxX: midX, MinY: r.MinY, MaxY: midY},
		{MinX: midX, MaxX: r.MaxX, MinY: r.MinY, MaxY: midY},
		{MinX: r.MinX, MaxX: midX, MinY: midY, MaxY: r.MaxY},
		{MinX: midX, MaxX: r.MaxX, MinY: midY, MaxY: r.MaxY},
	}
}

func (r Region) String() string {
	return fmt.Sprintf("[%d..%d]x[%d..%d]", r.MinX, r.MaxX, r.MinY, r.MaxY)
}
