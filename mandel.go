package mandel

import (
	"fmt"
	"math"
)

// Viewport is the rectangle of the complex plane shown by the image.
// Left/Top is the corner mapped to pixel (0, 0); Rotation (radians) turns
// every sampled point about the viewport centre.
type Viewport struct {
	Left, Top     float64
	Width, Height float64
	Rotation      float64
}

// Home is the starting view of the explorer.
var Home = Viewport{
	Left:   -1.5,
	Top:    -1.0,
	Width:  2,
	Height: 2,
}

// HomeMaxIter is the iteration bound used together with Home.
const HomeMaxIter = 100

// Landmark is a named view worth visiting.
type Landmark struct {
	Name     string
	Viewport Viewport
}

// Classic regions / landmarks in the Mandelbrot set
var Landmarks = []Landmark{
	// Seahorse Valley: dense filaments and repeating “seahorse” curls
	{"seahorse-valley", fromBounds(-0.8, -0.7, 0.05, 0.15)},

	// Elephant Valley: large bulb with trunk-like tendrils
	{"elephant-valley", fromBounds(-1.85, -1.75, -0.10, -0.02)},

	// Spiral Minibrot: small Mandelbrot copy with tight spiral arms
	{"spiral-minibrot", fromBounds(-0.7435, -0.7420, 0.1310, 0.1325)},

	// Triple Spiral: threefold symmetric spiral structure
	{"triple-spiral", fromBounds(-0.7480, -0.7450, 0.0950, 0.0980)},

	// Valley of the Dragon: deep, highly detailed spiral filaments
	{"valley-of-the-dragon", fromBounds(-0.7400, -0.7350, 0.1800, 0.1850)},

	// Minibrot in a Mini-Spiral: self-similar copy inside a spiral arm
	{"minibrot-in-mini-spiral", fromBounds(-1.7390, -1.7375, -0.0235, -0.0220)},
}

func fromBounds(xmin, xmax, ymin, ymax float64) Viewport {
	return Viewport{Left: xmin, Top: ymin, Width: xmax - xmin, Height: ymax - ymin}
}

// Valid reports whether the viewport has a positive area.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0 &&
		!math.IsInf(v.Width, 0) && !math.IsInf(v.Height, 0)
}

// Center returns the centre of the viewport in the complex plane.
func (v Viewport) Center() (float64, float64) {
	return v.Left + v.Width/2, v.Top + v.Height/2
}

func (v Viewport) String() string {
	cx, cy := v.Center()
	return fmt.Sprintf("center=(%g, %g) size=%gx%g rot=%.3f", cx, cy, v.Width, v.Height, v.Rotation)
}

// Mapper returns a function converting a pixel of a width×height image
// into its (rotated) point of the complex plane.
// It panics if the viewport or the resolution is empty.
func (v Viewport) Mapper(width, height int) func(px, py int) (float64, float64) {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("mandel: invalid resolution %dx%d", width, height))
	}
	if !v.Valid() {
		panic(fmt.Sprintf("mandel: invalid viewport %s", v))
	}
	xinc := v.Width / float64(width)
	yinc := v.Height / float64(height)

	if v.Rotation == 0 {
		return func(px, py int) (float64, float64) {
			return v.Left + float64(px)*xinc, v.Top + float64(py)*yinc
		}
	}

	cx, cy := v.Center()
	theta := v.Rotation
	return func(px, py int) (float64, float64) {
		x := v.Left + float64(px)*xinc
		y := v.Top + float64(py)*yinc
		return rotate(x, y, cx, cy, theta)
	}
}

// PixelToComplex converts a single pixel, see Mapper.
func (v Viewport) PixelToComplex(px, py, width, height int) (float64, float64) {
	return v.Mapper(width, height)(px, py)
}

// rotate turns (x, y) about (cx, cy) by theta radians, going through polar
// form.
func rotate(x, y, cx, cy, theta float64) (float64, float64) {
	dx, dy := x-cx, y-cy
	r := math.Hypot(dx, dy)
	if r == 0 {
		return x, y
	}
	sin, cos := math.Sincos(math.Atan2(dy, dx) + theta)
	return cx + r*cos, cy + r*sin
}

// ZoomAt recentres the viewport on pixel (px, py) of a width×height image
// and scales its size by factor (0.5 zooms in, 2 zooms out).
// The rotation is kept.
func (v Viewport) ZoomAt(px, py, width, height int, factor float64) Viewport {
	nx, ny := v.PixelToComplex(px, py, width, height)
	return v.ZoomCenter(nx, ny, factor)
}

// ZoomCenter centres the viewport on (cx, cy) and scales it by factor.
func (v Viewport) ZoomCenter(cx, cy, factor float64) Viewport {
	w := v.Width * factor
	h := v.Height * factor
	return Viewport{
		Left:     cx - w/2,
		Top:      cy - h/2,
		Width:    w,
		Height:   h,
		Rotation: v.Rotation,
	}
}

// WithRotation returns a copy of v turned to theta radians, normalized to
// [0, 2π).
func (v Viewport) WithRotation(theta float64) Viewport {
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	v.Rotation = theta
	return v
}

// FitAspect returns v resized about its centre so that Width/Height equals
// width/height. The larger extent is kept, so nothing visible is lost.
func (v Viewport) FitAspect(width, height int) Viewport {
	if width <= 0 || height <= 0 || !v.Valid() {
		return v
	}
	want := float64(width) / float64(height)
	cx, cy := v.Center()
	w, h := v.Width, v.Height
	if w/h < want {
		w = h * want
	} else {
		h = w / want
	}
	return Viewport{Left: cx - w/2, Top: cy - h/2, Width: w, Height: h, Rotation: v.Rotation}
}
