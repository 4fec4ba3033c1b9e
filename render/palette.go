// Package render turns iteration grids into images.
//
// Colours come from a 256 entry palette looked up with
// fmod(iter*multiple, 255); points that reached the bound are black.
package render

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Schemes is the number of available palettes, numbered from 0.
const Schemes = 9

// Palette maps a colour index to a colour.
type Palette [256]color.RGBA

var (
	black      = rgb(0, 0, 0)
	white      = rgb(255, 255, 255)
	red        = rgb(255, 0, 0)
	green      = rgb(0, 255, 0)
	blue       = rgb(0, 0, 255)
	cyan       = rgb(0, 255, 255)
	yellow     = rgb(255, 255, 0)
	magenta    = rgb(255, 0, 255)
	orange     = rgb(255, 165, 0)
	pink       = rgb(255, 135, 135)
	darkRed    = rgb(209, 2, 2)
	darkGreen  = rgb(8, 172, 8)
	lightGreen = rgb(115, 255, 115)
)

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// segment blends from one colour to the next over palette[from:to].
type segment struct {
	c1, c2   colorful.Color
	from, to int
}

var gradients = map[int][]segment{
	1: {{black, blue, 0, 64}, {blue, white, 64, 144}, {white, orange, 144, 196}, {orange, black, 196, 256}},
	2: {{black, green, 0, 85}, {green, blue, 85, 170}, {blue, black, 170, 256}},
	3: {{black, red, 0, 180}, {red, orange, 180, 215}, {orange, black, 215, 256}},
	4: {{black, cyan, 0, 110}, {cyan, white, 110, 220}, {white, black, 220, 256}},
	5: {
		{red, orange, 0, 42}, {orange, yellow, 42, 84}, {yellow, green, 84, 127},
		{green, blue, 127, 170}, {blue, magenta, 170, 212}, {magenta, red, 212, 256},
	},
	6: {{darkRed, pink, 0, 128}, {darkGreen, lightGreen, 128, 256}},
	7: {{white, black, 0, 256}},
}

// NewPalette builds the palette of a scheme:
//
//	0  blue/brown polynomial (default)
//	1  black, blue, white, orange
//	2  black, green, blue
//	3  black, red, orange
//	4  black, cyan, white
//	5  rainbow stops
//	6  red then green
//	7  white to black
//	8  HSV hue wheel
//
// Unknown schemes fall back to 0.
func NewPalette(scheme int) *Palette {
	p := new(Palette)
	switch {
	case scheme == 8:
		for i := range p {
			p[i] = toRGBA(colorful.Hsv(360*float64(i)/256, 1, 1))
		}
	case gradients[scheme] != nil:
		for _, s := range gradients[scheme] {
			p.blend(s)
		}
	default:
		for i := range p {
			f := float64(i)
			p[i] = color.RGBA{
				R: coerce(23.45 - 1.880*f + 0.0461*f*f - 0.000152*f*f*f),
				G: coerce(17.30 - 0.417*f + 0.0273*f*f - 0.000101*f*f*f),
				B: coerce(25.22 + 7.902*f - 0.0681*f*f + 0.000145*f*f*f),
				A: 255,
			}
		}
	}
	return p
}

func (p *Palette) blend(s segment) {
	n := s.to - s.from
	for i := 0; i < n; i++ {
		p[s.from+i] = toRGBA(s.c1.BlendRgb(s.c2, float64(i)/float64(n)))
	}
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func coerce(v float64) uint8 {
	return uint8(min(max(int(v), 0), 255))
}

// Mapper is a mandel.ColorMapper over a palette.
type Mapper struct {
	Palette  *Palette
	Multiple float64 // spreads the palette over iterations; <= 0 means 1
}

// Color returns black for points that reached maxIter and for unset
// cells, and the palette entry at fmod(iter*Multiple, 255) otherwise.
func (m Mapper) Color(iter, maxIter int) color.RGBA {
	if iter < 0 || iter >= maxIter {
		return color.RGBA{A: 255}
	}
	mult := m.Multiple
	if mult <= 0 {
		mult = 1
	}
	return m.Palette[int(math.Mod(float64(iter)*mult, 255))]
}
