package render

import (
	"errors"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	mandel "github.com/marben/mandel_explorer"
	"github.com/marben/mandel_explorer/grid"
)

// Options selects how a grid is coloured.
type Options struct {
	Scheme   int
	Multiple float64

	// Skeleton tints the cells the tracer filled without evaluating them,
	// which makes the quadtree visible.
	Skeleton bool
}

// skeletonTint is blended into filled cells in skeleton view.
var skeletonTint = colorful.Color{R: 0.15, G: 0.15, B: 0.15}

// Renderer colours completed grids.
type Renderer struct {
	opts   Options
	mapper Mapper
}

var _ mandel.Renderer = (*Renderer)(nil)

// New returns a Renderer for opts.
func New(opts Options) *Renderer {
	return &Renderer{
		opts:   opts,
		mapper: Mapper{Palette: NewPalette(opts.Scheme), Multiple: opts.Multiple},
	}
}

// Options returns the options the Renderer was created with.
func (r *Renderer) Options() Options { return r.opts }

// Render draws g into a new image of the same size.
func (r *Renderer) Render(g *grid.Grid, maxIter int) (*image.RGBA, error) {
	if g == nil {
		return nil, errors.New("render: nil grid")
	}
	img := image.NewRGBA(image.Rect(0, 0, g.Width(), g.Height()))
	g.Each(func(x, y, iter int, k grid.Kind) {
		img.SetRGBA(x, y, r.Color(iter, maxIter, k))
	})
	return img, nil
}

// Color returns the colour of a single cell of kind k.
func (r *Renderer) Color(iter, maxIter int, k grid.Kind) color.RGBA {
	c := r.mapper.Color(iter, maxIter)
	if r.opts.Skeleton && k == grid.Filled {
		cc, _ := colorful.MakeColor(c)
		return toRGBA(cc.BlendRgb(skeletonTint, 0.6))
	}
	return c
}

// Image renders g with opts.
func Image(g *grid.Grid, maxIter int, opts Options) (*image.RGBA, error) {
	return New(opts).Render(g, maxIter)
}
