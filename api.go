package mandel

import (
	"image"
	"image/color"
	"time"

	"github.com/marben/mandel_explorer/grid"
)

// ColorMapper turns an escape count into a displayable colour.
type ColorMapper interface {
	Color(iter, maxIter int) color.RGBA
}

// Renderer consumes a completed iteration grid.
// The grid passed to Render is not mutated afterwards.
type Renderer interface {
	Render(g *grid.Grid, maxIter int) (*image.RGBA, error)
}

// ImgProvider produces a fully rendered image for a view request.
type ImgProvider interface {
	GetImage(req ViewRequest) (ViewResponse, error)
}

// Stats describes how the pixels of one generation pass were obtained.
type Stats struct {
	Computed int           `json:"computed"` // pixels run through Escape
	Cached   int           `json:"cached"`   // pixels reused from the previous grid
	Filled   int           `json:"filled"`   // interior pixels filled by the tracer
	Handoffs int           `json:"handoffs"` // regions handed to another worker
	Elapsed  time.Duration `json:"elapsed"`
}

// Pixels returns the number of pixels written by the pass.
func (s Stats) Pixels() int {
	return s.Computed + s.Cached + s.Filled
}

// ViewRequest asks a server for one rendered view.
// Bookmark, when set, names a stored view and overrides Viewport.
type ViewRequest struct {
	Viewport Viewport `json:"viewport"`
	MaxIter  int      `json:"max_iter"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Scheme   int      `json:"scheme,omitempty"`
	Multiple float64  `json:"multiple,omitempty"`
	Skeleton bool     `json:"skeleton,omitempty"`
	Bookmark string   `json:"bookmark,omitempty"`
}

// ViewResponse answers a ViewRequest. PNG is empty unless State is "done".
type ViewResponse struct {
	State   string   `json:"state"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	MaxIter int      `json:"max_iter"`
	Stats   Stats    `json:"stats"`
	PNG     []byte   `json:"png,omitempty"`
	Error   string   `json:"error,omitempty"`
	View    Viewport `json:"view"`
}
