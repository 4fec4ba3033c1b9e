package mandel

import (
	"math"
	"testing"
)

const eps = 1e-12

func near(a, b float64) bool { return math.Abs(a-b) < eps }

// =============================================================================
// Viewport
// =============================================================================

func TestViewport_Valid(t *testing.T) {
	tests := []struct {
		name string
		vp   Viewport
		want bool
	}{
		{"home", Home, true},
		{"zero width", Viewport{Left: 0, Top: 0, Width: 0, Height: 1}, false},
		{"negative height", Viewport{Width: 1, Height: -1}, false},
		{"infinite width", Viewport{Width: math.Inf(1), Height: 1}, false},
		{"nan height", Viewport{Width: 1, Height: math.NaN()}, false},
		{"rotated", Home.WithRotation(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vp.Valid(); got != tt.want {
				t.Errorf("%v.Valid() = %v, want %v", tt.vp, got, tt.want)
			}
		})
	}
}

func TestViewport_Landmarks(t *testing.T) {
	seen := map[string]bool{}
	for _, l := range Landmarks {
		if l.Name == "" || seen[l.Name] {
			t.Errorf("landmark name %q empty or duplicated", l.Name)
		}
		seen[l.Name] = true
		if !l.Viewport.Valid() {
			t.Errorf("landmark %s has invalid viewport %v", l.Name, l.Viewport)
		}
	}
}

func TestViewport_Mapper(t *testing.T) {
	m := Home.Mapper(100, 100)

	x, y := m(0, 0)
	if !near(x, -1.5) || !near(y, -1) {
		t.Errorf("pixel (0,0) = (%g, %g), want (-1.5, -1)", x, y)
	}
	x, y = m(50, 50)
	if !near(x, -0.5) || !near(y, 0) {
		t.Errorf("pixel (50,50) = (%g, %g), want (-0.5, 0)", x, y)
	}
	x, y = m(99, 0)
	if !near(x, 0.48) || !near(y, -1) {
		t.Errorf("pixel (99,0) = (%g, %g), want (0.48, -1)", x, y)
	}
}

func TestViewport_MapperRotation(t *testing.T) {
	vp := Home.WithRotation(math.Pi / 2)
	m := vp.Mapper(100, 100)

	// The centre does not move.
	x, y := m(50, 50)
	if !near(x, -0.5) || !near(y, 0) {
		t.Errorf("rotated centre = (%g, %g), want (-0.5, 0)", x, y)
	}

	// (-1.5, -1) is (-1, -1) from the centre; a quarter turn takes it to (1, -1).
	x, y = m(0, 0)
	if !near(x, 0.5) || !near(y, -1) {
		t.Errorf("rotated corner = (%g, %g), want (0.5, -1)", x, y)
	}

	// A full turn is the identity.
	full := Home
	full.Rotation = 2 * math.Pi
	fm, hm := full.Mapper(64, 48), Home.Mapper(64, 48)
	for _, p := range [][2]int{{0, 0}, {13, 7}, {63, 47}} {
		ax, ay := fm(p[0], p[1])
		bx, by := hm(p[0], p[1])
		if math.Abs(ax-bx) > 1e-9 || math.Abs(ay-by) > 1e-9 {
			t.Errorf("full turn moved pixel %v: (%g, %g) vs (%g, %g)", p, ax, ay, bx, by)
		}
	}
}

func TestViewport_MapperPanics(t *testing.T) {
	tests := []struct {
		name string
		vp   Viewport
		w, h int
	}{
		{"zero width image", Home, 0, 10},
		{"negative height image", Home, 10, -1},
		{"empty viewport", Viewport{Width: 0, Height: 1}, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Mapper did not panic")
				}
			}()
			tt.vp.Mapper(tt.w, tt.h)
		})
	}
}

func TestViewport_ZoomAt(t *testing.T) {
	in := Home.ZoomAt(50, 50, 100, 100, 0.5)
	want := Viewport{Left: -1, Top: -0.5, Width: 1, Height: 1}
	if !near(in.Left, want.Left) || !near(in.Top, want.Top) || !near(in.Width, want.Width) || !near(in.Height, want.Height) {
		t.Errorf("ZoomAt centre 0.5 = %+v, want %+v", in, want)
	}

	out := Home.ZoomAt(0, 0, 100, 100, 2)
	cx, cy := out.Center()
	if !near(cx, -1.5) || !near(cy, -1) || !near(out.Width, 4) {
		t.Errorf("ZoomAt corner 2 = %+v, want centre (-1.5, -1) width 4", out)
	}

	rot := Home.WithRotation(0.3).ZoomAt(10, 20, 100, 100, 0.5)
	if rot.Rotation != 0.3 {
		t.Errorf("ZoomAt lost rotation: %g", rot.Rotation)
	}
}

func TestViewport_WithRotation(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		got := Home.WithRotation(tt.in).Rotation
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WithRotation(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestViewport_FitAspect(t *testing.T) {
	wide := Home.FitAspect(200, 100)
	if !near(wide.Width, 4) || !near(wide.Height, 2) {
		t.Errorf("FitAspect(200, 100) size = %gx%g, want 4x2", wide.Width, wide.Height)
	}
	tall := Home.FitAspect(100, 400)
	if !near(tall.Width, 2) || !near(tall.Height, 8) {
		t.Errorf("FitAspect(100, 400) size = %gx%g, want 2x8", tall.Width, tall.Height)
	}
	for _, v := range []Viewport{wide, tall} {
		cx, cy := v.Center()
		if !near(cx, -0.5) || !near(cy, 0) {
			t.Errorf("FitAspect moved the centre to (%g, %g)", cx, cy)
		}
	}
	if same := Home.FitAspect(50, 50); same != Home {
		t.Errorf("FitAspect(50, 50) = %+v, want %+v", same, Home)
	}
}

// =============================================================================
// Stats
// =============================================================================

func TestStats_Pixels(t *testing.T) {
	s := Stats{Computed: 10, Cached: 5, Filled: 85, Handoffs: 3}
	if got := s.Pixels(); got != 100 {
		t.Errorf("Pixels() = %d, want 100", got)
	}
}
