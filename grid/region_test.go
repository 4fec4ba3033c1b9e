package grid

import "testing"

func TestRegion_Geometry(t *testing.T) {
	tests := []struct {
		name        string
		r           Region
		valid       bool
		hasInterior bool
		interior    int
	}{
		{"single pixel", Region{0, 0, 0, 0}, true, false, 0},
		{"two wide", Region{0, 1, 0, 10}, true, false, 0},
		{"three by three", Region{0, 2, 0, 2}, true, true, 1},
		{"ten by five", Region{3, 12, 4, 8}, true, true, 8 * 3},
		{"inverted", Region{5, 4, 0, 10}, false, false, 0},
		{"negative", Region{-1, 4, 0, 10}, false, true, 4 * 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.r.HasInterior(); got != tt.hasInterior {
				t.Errorf("HasInterior() = %v, want %v", got, tt.hasInterior)
			}
			if got := tt.r.Interior(); got != tt.interior {
				t.Errorf("Interior() = %d, want %d", got, tt.interior)
			}
		})
	}
}

func TestRegion_CrossCoversCentreOnce(t *testing.T) {
	regions := []Region{
		{0, 2, 0, 2},
		{0, 3, 0, 3},
		{0, 9, 0, 4},
		{10, 30, 5, 6 + 10},
		{0, 2, 0, 50},
		{0, 50, 0, 2},
	}
	for _, r := range regions {
		t.Run(r.String(), func(t *testing.T) {
			midX, midY := r.Mid()
			seen := map[[2]int]int{}
			for _, s := range r.Cross() {
				for n := range s.Len {
					x, y := s.At(n)
					seen[[2]int{x, y}]++
					if x <= r.MinX || x >= r.MaxX || y <= r.MinY || y >= r.MaxY {
						t.Errorf("cross pixel (%d, %d) not in interior", x, y)
					}
					if x != midX && y != midY {
						t.Errorf("cross pixel (%d, %d) off the centre lines", x, y)
					}
				}
			}
			want := (r.Height() - 2) + (r.Width() - 3)
			if len(seen) != want {
				t.Errorf("cross covers %d pixels, want %d", len(seen), want)
			}
			for p, n := range seen {
				if n != 1 {
					t.Errorf("pixel %v covered %d times", p, n)
				}
			}
		})
	}
}

func TestRegion_CrossWithoutInterior(t *testing.T) {
	if c := (Region{0, 1, 0, 1}).Cross(); c != nil {
		t.Errorf("Cross() = %v, want nil", c)
	}
}

func TestRegion_Quadrants(t *testing.T) {
	r := Region{0, 10, 0, 6}
	q := r.Quadrants()
	want := [4]Region{
		{0, 5, 0, 3},
		{5, 10, 0, 3},
		{0, 5, 3, 6},
		{5, 10, 3, 6},
	}
	if q != want {
		t.Errorf("Quadrants() = %v, want %v", q, want)
	}

	// Interiors of the quadrants and the cross partition the interior.
	total := 0
	for _, s := range r.Cross() {
		total += s.Len
	}
	for _, sub := range q {
		total += sub.Interior()
	}
	if total != r.Interior() {
		t.Errorf("cross + quadrant interiors = %d, want %d", total, r.Interior())
	}
}
