package render

import (
	"image/color"
	"testing"
)

func TestNewPalette_Endpoints(t *testing.T) {
	tests := []struct {
		scheme int
		index  int
		want   color.RGBA
	}{
		{1, 0, color.RGBA{0, 0, 0, 255}},
		{1, 64, color.RGBA{0, 0, 255, 255}},
		{1, 144, color.RGBA{255, 255, 255, 255}},
		{2, 85, color.RGBA{0, 255, 0, 255}},
		{3, 180, color.RGBA{255, 0, 0, 255}},
		{4, 110, color.RGBA{0, 255, 255, 255}},
		{5, 0, color.RGBA{255, 0, 0, 255}},
		{6, 0, color.RGBA{209, 2, 2, 255}},
		{6, 128, color.RGBA{8, 172, 8, 255}},
		{7, 0, color.RGBA{255, 255, 255, 255}},
		{8, 0, color.RGBA{255, 0, 0, 255}},
	}
	for _, tt := range tests {
		p := NewPalette(tt.scheme)
		if got := p[tt.index]; got != tt.want {
			t.Errorf("scheme %d [%d] = %v, want %v", tt.scheme, tt.index, got, tt.want)
		}
	}
}

func TestNewPalette_Default(t *testing.T) {
	p := NewPalette(0)
	// 23.45 - 0 ... truncated like the blue/brown polynomial.
	if want := (color.RGBA{23, 17, 25, 255}); p[0] != want {
		t.Errorf("scheme 0 [0] = %v, want %v", p[0], want)
	}
	if *NewPalette(-1) != *p || *NewPalette(Schemes) != *p {
		t.Error("unknown schemes do not fall back to 0")
	}
}

func TestNewPalette_Opaque(t *testing.T) {
	for s := 0; s < Schemes; s++ {
		for i, c := range NewPalette(s) {
			if c.A != 255 {
				t.Fatalf("scheme %d [%d] not opaque: %v", s, i, c)
			}
		}
	}
}

func TestMapper_Color(t *testing.T) {
	p := NewPalette(1)
	m := Mapper{Palette: p, Multiple: 1}

	black := color.RGBA{A: 255}
	if got := m.Color(100, 100); got != black {
		t.Errorf("Color(max, max) = %v, want black", got)
	}
	if got := m.Color(150, 100); got != black {
		t.Errorf("Color(beyond max) = %v, want black", got)
	}
	if got := m.Color(-1, 100); got != black {
		t.Errorf("Color(unset) = %v, want black", got)
	}
	if got := m.Color(64, 1000); got != p[64] {
		t.Errorf("Color(64) = %v, want %v", got, p[64])
	}
	// Indices wrap at 255.
	if got := m.Color(255+10, 1000); got != p[10] {
		t.Errorf("Color(265) = %v, want %v", got, p[10])
	}

	m.Multiple = 3
	if got := m.Color(10, 1000); got != p[30] {
		t.Errorf("Color(10) with multiple 3 = %v, want %v", got, p[30])
	}
	m.Multiple = 0
	if got := m.Color(10, 1000); got != p[10] {
		t.Errorf("Color(10) with multiple 0 = %v, want %v", got, p[10])
	}
}
