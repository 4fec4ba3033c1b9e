// Package export writes rendered views to PNG files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/term"

	mandel "github.com/marben/mandel_explorer"
)

// ErrTerminal is returned when PNG data would be written to a terminal.
var ErrTerminal = errors.New("export: refusing to write PNG to a terminal")

// TimeLayout names exported files after the moment they were saved.
const TimeLayout = "2006-01-02.15-04-05"

// Options controls the exported image.
type Options struct {
	Scale   int    // integer upscaling factor; 0 and 1 keep the size
	Caption string // drawn on a bar along the bottom edge when set
}

// Filename returns the file name of an image saved at t.
func Filename(t time.Time) string {
	return t.Format(TimeLayout) + ".png"
}

// Prepare applies opts to img and returns the image to encode.
func Prepare(img image.Image, opts Options) *image.RGBA {
	b := img.Bounds()
	scale := max(opts.Scale, 1)
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	if scale == 1 {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}
	if opts.Caption != "" {
		caption(dst, opts.Caption)
	}
	return dst
}

// caption draws text in white on a translucent bar at the bottom of dst.
func caption(dst *image.RGBA, text string) {
	face := basicfont.Face7x13
	h := face.Metrics().Height.Ceil() + 4
	b := dst.Bounds()
	bar := image.Rect(b.Min.X, max(b.Max.Y-h, b.Min.Y), b.Max.X, b.Max.Y)
	draw.Draw(dst, bar, image.NewUniform(color.RGBA{A: 160}), image.Point{}, draw.Over)

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(bar.Min.X+4, bar.Max.Y-face.Metrics().Descent.Ceil()-2),
	}
	d.DrawString(text)
}

// Encode writes img as PNG to w after applying opts. Writing to a
// terminal fails with ErrTerminal.
func Encode(w io.Writer, img image.Image, opts Options) error {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return ErrTerminal
	}
	if err := png.Encode(w, Prepare(img, opts)); err != nil {
		return fmt.Errorf("export: encode: %w", err)
	}
	return nil
}

// PNG returns the encoded image.
func PNG(img image.Image, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes img into dir under a timestamped name and returns the path.
func Save(dir string, img image.Image, opts Options) (string, error) {
	return SaveAt(dir, time.Now(), img, opts)
}

// SaveAt is Save with an explicit timestamp.
func SaveAt(dir string, t time.Time, img image.Image, opts Options) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	data, err := PNG(img, opts)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename(t))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	mandel.Logger().Info("export: saved image", "path", path, "size", humanize.Bytes(uint64(len(data))))
	return path, nil
}
