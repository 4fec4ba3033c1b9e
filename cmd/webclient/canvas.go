//go:build js && wasm

package main

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"syscall/js"
	"time"
)

func canvas() js.Value {
	return js.Global().Get("document").Call("getElementById", "myCanvas")
}

func initCanvas(width, height int, color string) {
	c := canvas()
	c.Set("width", width)
	c.Set("height", height)

	ctx := c.Call("getContext", "2d")
	ctx.Set("fillStyle", color)
	ctx.Call("fillRect", 0, 0, width, height)
}

// drawPNG decodes data and puts it on the canvas, resizing the canvas to
// the image.
func drawPNG(data []byte) error {
	start := time.Now()
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	img, ok := src.(*image.RGBA)
	if !ok {
		b := src.Bounds()
		img = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)
	}

	width, height := img.Rect.Dx(), img.Rect.Dy()
	c := canvas()
	if c.Get("width").Int() != width || c.Get("height").Int() != height {
		c.Set("width", width)
		c.Set("height", height)
	}

	jsData := js.Global().Get("Uint8ClampedArray").New(len(img.Pix))
	js.CopyBytesToJS(jsData, img.Pix)
	imageData := js.Global().Get("ImageData").New(jsData, width, height)
	c.Call("getContext", "2d").Call("putImageData", imageData, 0, 0)

	logScreenf("draw took %s", time.Since(start))
	return nil
}

// canvasPoint converts a mouse event position to canvas pixels.
func canvasPoint(ev js.Value) (int, int) {
	c := canvas()
	rect := c.Call("getBoundingClientRect")
	sx := c.Get("width").Float() / rect.Get("width").Float()
	sy := c.Get("height").Float() / rect.Get("height").Float()
	x := (ev.Get("clientX").Float() - rect.Get("left").Float()) * sx
	y := (ev.Get("clientY").Float() - rect.Get("top").Float()) * sy
	return int(x), int(y)
}
