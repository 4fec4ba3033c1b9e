package main

import (
	"image/color"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/marben/mandel_explorer/engine"
)

// upperHalf shows the top pixel in the foreground and the bottom pixel in
// the background of a cell.
const upperHalf = '▀'

var helpLines = []string{
	"Mandelbrot explorer",
	"",
	"Up / Down       iterations ± step",
	"Left / Right    colour multiple",
	"+ / -           zoom in / out",
	"left click      zoom in at pointer",
	"right click     zoom out at pointer",
	"middle click    recentre",
	"PgUp / PgDn     rotate ±5°",
	"Home            reset rotation",
	"0-8             colour scheme",
	"k               skeleton view",
	"r               reset view",
	"p               export PNG",
	"b / n           bookmark / next bookmark",
	"Tab             this help",
	"q / Esc         quit",
}

func rgbColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (a *app) draw(screen tcell.Screen) {
	screen.Clear()
	cols, rows := screen.Size()

	if a.img != nil {
		b := a.img.Bounds()
		for y := 0; y < rows-1 && 2*y < b.Dy(); y++ {
			for x := 0; x < cols && x < b.Dx(); x++ {
				style := tcell.StyleDefault.Foreground(rgbColor(a.img.RGBAAt(x, 2*y)))
				if 2*y+1 < b.Dy() {
					style = style.Background(rgbColor(a.img.RGBAAt(x, 2*y+1)))
				}
				screen.SetContent(x, y, upperHalf, nil, style)
			}
		}
	}

	drawText(screen, 0, rows-1, cols, a.statusLine(), tcell.StyleDefault.Reverse(true))
	if a.help {
		drawBox(screen, cols, rows, helpLines)
	}
	screen.Show()
}

func (a *app) statusLine() string {
	if a.status != "" {
		return a.status
	}
	state := "idle"
	if a.handle != nil {
		state = a.handle.State().String()
	} else if a.snap.Grid != nil {
		state = engine.Done.String()
	}
	s := a.snap.Stats
	return a.printer.Sprintf("iter %d  scheme %d  x%g  %s  computed %d  cached %d  filled %d  %v",
		a.maxIter, a.opts.Scheme, a.opts.Multiple, state, s.Computed, s.Cached, s.Filled, s.Elapsed.Round(1e6))
}

// drawText writes s from (x, y), padding with spaces up to width columns.
func drawText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) int {
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if col+w > x+width {
			break
		}
		screen.SetContent(col, y, r, nil, style)
		col += max(w, 1)
	}
	for ; col < x+width; col++ {
		screen.SetContent(col, y, ' ', nil, style)
	}
	return col
}

// drawBox centres lines in a framed box.
func drawBox(screen tcell.Screen, cols, rows int, lines []string) {
	inner := 0
	for _, l := range lines {
		inner = max(inner, runewidth.StringWidth(l))
	}
	w, h := inner+4, len(lines)+2
	x0, y0 := max((cols-w)/2, 0), max((rows-h)/2, 0)
	style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)

	border := "+" + strings.Repeat("-", w-2) + "+"
	drawText(screen, x0, y0, w, border, style)
	for i, l := range lines {
		drawText(screen, x0, y0+1+i, w, "| "+runewidth.FillRight(l, inner)+" |", style)
	}
	drawText(screen, x0, y0+h-1, w, border, style)
}
