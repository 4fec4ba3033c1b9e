package main

import (
	"fmt"
	"image"
	"log"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	mandel "github.com/marben/mandel_explorer"
	"github.com/marben/mandel_explorer/bookmarks"
	"github.com/marben/mandel_explorer/config"
	"github.com/marben/mandel_explorer/engine"
	"github.com/marben/mandel_explorer/export"
	"github.com/marben/mandel_explorer/render"
)

const (
	rotateStep = 5 * math.Pi / 180
	zoomIn     = 0.5
	zoomOut    = 2.0
)

// app is the explorer state. It is only touched by the event loop.
type app struct {
	cfg   config.Config
	store *bookmarks.Store
	eng   *engine.Explorer

	// pixel size of the image: one column and two rows per cell, minus
	// the status line
	width, height int

	view    mandel.Viewport
	maxIter int
	opts    render.Options

	handle *engine.Handle
	snap   engine.Snapshot
	img    *image.RGBA

	help     bool
	bookmark string
	status   string
	buttons  tcell.ButtonMask

	printer *message.Printer
}

func newApp(cfg config.Config, store *bookmarks.Store) *app {
	return &app{
		cfg:     cfg,
		store:   store,
		view:    mandel.Home,
		maxIter: cfg.MaxIter,
		opts:    cfg.RenderOptions(),
		printer: message.NewPrinter(language.English),
	}
}

func (a *app) close() {
	if a.eng != nil {
		a.eng.Close()
	}
}

// resize adapts the image to a terminal of cols×rows cells and starts a
// new pass.
func (a *app) resize(cols, rows int) {
	w, h := max(cols, 1), max((rows-1)*2, 2)
	if w == a.width && h == a.height {
		return
	}
	a.width, a.height = w, h
	if a.eng == nil {
		a.eng = engine.New(w, h, engine.WithWorkers(a.cfg.Workers))
	} else {
		a.eng.Resize(w, h)
	}
	a.img, a.snap = nil, engine.Snapshot{}
	a.view = a.view.FitAspect(w, h)
	a.regenerate()
}

func (a *app) regenerate() {
	a.handle = a.eng.BeginGeneration(a.view, a.maxIter)
}

func (a *app) setView(vp mandel.Viewport) {
	a.view = vp
	a.handle = a.eng.SetViewport(vp)
}

func (a *app) setMaxIter(n int) {
	a.maxIter = max(n, 1)
	a.handle = a.eng.SetIterationBound(a.maxIter)
}

// pending returns the channel closed when the running pass ends, nil when
// nothing runs.
func (a *app) pending() <-chan struct{} {
	if a.handle == nil {
		return nil
	}
	return a.handle.Done()
}

// collect takes the result of the finished pass.
func (a *app) collect() {
	h := a.handle
	if h == nil {
		return
	}
	select {
	case <-h.Done():
	default:
		return
	}
	a.handle = nil
	if h.State() != engine.Done {
		return
	}
	a.snap = h.Snapshot()
	a.rerender()
}

func (a *app) rerender() {
	if a.snap.Grid == nil {
		return
	}
	img, err := render.Image(a.snap.Grid, a.snap.MaxIter, a.opts)
	if err != nil {
		a.status = err.Error()
		return
	}
	a.img = img
}

// handleKey applies a key press and reports whether the explorer should
// quit.
func (a *app) handleKey(ev *tcell.EventKey) bool {
	a.status = ""
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyTab:
		a.help = !a.help
	case tcell.KeyUp:
		a.setMaxIter(a.maxIter + a.cfg.IterStep)
	case tcell.KeyDown:
		a.setMaxIter(a.maxIter - a.cfg.IterStep)
	case tcell.KeyRight:
		a.opts.Multiple += 2
		a.rerender()
	case tcell.KeyLeft:
		if a.opts.Multiple > 2 {
			a.opts.Multiple -= 2
			a.rerender()
		}
	case tcell.KeyPgUp:
		a.setView(a.view.WithRotation(a.view.Rotation + rotateStep))
	case tcell.KeyPgDn:
		a.setView(a.view.WithRotation(a.view.Rotation - rotateStep))
	case tcell.KeyHome:
		a.setView(a.view.WithRotation(0))
	case tcell.KeyRune:
		return a.handleRune(ev.Rune())
	}
	return false
}

func (a *app) handleRune(r rune) bool {
	switch {
	case r == 'q':
		return true
	case r == '+' || r == '=':
		cx, cy := a.view.Center()
		a.setView(a.view.ZoomCenter(cx, cy, zoomIn))
	case r == '-':
		cx, cy := a.view.Center()
		a.setView(a.view.ZoomCenter(cx, cy, zoomOut))
	case r == 'r':
		a.view = mandel.Home.FitAspect(a.width, a.height)
		a.maxIter = a.cfg.MaxIter
		a.regenerate()
	case r == 'k':
		a.opts.Skeleton = !a.opts.Skeleton
		a.rerender()
	case r == 'p':
		a.export()
	case r == 'b':
		a.saveBookmark()
	case r == 'n':
		a.nextBookmark()
	case r >= '0' && r <= '8':
		a.opts.Scheme = int(r - '0')
		a.rerender()
	}
	return false
}

// handleMouse zooms about the clicked pixel on button press.
func (a *app) handleMouse(ev *tcell.EventMouse) {
	btn := ev.Buttons()
	pressed := btn &^ a.buttons
	a.buttons = btn
	if pressed == 0 {
		return
	}
	x, y := ev.Position()
	px, py := x, y*2
	if px >= a.width || py >= a.height {
		return
	}
	switch {
	case pressed&tcell.Button1 != 0:
		a.setView(a.view.ZoomAt(px, py, a.width, a.height, zoomIn))
	case pressed&tcell.Button2 != 0:
		a.setView(a.view.ZoomAt(px, py, a.width, a.height, zoomOut))
	case pressed&tcell.Button3 != 0:
		a.setView(a.view.ZoomAt(px, py, a.width, a.height, 1))
	}
}

func (a *app) export() {
	if a.img == nil {
		a.status = "nothing to export yet"
		return
	}
	caption := fmt.Sprintf("%s iter=%d", a.snap.View, a.snap.MaxIter)
	path, err := export.Save(a.cfg.ExportDir, a.img, export.Options{Scale: a.cfg.ExportScale, Caption: caption})
	if err != nil {
		log.Printf("export: %v", err)
		a.status = err.Error()
		return
	}
	a.status = "saved " + path
}

func (a *app) saveBookmark() {
	if a.store == nil {
		a.status = "bookmarks unavailable"
		return
	}
	name := "view-" + time.Now().Format(export.TimeLayout)
	if err := a.store.Save(bookmarks.Bookmark{Name: name, View: a.view, MaxIter: a.maxIter}); err != nil {
		log.Printf("bookmark: %v", err)
		a.status = err.Error()
		return
	}
	a.bookmark = name
	a.status = "bookmarked " + name
}

func (a *app) nextBookmark() {
	if a.store == nil {
		a.status = "bookmarks unavailable"
		return
	}
	b, err := a.store.Next(a.bookmark)
	if err != nil {
		a.status = err.Error()
		return
	}
	a.bookmark = b.Name
	a.view = b.View.FitAspect(a.width, a.height)
	a.maxIter = b.MaxIter
	a.status = b.Name
	a.regenerate()
}

// run is the event loop. It returns when the user quits.
func (a *app) run(screen tcell.Screen) error {
	a.resize(screen.Size())
	a.draw(screen)

	events := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	// Redraw while a pass runs so the status line follows its stage.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				a.resize(screen.Size())
				screen.Sync()
			case *tcell.EventKey:
				if a.handleKey(ev) {
					return nil
				}
			case *tcell.EventMouse:
				a.handleMouse(ev)
			}
		case <-a.pending():
			a.collect()
		case <-ticker.C:
			if a.handle == nil {
				continue
			}
		}
		a.draw(screen)
	}
}
