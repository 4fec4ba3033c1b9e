package main

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	mandel "github.com/marben/mandel_explorer"
	"github.com/marben/mandel_explorer/bookmarks"
	"github.com/marben/mandel_explorer/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Workers = 2
	cfg.ExportDir = t.TempDir()
	cfg.BookmarksDB = filepath.Join(t.TempDir(), "bookmarks.db")
	return cfg
}

// newTestApp returns an app sized for a 40×21 terminal, i.e. a 40×40 image.
func newTestApp(t *testing.T, store *bookmarks.Store) *app {
	t.Helper()
	a := newApp(testConfig(t), store)
	t.Cleanup(a.close)
	a.resize(40, 21)
	settle(t, a)
	return a
}

// settle waits for the running pass and collects it.
func settle(t *testing.T, a *app) {
	t.Helper()
	for a.handle != nil {
		select {
		case <-a.handle.Done():
			a.collect()
		case <-time.After(30 * time.Second):
			t.Fatal("pass did not finish")
		}
	}
}

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }

func runeKey(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

func TestApp_Resize(t *testing.T) {
	a := newTestApp(t, nil)
	if a.width != 40 || a.height != 40 {
		t.Fatalf("image = %dx%d, want 40x40", a.width, a.height)
	}
	if a.img == nil || a.img.Bounds().Dx() != 40 {
		t.Fatal("no image after the first pass")
	}

	a.resize(60, 21)
	if a.view.Width/a.view.Height != 60.0/40.0 {
		t.Errorf("view aspect = %g, want 1.5", a.view.Width/a.view.Height)
	}
	settle(t, a)
	if a.img.Bounds().Dx() != 60 {
		t.Errorf("image width = %d, want 60", a.img.Bounds().Dx())
	}
}

func TestApp_IterationKeys(t *testing.T) {
	a := newTestApp(t, nil)

	a.handleKey(key(tcell.KeyUp))
	settle(t, a)
	if a.maxIter != 150 || a.snap.MaxIter != 150 {
		t.Errorf("maxIter = %d / %d, want 150", a.maxIter, a.snap.MaxIter)
	}
	if a.snap.Stats.Cached == 0 {
		t.Error("raising the bound did not reuse any pixel")
	}

	a.handleKey(key(tcell.KeyDown))
	a.handleKey(key(tcell.KeyDown))
	a.handleKey(key(tcell.KeyDown))
	settle(t, a)
	if a.maxIter != 1 {
		t.Errorf("maxIter = %d, want 1", a.maxIter)
	}
}

func TestApp_ColourKeys(t *testing.T) {
	a := newTestApp(t, nil)

	a.handleKey(runeKey('5'))
	if a.opts.Scheme != 5 {
		t.Errorf("scheme = %d, want 5", a.opts.Scheme)
	}
	a.handleKey(key(tcell.KeyRight))
	if a.opts.Multiple != 3 {
		t.Errorf("multiple = %g, want 3", a.opts.Multiple)
	}
	a.handleKey(key(tcell.KeyLeft))
	a.handleKey(key(tcell.KeyLeft))
	if a.opts.Multiple != 1 {
		t.Errorf("multiple = %g, want 1", a.opts.Multiple)
	}

	before := a.img
	a.handleKey(runeKey('k'))
	if !a.opts.Skeleton {
		t.Error("k did not enable the skeleton view")
	}
	if a.img == before {
		t.Error("skeleton toggle did not re-render")
	}
	if a.handle != nil {
		t.Error("colour change started a pass")
	}
}

func TestApp_ViewKeys(t *testing.T) {
	a := newTestApp(t, nil)

	a.handleKey(runeKey('+'))
	if math.Abs(a.view.Width-1) > 1e-12 {
		t.Errorf("zoomed width = %g, want 1", a.view.Width)
	}
	a.handleKey(runeKey('-'))
	if math.Abs(a.view.Width-2) > 1e-12 {
		t.Errorf("unzoomed width = %g, want 2", a.view.Width)
	}

	a.handleKey(key(tcell.KeyPgUp))
	if math.Abs(a.view.Rotation-rotateStep) > 1e-12 {
		t.Errorf("rotation = %g, want %g", a.view.Rotation, rotateStep)
	}
	a.handleKey(key(tcell.KeyHome))
	if a.view.Rotation != 0 {
		t.Errorf("rotation after Home = %g, want 0", a.view.Rotation)
	}

	a.handleKey(runeKey('+'))
	a.handleKey(key(tcell.KeyUp))
	a.handleKey(runeKey('r'))
	settle(t, a)
	if a.view != mandel.Home || a.maxIter != mandel.HomeMaxIter {
		t.Errorf("reset gave %v / %d", a.view, a.maxIter)
	}
}

func TestApp_QuitKeys(t *testing.T) {
	a := newTestApp(t, nil)
	for _, ev := range []*tcell.EventKey{runeKey('q'), key(tcell.KeyEscape), key(tcell.KeyCtrlC)} {
		if !a.handleKey(ev) {
			t.Errorf("%v did not quit", ev.Name())
		}
	}
	if a.handleKey(key(tcell.KeyTab)) || !a.help {
		t.Error("Tab did not toggle help")
	}
}

func TestApp_MouseZoom(t *testing.T) {
	a := newTestApp(t, nil)

	// Cell (20, 10) is pixel (20, 20), the point (-0.5, 0).
	a.handleMouse(tcell.NewEventMouse(20, 10, tcell.Button1, tcell.ModNone))
	cx, cy := a.view.Center()
	if math.Abs(cx+0.5) > 1e-12 || math.Abs(cy) > 1e-12 || math.Abs(a.view.Width-1) > 1e-12 {
		t.Errorf("left click gave %v", a.view)
	}

	// Dragging with the button held does nothing more.
	a.handleMouse(tcell.NewEventMouse(5, 5, tcell.Button1, tcell.ModNone))
	if math.Abs(a.view.Width-1) > 1e-12 {
		t.Errorf("drag zoomed again: %v", a.view)
	}

	a.handleMouse(tcell.NewEventMouse(5, 5, tcell.ButtonNone, tcell.ModNone))
	a.handleMouse(tcell.NewEventMouse(20, 10, tcell.Button2, tcell.ModNone))
	if math.Abs(a.view.Width-2) > 1e-12 {
		t.Errorf("right click width = %g, want 2", a.view.Width)
	}

	a.handleMouse(tcell.NewEventMouse(0, 0, tcell.ButtonNone, tcell.ModNone))
	a.handleMouse(tcell.NewEventMouse(0, 0, tcell.Button3, tcell.ModNone))
	if math.Abs(a.view.Width-2) > 1e-12 {
		t.Errorf("middle click changed the size: %v", a.view)
	}

	// The status line is not part of the image.
	before := a.view
	a.handleMouse(tcell.NewEventMouse(0, 0, tcell.ButtonNone, tcell.ModNone))
	a.handleMouse(tcell.NewEventMouse(10, 20, tcell.Button1, tcell.ModNone))
	if a.view != before {
		t.Error("click on the status line changed the view")
	}
	settle(t, a)
}

func TestApp_Bookmarks(t *testing.T) {
	cfg := testConfig(t)
	store, err := bookmarks.Open(cfg.BookmarksDB)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, err := store.Seed(mandel.Landmarks[:2], 300); err != nil {
		t.Fatal(err)
	}

	a := newTestApp(t, store)
	a.handleKey(runeKey('n'))
	if a.bookmark != mandel.Landmarks[0].Name || a.maxIter != 300 {
		t.Errorf("next bookmark = %q / %d", a.bookmark, a.maxIter)
	}
	settle(t, a)

	a.handleKey(runeKey('b'))
	if !strings.HasPrefix(a.status, "bookmarked view-") {
		t.Errorf("status = %q", a.status)
	}
	all, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("%d bookmarks stored, want 3", len(all))
	}
}

func TestApp_BookmarksUnavailable(t *testing.T) {
	a := newTestApp(t, nil)
	a.handleKey(runeKey('n'))
	if a.status != "bookmarks unavailable" {
		t.Errorf("status = %q", a.status)
	}
}

func TestApp_Export(t *testing.T) {
	a := newTestApp(t, nil)
	a.handleKey(runeKey('p'))
	if !strings.HasPrefix(a.status, "saved ") {
		t.Fatalf("status = %q", a.status)
	}
	path := strings.TrimPrefix(a.status, "saved ")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exported file: %v", err)
	}
}

// =============================================================================
// Drawing
// =============================================================================

func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(cols, rows)
	return s
}

func rowText(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		b.WriteString(string(cells[y*w+x].Runes))
	}
	return b.String()
}

func TestApp_Draw(t *testing.T) {
	screen := newSimScreen(t, 40, 21)
	a := newTestApp(t, nil)
	a.draw(screen)

	r, _, style, _ := screen.GetContent(3, 3)
	if r != upperHalf {
		t.Errorf("image cell rune = %q, want %q", r, upperHalf)
	}
	fg, bg, _ := style.Decompose()
	want := a.img.RGBAAt(3, 6)
	if fg != rgbColor(want) {
		t.Errorf("foreground = %v, want %v", fg, rgbColor(want))
	}
	if bg != rgbColor(a.img.RGBAAt(3, 7)) {
		t.Errorf("background = %v, want pixel (3, 7)", bg)
	}

	status := rowText(screen, 20)
	if !strings.Contains(status, "iter 100") || !strings.Contains(status, "done") {
		t.Errorf("status line = %q", status)
	}
}

func TestApp_DrawHelp(t *testing.T) {
	screen := newSimScreen(t, 60, 30)
	a := newApp(testConfig(t), nil)
	t.Cleanup(a.close)
	a.resize(60, 30)
	a.help = true
	a.draw(screen)

	found := false
	for y := 0; y < 30; y++ {
		if strings.Contains(rowText(screen, y), "Mandelbrot explorer") {
			found = true
			break
		}
	}
	if !found {
		t.Error("help overlay not drawn")
	}
}

func TestStatusLine_Separators(t *testing.T) {
	a := newApp(testConfig(t), nil)
	a.snap.Stats.Computed = 1234567
	if s := a.statusLine(); !strings.Contains(s, "1,234,567") {
		t.Errorf("status line = %q, want grouped digits", s)
	}
}

func TestRun_QuitAndResize(t *testing.T) {
	screen := newSimScreen(t, 30, 11)
	a := newApp(testConfig(t), nil)
	t.Cleanup(a.close)

	errCh := make(chan error, 1)
	go func() { errCh <- a.run(screen) }()

	screen.SetSize(50, 16)
	screen.PostEvent(tcell.NewEventResize(50, 16))
	screen.PostEvent(runeKey('q'))

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after q")
	}
	if a.width != 50 || a.height != 30 {
		t.Errorf("image = %dx%d after resize, want 50x30", a.width, a.height)
	}
}
