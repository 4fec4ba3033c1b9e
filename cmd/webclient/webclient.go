//go:build js && wasm

// Command webclient is the browser front end of the mandel server. It is
// built with GOOS=js GOARCH=wasm into static/main.wasm and talks to the
// server over the /ws websocket endpoint.
//
// Left click zooms in, right click zooms out, the wheel raises or lowers
// the iteration bound and the landmark list jumps to a named view.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"syscall/js"
	"time"

	mandel "github.com/marben/mandel_explorer"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const iterStep = 50

// viewer keeps the state shown on the page. It is only touched from JS
// callbacks, which run one at a time.
type viewer struct {
	req      mandel.ViewRequest
	requests chan mandel.ViewRequest
	printer  *message.Printer
}

func main() {
	logScreenf("Starting WASM web client...")

	// Determine server address for WebSocket connection
	loc := js.Global().Get("window").Get("location")
	host := loc.Get("host").String()
	proto := "ws"
	if loc.Get("protocol").String() == "https:" {
		proto = "wss"
	}
	websocketUrl := proto + "://" + host + "/ws"

	logScreenf("Connecting to Mandelbrot server at %s...", websocketUrl)
	conn := NewWSReadWriteCloser(js.Global().Get("WebSocket").New(websocketUrl))

	c := canvas()
	width, height := c.Get("width").Int(), c.Get("height").Int()
	if width <= 0 || height <= 0 {
		width, height = 800, 600
	}
	initCanvas(width, height, "#3a3a6e")

	v := &viewer{
		req: mandel.ViewRequest{
			Viewport: mandel.Home.FitAspect(width, height),
			MaxIter:  mandel.HomeMaxIter,
			Width:    width,
			Height:   height,
		},
		requests: make(chan mandel.ViewRequest, 16),
		printer:  message.NewPrinter(language.English),
	}
	v.bind()

	go sendLoop(conn, v.requests)
	go func() {
		if err := receiveLoop(conn, v.printer); err != nil {
			logFatalf("receive: %v", err)
		}
	}()
	v.submit()

	// Block main goroutine to keep WASM running
	select {}
}

// submit queues the current request. A newer request cancels the one the
// server is working on.
func (v *viewer) submit() {
	hudSet("view", v.req.Viewport.String())
	hudSet("maxIter", v.printer.Sprintf("%d", v.req.MaxIter))
	hudSet("state", "rendering")
	select {
	case v.requests <- v.req:
	default:
		logScreenf("too many pending requests, dropped one")
	}
}

func (v *viewer) bind() {
	c := canvas()
	c.Call("addEventListener", "click", js.FuncOf(func(this js.Value, args []js.Value) any {
		x, y := canvasPoint(args[0])
		v.zoom(x, y, 0.5)
		return nil
	}))
	c.Call("addEventListener", "contextmenu", js.FuncOf(func(this js.Value, args []js.Value) any {
		args[0].Call("preventDefault")
		x, y := canvasPoint(args[0])
		v.zoom(x, y, 2)
		return nil
	}))
	c.Call("addEventListener", "wheel", js.FuncOf(func(this js.Value, args []js.Value) any {
		args[0].Call("preventDefault")
		if args[0].Get("deltaY").Float() < 0 {
			v.req.MaxIter += iterStep
		} else {
			v.req.MaxIter = max(v.req.MaxIter-iterStep, 1)
		}
		v.submit()
		return nil
	}))

	doc := js.Global().Get("document")
	if sel := doc.Call("getElementById", "landmarks"); sel.Truthy() {
		for _, l := range mandel.Landmarks {
			opt := doc.Call("createElement", "option")
			opt.Set("value", l.Name)
			opt.Set("textContent", l.Name)
			sel.Call("appendChild", opt)
		}
		sel.Call("addEventListener", "change", js.FuncOf(func(this js.Value, args []js.Value) any {
			v.landmark(sel.Get("value").String())
			return nil
		}))
	}
	if home := doc.Call("getElementById", "home"); home.Truthy() {
		home.Call("addEventListener", "click", js.FuncOf(func(this js.Value, args []js.Value) any {
			v.req.Viewport = mandel.Home.FitAspect(v.req.Width, v.req.Height)
			v.req.MaxIter = mandel.HomeMaxIter
			v.submit()
			return nil
		}))
	}
}

func (v *viewer) zoom(x, y int, factor float64) {
	v.req.Viewport = v.req.Viewport.ZoomAt(x, y, v.req.Width, v.req.Height, factor)
	v.submit()
}

func (v *viewer) landmark(name string) {
	for _, l := range mandel.Landmarks {
		if l.Name == name {
			v.req.Viewport = l.Viewport.FitAspect(v.req.Width, v.req.Height)
			v.submit()
			return
		}
	}
}

func sendLoop(conn *WSReadWriteCloser, requests <-chan mandel.ViewRequest) {
	enc := json.NewEncoder(conn)
	for req := range requests {
		if err := enc.Encode(req); err != nil {
			logFatalf("send: %v", err)
		}
	}
}

// receiveLoop draws every completed response until the connection ends.
func receiveLoop(conn *WSReadWriteCloser, p *message.Printer) error {
	dec := json.NewDecoder(conn)
	for {
		var resp mandel.ViewResponse
		if err := dec.Decode(&resp); err != nil {
			return err
		}
		hudSet("state", resp.State)
		switch resp.State {
		case "done":
			if err := drawPNG(resp.PNG); err != nil {
				return err
			}
			s := resp.Stats
			hudSet("stats", p.Sprintf("computed %d  cached %d  filled %d  in %s",
				s.Computed, s.Cached, s.Filled, s.Elapsed.Round(time.Millisecond)))
		case "error":
			logScreenf("server: %s", resp.Error)
		}
	}
}

// hudSet sets the text of the element with the given id, if present.
func hudSet(id, text string) {
	if el := js.Global().Get("document").Call("getElementById", id); el.Truthy() {
		el.Set("textContent", text)
	}
}

// logScreenf appends a formatted message to the log element in the DOM.
func logScreenf(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)

	doc := js.Global().Get("document")
	logElem := doc.Call("getElementById", "log")
	if !logElem.Truthy() {
		log.Print(msg)
		return
	}
	logElem.Set("textContent", logElem.Get("textContent").String()+msg+"\n")
}

// logFatalf logs a fatal error to the log window and terminates the program.
func logFatalf(format string, a ...any) {
	logScreenf("FATAL: "+format, a...)
	log.Fatalf(format, a...)
}
