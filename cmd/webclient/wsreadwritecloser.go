//go:build js && wasm

package main

import (
	"io"
	"sync"
	"syscall/js"
)

// WSReadWriteCloser is a byte stream over a browser WebSocket. Every
// Write is sent as one binary message; Read concatenates messages.
//
// JS callbacks never block: received messages are queued and Read waits
// on a condition variable.
type WSReadWriteCloser struct {
	ws js.Value

	mu     sync.Mutex // needed because js callbacks can preempt Read and Write
	cond   *sync.Cond
	queue  [][]byte
	open   bool
	closed bool
	err    error

	// read buffer for partial reads
	buf []byte
}

func NewWSReadWriteCloser(ws js.Value) *WSReadWriteCloser {
	c := &WSReadWriteCloser{ws: ws}
	c.cond = sync.NewCond(&c.mu)

	ws.Set("binaryType", "arraybuffer")

	ws.Set("onopen", js.FuncOf(func(js.Value, []js.Value) any {
		c.mu.Lock()
		c.open = true
		c.cond.Broadcast()
		c.mu.Unlock()
		return nil
	}))

	ws.Set("onerror", js.FuncOf(func(js.Value, []js.Value) any {
		c.mu.Lock()
		c.err = io.ErrUnexpectedEOF
		c.cond.Broadcast()
		c.mu.Unlock()
		return nil
	}))

	ws.Set("onmessage", js.FuncOf(func(this js.Value, args []js.Value) any {
		jsDataToBytes(args[0].Get("data"), c.deliver)
		return nil
	}))

	ws.Set("onclose", js.FuncOf(func(js.Value, []js.Value) any {
		logScreenf("websocket closed")
		c.mu.Lock()
		c.closed = true
		c.cond.Broadcast()
		c.mu.Unlock()
		return nil
	}))

	return c
}

func (c *WSReadWriteCloser) deliver(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.queue = append(c.queue, b)
	c.cond.Broadcast()
}

// Read returns queued data. After the socket closes, remaining messages
// are still returned before io.EOF.
func (c *WSReadWriteCloser) Read(p []byte) (int, error) {
	if len(c.buf) == 0 {
		c.mu.Lock()
		for len(c.queue) == 0 && !c.closed && c.err == nil {
			c.cond.Wait()
		}
		switch {
		case len(c.queue) > 0:
			c.buf = c.queue[0]
			c.queue = c.queue[1:]
		case c.err != nil:
			err := c.err
			c.mu.Unlock()
			return 0, err
		default:
			c.mu.Unlock()
			return 0, io.EOF
		}
		c.mu.Unlock()
	}

	n := copy(p, c.buf)
	c.buf = c.buf[n:]
	return n, nil
}

func (c *WSReadWriteCloser) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for !c.open && !c.closed && c.err == nil {
		c.cond.Wait()
	}
	if c.err != nil {
		return 0, c.err
	}
	if c.closed {
		return 0, io.ErrClosedPipe
	}

	u8 := js.Global().Get("Uint8Array").New(len(p))
	js.CopyBytesToJS(u8, p)

	c.ws.Call("send", u8)
	return len(p), nil
}

func (c *WSReadWriteCloser) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.cond.Broadcast()
	c.mu.Unlock()

	c.ws.Call("close")
	return nil
}

func jsDataToBytes(data js.Value, deliver func([]byte)) {
	// Uint8Array / Uint8ClampedArray
	if data.InstanceOf(js.Global().Get("Uint8Array")) ||
		data.InstanceOf(js.Global().Get("Uint8ClampedArray")) {

		b := make([]byte, data.Get("byteLength").Int())
		js.CopyBytesToGo(b, data)
		deliver(b)
		return
	}

	// ArrayBuffer
	if data.InstanceOf(js.Global().Get("ArrayBuffer")) {
		u8 := js.Global().Get("Uint8Array").New(data)
		b := make([]byte, u8.Get("byteLength").Int())
		js.CopyBytesToGo(b, u8)
		deliver(b)
		return
	}

	// Blob, async
	if data.InstanceOf(js.Global().Get("Blob")) {
		promise := data.Call("arrayBuffer")
		var then js.Func
		then = js.FuncOf(func(this js.Value, args []js.Value) any {
			defer then.Release()
			u8 := js.Global().Get("Uint8Array").New(args[0])
			b := make([]byte, u8.Get("byteLength").Int())
			js.CopyBytesToGo(b, u8)
			deliver(b)
			return nil
		})
		promise.Call("then", then)
		return
	}

	logScreenf("dropped message of unsupported type %s", data.Type())
}
