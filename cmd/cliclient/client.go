package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	mandel "github.com/marben/mandel_explorer"
)

// client implements mandel.ImgProvider over a connection to the server.
//
// Thread safety: client is safe for concurrent use; requests are answered
// one at a time.
type client struct {
	mu   sync.Mutex
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
}

var _ mandel.ImgProvider = (*client)(nil)

func newClient(conn net.Conn) *client {
	return &client{conn: conn, enc: json.NewEncoder(conn), dec: json.NewDecoder(conn)}
}

// GetImage sends req and waits for its response. A response that is not
// "done" is returned together with an error.
func (c *client) GetImage(req mandel.ViewRequest) (mandel.ViewResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var resp mandel.ViewResponse
	if err := c.enc.Encode(req); err != nil {
		return resp, fmt.Errorf("send request: %w", err)
	}
	if err := c.dec.Decode(&resp); err != nil {
		return resp, fmt.Errorf("read response: %w", err)
	}
	switch resp.State {
	case "done":
		if len(resp.PNG) == 0 {
			return resp, errors.New("server sent no image")
		}
		return resp, nil
	case "error":
		return resp, fmt.Errorf("server: %s", resp.Error)
	default:
		return resp, fmt.Errorf("render %s", resp.State)
	}
}

func (c *client) Close() error { return c.conn.Close() }
