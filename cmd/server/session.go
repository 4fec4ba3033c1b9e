package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"

	mandel "github.com/marben/mandel_explorer"
	"github.com/marben/mandel_explorer/engine"
)

// job is a started pass waiting for its response.
type job struct {
	h   *engine.Handle
	req mandel.ViewRequest
	err error
}

// session serves one connection. Requests and responses are JSON values,
// one per line. Every request is answered in order; a request that is
// superseded before it completes is answered with state "cancelled".
type session struct {
	conn     net.Conn
	provider *imgProvider

	wmu sync.Mutex
	enc *json.Encoder
}

func newSession(conn net.Conn, p *imgProvider) *session {
	return &session{conn: conn, provider: p, enc: json.NewEncoder(conn)}
}

func (s *session) send(resp mandel.ViewResponse) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.enc.Encode(resp)
}

// reply sends resp and logs a failed send.
func (s *session) reply(resp mandel.ViewResponse) bool {
	if err := s.send(resp); err != nil {
		log.Printf("%s: send: %v", s.conn.RemoteAddr(), err)
		return false
	}
	return true
}

// serve reads requests until the peer goes away or ctx ends.
func (s *session) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.respondLoop(ctx, jobs)
	}()
	defer func() {
		close(jobs)
		s.provider.close()
		wg.Wait()
	}()

	// Unblock the decoder when ctx ends.
	stop := context.AfterFunc(ctx, func() { s.conn.Close() })
	defer stop()

	dec := json.NewDecoder(s.conn)
	for {
		var req mandel.ViewRequest
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) || ctx.Err() != nil {
				return nil
			}
			var syntax *json.SyntaxError
			var typ *json.UnmarshalTypeError
			if errors.As(err, &syntax) || errors.As(err, &typ) {
				s.reply(errorResponse(req, fmt.Errorf("bad request: %w", err)))
			}
			return fmt.Errorf("decode request: %w", err)
		}

		h, resolved, err := s.provider.begin(req)
		jobs <- job{h: h, req: resolved, err: err}
	}
}

func (s *session) respondLoop(ctx context.Context, jobs <-chan job) {
	for j := range jobs {
		var resp mandel.ViewResponse
		if j.err != nil {
			resp = errorResponse(j.req, j.err)
		} else {
			resp = s.provider.respond(ctx, j.h, j.req)
		}
		if !s.reply(resp) {
			s.conn.Close()
		}
	}
}
