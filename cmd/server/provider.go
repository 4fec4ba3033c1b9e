package main

import (
	"context"
	"errors"
	"fmt"

	mandel "github.com/marben/mandel_explorer"
	"github.com/marben/mandel_explorer/bookmarks"
	"github.com/marben/mandel_explorer/config"
	"github.com/marben/mandel_explorer/engine"
	"github.com/marben/mandel_explorer/export"
	"github.com/marben/mandel_explorer/render"
)

// maxSide bounds each dimension of the image a client may ask for.
const maxSide = 4096

const stateError = "error"

// imgProvider turns view requests into rendered PNG images on one engine.
// Starting a request cancels the one in flight.
//
// Thread safety: begin and GetImage must not be called concurrently;
// respond may run on another goroutine.
type imgProvider struct {
	cfg   config.Config
	store *bookmarks.Store // nil disables bookmark requests
	eng   *engine.Explorer
}

var _ mandel.ImgProvider = (*imgProvider)(nil)

func newImgProvider(cfg config.Config, store *bookmarks.Store) *imgProvider {
	return &imgProvider{cfg: cfg, store: store}
}

func (p *imgProvider) close() {
	if p.eng != nil {
		p.eng.Close()
	}
}

// resolve fills in defaults and bookmarks and checks the request.
func (p *imgProvider) resolve(req mandel.ViewRequest) (mandel.ViewRequest, error) {
	if req.Width == 0 && req.Height == 0 {
		req.Width, req.Height = p.cfg.Width, p.cfg.Height
	}
	if req.Width <= 0 || req.Height <= 0 || req.Width > maxSide || req.Height > maxSide {
		return req, fmt.Errorf("invalid size %dx%d", req.Width, req.Height)
	}
	if req.Bookmark != "" {
		if p.store == nil {
			return req, errors.New("bookmarks are not available")
		}
		b, err := p.store.Get(req.Bookmark)
		if err != nil {
			return req, err
		}
		req.Viewport = b.View.FitAspect(req.Width, req.Height)
		if req.MaxIter == 0 {
			req.MaxIter = b.MaxIter
		}
	}
	if req.Viewport == (mandel.Viewport{}) {
		req.Viewport = mandel.Home.FitAspect(req.Width, req.Height)
	}
	if !req.Viewport.Valid() {
		return req, fmt.Errorf("invalid viewport %s", req.Viewport)
	}
	if req.MaxIter == 0 {
		req.MaxIter = p.cfg.MaxIter
	}
	if req.MaxIter < 0 {
		return req, fmt.Errorf("invalid max_iter %d", req.MaxIter)
	}
	if req.Scheme < 0 || req.Scheme >= render.Schemes {
		return req, fmt.Errorf("invalid scheme %d", req.Scheme)
	}
	if req.Multiple == 0 {
		req.Multiple = p.cfg.Multiple
	}
	return req, nil
}

// begin starts the pass for req, cancelling the running one.
func (p *imgProvider) begin(req mandel.ViewRequest) (*engine.Handle, mandel.ViewRequest, error) {
	req, err := p.resolve(req)
	if err != nil {
		return nil, req, err
	}
	if p.eng == nil {
		p.eng = engine.New(req.Width, req.Height, engine.WithWorkers(p.cfg.Workers))
	} else if w, h := p.eng.Size(); w != req.Width || h != req.Height {
		p.eng.Resize(req.Width, req.Height)
	}
	return p.eng.BeginGeneration(req.Viewport, req.MaxIter), req, nil
}

// respond waits for h and builds the answer to req.
func (p *imgProvider) respond(ctx context.Context, h *engine.Handle, req mandel.ViewRequest) mandel.ViewResponse {
	state, err := h.Wait(ctx)
	if err != nil {
		p.eng.Cancel(h)
		state = h.State()
	}
	snap := h.Snapshot()
	resp := mandel.ViewResponse{
		State:   state.String(),
		Width:   req.Width,
		Height:  req.Height,
		MaxIter: req.MaxIter,
		Stats:   snap.Stats,
		View:    req.Viewport,
	}
	if state != engine.Done {
		return resp
	}

	img, err := render.Image(snap.Grid, snap.MaxIter, render.Options{
		Scheme:   req.Scheme,
		Multiple: req.Multiple,
		Skeleton: req.Skeleton,
	})
	if err == nil {
		resp.PNG, err = export.PNG(img, export.Options{})
	}
	if err != nil {
		return errorResponse(req, err)
	}
	return resp
}

// GetImage renders req synchronously.
func (p *imgProvider) GetImage(req mandel.ViewRequest) (mandel.ViewResponse, error) {
	h, req, err := p.begin(req)
	if err != nil {
		return errorResponse(req, err), err
	}
	resp := p.respond(context.Background(), h, req)
	if resp.State == stateError {
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

func errorResponse(req mandel.ViewRequest, err error) mandel.ViewResponse {
	return mandel.ViewResponse{
		State:   stateError,
		Width:   req.Width,
		Height:  req.Height,
		MaxIter: req.MaxIter,
		View:    req.Viewport,
		Error:   err.Error(),
	}
}
