package worker

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/stickerwall/pkg/canvas"
	"github.com/matzehuels/stickerwall/pkg/errors"
)

// Client turns a running Worker's channels into blocking calls. It consumes
// Worker.Responses, so nothing else may read from it.
//
//	w := worker.New(cache)
//	go w.Run(ctx)
//	c := worker.NewClient(w)
//	c.Init(ctx, canvas.NewTransferable(surface))
//	n, err := c.WaitReady(ctx)
//	out, err := c.Generate(ctx, worker.Generate{Width: 1920, Height: 1080, Density: 20, SizeVariation: 1})
type Client struct {
	w *Worker

	mu      sync.Mutex
	pending map[string]chan Response
	inits   map[string]bool // Init requests not yet known to have succeeded
	initErr error           // last Init failure, cleared by the next Init

	readyOnce sync.Once
	ready     chan struct{}
	count     int   // set before ready closes
	loadErr   error // set before ready closes

	done chan struct{}
}

// NewClient starts dispatching w's responses.
func NewClient(w *Worker) *Client {
	c := &Client{
		w:       w,
		pending: make(map[string]chan Response),
		inits:   make(map[string]bool),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.dispatch()
	return c
}

func (c *Client) dispatch() {
	defer close(c.done)
	for resp := range c.w.Responses() {
		switch r := resp.(type) {
		case Ready:
			c.readyOnce.Do(func() {
				c.count = r.ImageCount
				close(c.ready)
			})
			continue
		case Error:
			if r.ID == "" {
				c.readyOnce.Do(func() {
					c.loadErr = r
					close(c.ready)
				})
				continue
			}
		}
		c.deliver(resp)
	}
}

func (c *Client) deliver(resp Response) {
	id := resp.ResponseID()
	c.mu.Lock()
	if c.inits[id] {
		delete(c.inits, id)
		if e, ok := resp.(Error); ok {
			c.initErr = e
		}
		c.mu.Unlock()
		c.w.logger.Warn("init failed", "id", id, "err", resp)
		return
	}
	// Requests are served in order, so any other response means every
	// earlier Init has been handled; successful ones never answer.
	clear(c.inits)
	ch, ok := c.pending[id]
	c.mu.Unlock()
	if !ok {
		c.w.logger.Debug("dropping unclaimed response", "id", resp.ResponseID())
		return
	}
	ch <- resp
}

// Init hands surface to the worker. A surface that was already transferred
// is rejected here with a TRANSFERRED error. Init does not wait for the
// worker: a failure it reports later is returned by the next Generate as the
// cause of its SURFACE_NOT_READY error.
func (c *Client) Init(ctx context.Context, surface *canvas.Transferable) error {
	if surface == nil {
		return errors.New(errors.ErrCodeInvalidInput, "init without a surface")
	}
	if surface.Transferred() {
		return errors.Wrap(errors.ErrCodeTransferred, canvas.ErrTransferred, "surface can only be transferred once")
	}
	id := uuid.NewString()
	c.mu.Lock()
	c.inits[id] = true
	c.initErr = nil
	c.mu.Unlock()

	if _, err := c.w.Send(ctx, Init{ID: id, Surface: surface}); err != nil {
		c.mu.Lock()
		delete(c.inits, id)
		c.mu.Unlock()
		return err
	}
	return nil
}

// WaitReady blocks until the stickers have loaded and returns their count.
// A load failure is returned as an Error with code ASSET_LOAD.
func (c *Client) WaitReady(ctx context.Context) (int, error) {
	select {
	case <-c.ready:
		if c.loadErr != nil {
			return 0, c.loadErr
		}
		return c.count, nil
	case <-c.done:
		return 0, ErrStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Status reports without blocking whether loading has finished, the sticker
// count, and the load error if it failed.
func (c *Client) Status() (ready bool, images int, err error) {
	select {
	case <-c.ready:
		if c.loadErr != nil {
			return false, 0, c.loadErr
		}
		return true, c.count, nil
	default:
		return false, 0, nil
	}
}

// Generate sends req and waits for its response. A worker Error is returned
// as the error value. Calls may overlap; the worker still serves them one at
// a time.
func (c *Client) Generate(ctx context.Context, req Generate) (Generated, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	ch := make(chan Response, 1)
	c.mu.Lock()
	c.pending[req.ID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	if _, err := c.w.Send(ctx, req); err != nil {
		return Generated{}, err
	}
	select {
	case resp := <-ch:
		switch r := resp.(type) {
		case Generated:
			return r, nil
		case Error:
			if r.Code == errors.ErrCodeSurfaceNotReady {
				c.mu.Lock()
				initErr := c.initErr
				c.mu.Unlock()
				if initErr != nil {
					return Generated{}, errors.Wrap(r.Code, initErr, "%s", r.Message)
				}
			}
			return Generated{}, r
		}
		return Generated{}, errors.New(errors.ErrCodeInternal, "unexpected response %T", resp)
	case <-c.done:
		return Generated{}, ErrStopped
	case <-ctx.Done():
		return Generated{}, ctx.Err()
	}
}
