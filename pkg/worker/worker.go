package worker

import (
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stickerwall/pkg/canvas"
	"github.com/matzehuels/stickerwall/pkg/errors"
	"github.com/matzehuels/stickerwall/pkg/layout"
)

// ErrStopped is returned by Send once Run has returned.
var ErrStopped = stderrors.New("worker stopped")

// AssetSource loads the sticker bitmaps in the background.
// *assets.Cache satisfies it.
type AssetSource interface {
	Start(ctx context.Context)
	Done() <-chan struct{}
	Result() ([]image.Image, error)
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option { return func(w *Worker) { w.logger = l } }

// WithLayoutOptions appends options passed to every layout.Generate call.
func WithLayoutOptions(opts ...layout.Option) Option {
	return func(w *Worker) { w.layoutOpts = append(w.layoutOpts, opts...) }
}

// WithInboxSize sets how many requests Send can queue before blocking.
func WithInboxSize(n int) Option { return func(w *Worker) { w.inboxSize = n } }

// WithJPEGQuality sets the JPEG encoder quality.
func WithJPEGQuality(q int) Option { return func(w *Worker) { w.quality = q } }

// Worker serializes all drawing onto the goroutine running Run.
type Worker struct {
	source     AssetSource
	logger     *log.Logger
	layoutOpts []layout.Option
	inboxSize  int
	quality    int

	inbox   chan Request
	out     chan Response
	stopped chan struct{}
}

var _ requestHandler = (*Worker)(nil)

// New returns a worker that will load its stickers from source once Run
// starts.
func New(source AssetSource, opts ...Option) *Worker {
	w := &Worker{
		source:    source,
		inboxSize: 16,
		quality:   canvas.DefaultJPEGQuality,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	if w.inboxSize < 0 {
		w.inboxSize = 0
	}
	w.inbox = make(chan Request, w.inboxSize)
	w.out = make(chan Response, w.inboxSize)
	w.stopped = make(chan struct{})
	return w
}

// Responses returns the channel every response is delivered on. It is
// closed when Run returns. Callers must keep draining it while the worker
// runs.
func (w *Worker) Responses() <-chan Response { return w.out }

// Send queues req and returns its ID, assigning a UUID when req has none.
func (w *Worker) Send(ctx context.Context, req Request) (string, error) {
	if req == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "nil request")
	}
	req = req.withDefaultID()
	select {
	case w.inbox <- req:
		return req.RequestID(), nil
	case <-w.stopped:
		return "", ErrStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Run starts the asset load and processes requests until ctx ends. It must
// be called exactly once.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.out)
	defer close(w.stopped)

	w.source.Start(ctx)
	loaded := w.source.Done()

	var st State
	defer func() {
		if closer, ok := st.surface.(io.Closer); ok {
			_ = closer.Close()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-loaded:
			loaded = nil
			st = w.assetsLoaded(ctx, st)
		case req := <-w.inbox:
			st = w.handle(ctx, st, req)
		}
	}
}

func (w *Worker) assetsLoaded(ctx context.Context, st State) State {
	images, err := w.source.Result()
	st = st.withAssets(images, err)
	if err != nil {
		w.logger.Error("failed to load images", "err", err)
		w.emit(ctx, Error{
			Code:    errors.ErrCodeAssetLoad,
			Message: "failed to load images: " + errors.UserMessage(err),
		})
		return st
	}
	w.logger.Debug("images loaded", "count", len(images))
	w.emit(ctx, Ready{ImageCount: len(images)})
	return st
}

func (w *Worker) handle(ctx context.Context, st State, req Request) (next State) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("request panicked", "id", req.RequestID(), "panic", r)
			w.emit(ctx, Error{
				ID:      req.RequestID(),
				Code:    errors.ErrCodeInternal,
				Message: fmt.Sprintf("internal error: %v", r),
			})
			next = st
		}
	}()
	return req.dispatch(ctx, w, st)
}

func (w *Worker) handleInit(ctx context.Context, st State, req Init) State {
	if req.Surface == nil {
		w.emit(ctx, Error{ID: req.ID, Code: errors.ErrCodeInvalidInput, Message: "init without a surface"})
		return st
	}
	surface, err := req.Surface.Transfer()
	if err != nil {
		w.emit(ctx, errorResponse(req.ID, err))
		return st
	}
	if closer, ok := st.surface.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			w.logger.Warn("closing replaced surface", "err", err)
		}
	}
	width, height := surface.Size()
	w.logger.Debug("surface bound", "id", req.ID, "width", width, "height", height)
	return st.withSurface(surface)
}

func (w *Worker) handleGenerate(ctx context.Context, st State, req Generate) State {
	switch {
	case !st.HasSurface():
		w.emit(ctx, Error{ID: req.ID, Code: errors.ErrCodeSurfaceNotReady, Message: "canvas not initialized"})
		return st
	case !st.AssetsLoaded():
		w.emit(ctx, Error{ID: req.ID, Code: errors.ErrCodeSurfaceNotReady, Message: "images not loaded"})
		return st
	}

	out, err := w.composite(ctx, st, req)
	if err != nil {
		w.logger.Warn("generate failed", "id", req.ID, "err", err)
		w.emit(ctx, errorResponse(req.ID, err))
		return st
	}
	w.logger.Info("generated", "id", req.ID, "placements", len(out.Placements), "bytes", len(out.Blob), "elapsed", out.Elapsed)
	w.emit(ctx, out)
	return st
}

// emit delivers resp unless ctx ends first.
func (w *Worker) emit(ctx context.Context, resp Response) {
	select {
	case w.out <- resp:
	case <-ctx.Done():
	}
}
