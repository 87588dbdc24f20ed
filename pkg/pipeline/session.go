package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stickerwall/pkg/assets"
	"github.com/matzehuels/stickerwall/pkg/canvas"
	"github.com/matzehuels/stickerwall/pkg/worker"
)

// Session is a running worker bound to one source set, one surface backend
// and one JPEG quality. Layout and background options may change between
// generations.
type Session struct {
	runner       *Runner
	client       *worker.Client
	fingerprints []string
	backend      string
	quality      int
	logger       *log.Logger

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Open resolves the sources in opts, starts loading them and binds a surface
// of opts.Backend. Loading continues after Open returns; use WaitReady or
// Status to observe it. The session outlives ctx until Close.
func (r *Runner) Open(ctx context.Context, opts Options) (*Session, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	locators, err := opts.Locators()
	if err != nil {
		return nil, fmt.Errorf("sources: %w", err)
	}
	return r.open(ctx, opts, locators, Fingerprints(locators))
}

func (r *Runner) open(ctx context.Context, opts Options, locators []assets.Locator, fingerprints []string) (*Session, error) {
	surface, err := canvas.NewSurface(opts.Backend, opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}

	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w := worker.New(
		assets.NewCache(r.Fetcher, locators),
		worker.WithLogger(opts.Logger),
		worker.WithJPEGQuality(opts.Quality),
	)
	s := &Session{
		runner:       r,
		fingerprints: fingerprints,
		backend:      strings.ToLower(opts.Backend),
		quality:      opts.Quality,
		logger:       opts.Logger,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		_ = w.Run(wctx)
	}()
	s.client = worker.NewClient(w)

	if err := s.client.Init(ctx, canvas.NewTransferable(surface)); err != nil {
		s.Close()
		return nil, err
	}
	opts.Logger.Debug("session opened", "sources", len(locators), "backend", s.backend)
	return s, nil
}

// WaitReady blocks until the sources have loaded and returns their count.
func (s *Session) WaitReady(ctx context.Context) (int, error) {
	return s.client.WaitReady(ctx)
}

// Status reports without blocking whether the sources have loaded.
func (s *Session) Status() (ready bool, images int, err error) {
	return s.client.Status()
}

// Generate produces one wallpaper. Source, backend and quality fields of
// opts are ignored in favour of the session's. A seeded request is served
// from the artifact cache when possible.
func (s *Session) Generate(ctx context.Context, opts Options) (*Result, error) {
	opts.Backend, opts.Quality = s.backend, s.quality
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	key := s.runner.artifactKey(opts, s.fingerprints)
	if res, ok := s.runner.lookup(ctx, key); ok {
		s.runner.record(ctx, opts, res)
		return res, nil
	}
	return s.render(ctx, opts, key)
}

// render asks the worker for one wallpaper, then caches and records it.
func (s *Session) render(ctx context.Context, opts Options, key string) (*Result, error) {
	start := time.Now()
	out, err := s.client.Generate(ctx, worker.Generate{
		ID:            newID(),
		Width:         opts.Width,
		Height:        opts.Height,
		Density:       opts.Density,
		SizeVariation: opts.SizeVariation,
		Seed:          opts.Seed,
		Rounds:        opts.Rounds,
		Background:    opts.Background,
		Format:        opts.Format,
	})
	if err != nil {
		return nil, err
	}
	_, images, _ := s.client.Status()

	res := &Result{
		ID: out.ID,
		Artifact: canvas.Artifact{
			Blob:    out.Blob,
			MIME:    out.MIME,
			DataURL: out.DataURL,
		},
		Seed:       out.Seed,
		Placements: out.Placements,
		Images:     images,
		Stats: Stats{
			Drawn:      out.Drawn,
			Bytes:      len(out.Blob),
			RenderTime: time.Since(start),
		},
		CacheInfo: CacheInfo{Key: key},
	}
	opts.Logger.Info("composited",
		"id", res.ID,
		"seed", res.Seed,
		"placements", len(res.Placements),
		"bytes", res.Stats.Bytes,
		"duration", res.Stats.RenderTime)

	s.runner.store(ctx, key, res)
	s.runner.record(ctx, opts, res)
	return res, nil
}

// Close stops the worker and waits for it to exit.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}

func newID() string { return uuid.NewString() }
