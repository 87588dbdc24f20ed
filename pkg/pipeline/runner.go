package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stickerwall/pkg/assets"
	"github.com/matzehuels/stickerwall/pkg/cache"
	"github.com/matzehuels/stickerwall/pkg/canvas"
	"github.com/matzehuels/stickerwall/pkg/history"
	"github.com/matzehuels/stickerwall/pkg/layout"
	"github.com/matzehuels/stickerwall/pkg/observability"
)

// historySize is how many records the default in-memory history keeps.
const historySize = 100

// Runner encapsulates pipeline execution with caching and history.
// The CLI, preview and server all go through it.
//
// The Runner holds no per-run state. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	History history.Store
	Fetcher *assets.Fetcher
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// Remote sources are fetched through the same cache. History is kept in
// memory until replaced.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		History: history.NewMemoryStore(historySize),
		Fetcher: assets.NewFetcher(assets.WithCache(c, keyer), assets.WithLogger(logger)),
		Logger:  logger,
	}
}

// Execute runs the complete pipeline once: resolve sources, load, lay out,
// composite and encode. A seeded run whose artifact is cached returns before
// any source is loaded.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	locators, err := opts.Locators()
	if err != nil {
		return nil, fmt.Errorf("sources: %w", err)
	}
	fingerprints := Fingerprints(locators)

	key := r.artifactKey(opts, fingerprints)
	if res, ok := r.lookup(ctx, key); ok {
		opts.Logger.Info("artifact cache hit", "seed", res.Seed, "bytes", res.Stats.Bytes)
		r.record(ctx, opts, res)
		return res, nil
	}

	s, err := r.open(ctx, opts, locators, fingerprints)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	loadStart := time.Now()
	n, err := s.WaitReady(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)
	opts.Logger.Info("loaded stickers", "count", n, "duration", loadTime)

	res, err := s.render(ctx, opts, key)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Stats.LoadTime = loadTime
	return res, nil
}

// Close releases resources held by the runner (cache and history).
func (r *Runner) Close() error {
	var err error
	if r.History != nil {
		err = r.History.Close(context.Background())
	}
	if r.Cache != nil {
		if cerr := r.Cache.Close(); cerr != nil {
			err = cerr
		}
	}
	return err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Artifact Cache
// =============================================================================

// cachedArtifact is the stored form of a seeded result.
type cachedArtifact struct {
	MIME       string             `json:"mime"`
	Blob       []byte             `json:"blob"`
	Seed       uint64             `json:"seed"`
	Images     int                `json:"images"`
	Drawn      int                `json:"drawn"`
	Placements []layout.Placement `json:"placements"`
}

// artifactKey returns the cache key for opts, or "" when the run is not
// reproducible or caching is off.
func (r *Runner) artifactKey(opts Options, fingerprints []string) string {
	if !opts.Seeded() || opts.NoCache {
		return ""
	}
	return r.Keyer.ArtifactKey(opts.ArtifactKeyOpts(fingerprints))
}

func (r *Runner) lookup(ctx context.Context, key string) (*Result, bool) {
	if key == "" {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("artifact cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "artifact")
		return nil, false
	}

	var c cachedArtifact
	if err := json.Unmarshal(data, &c); err != nil {
		r.Logger.Warn("discarding corrupt artifact", "key", key, "err", err)
		_ = r.Cache.Delete(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "artifact")
	return &Result{
		ID: newID(),
		Artifact: canvas.Artifact{
			Blob:    c.Blob,
			MIME:    c.MIME,
			DataURL: assets.DataURL(c.MIME, c.Blob),
		},
		Seed:       c.Seed,
		Placements: c.Placements,
		Images:     c.Images,
		Stats:      Stats{Drawn: c.Drawn, Bytes: len(c.Blob)},
		CacheInfo:  CacheInfo{Key: key, Hit: true},
	}, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result) {
	if key == "" {
		return
	}
	data, err := json.Marshal(cachedArtifact{
		MIME:       res.Artifact.MIME,
		Blob:       res.Artifact.Blob,
		Seed:       res.Seed,
		Images:     res.Images,
		Drawn:      res.Stats.Drawn,
		Placements: res.Placements,
	})
	if err != nil {
		r.Logger.Warn("encode artifact for cache", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Warn("artifact cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "artifact", len(data))
}

// =============================================================================
// History
// =============================================================================

func (r *Runner) record(ctx context.Context, opts Options, res *Result) {
	if r.History == nil {
		return
	}
	err := r.History.Insert(ctx, history.Record{
		ID:            res.ID,
		Width:         opts.Width,
		Height:        opts.Height,
		Density:       opts.Density,
		SizeVariation: opts.SizeVariation,
		Seed:          res.Seed,
		Rounds:        opts.Rounds,
		Background:    opts.Background,
		Format:        opts.Format,
		Backend:       opts.Backend,
		Images:        res.Images,
		Placements:    len(res.Placements),
		Bytes:         len(res.Artifact.Blob),
		Duration:      res.Stats.LoadTime + res.Stats.RenderTime,
		CacheHit:      res.CacheInfo.Hit,
	})
	if err != nil {
		r.Logger.Warn("history write failed", "id", res.ID, "err", err)
	}
}
