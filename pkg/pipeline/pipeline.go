// Package pipeline provides the end-to-end wallpaper pipeline for stickerwall.
//
// This package ties source discovery, asset loading, layout, compositing and
// caching together so the CLI, the preview UI and the HTTP server behave
// identically.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Sources: Discover images in a directory and parse explicit locators
//  2. Load: Fetch and decode every source (see package assets)
//  3. Layout: Place stickers on the canvas (see package layout)
//  4. Render: Composite onto a surface and encode (see package worker)
//
// Stages 2 to 4 run inside a [worker.Worker] owned by a [Session]. A session
// loads its sources once and then serves any number of generations.
//
// # Usage
//
// One-shot generation:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    AssetsDir: "stickers",
//	    Seed:      42,
//	})
//	os.WriteFile("wall.png", result.Artifact.Blob, 0o644)
//
// Repeated generation over the same sources:
//
//	s, err := runner.Open(ctx, opts)
//	defer s.Close()
//	s.WaitReady(ctx)
//	a, _ := s.Generate(ctx, opts)
//	opts.Density = 30
//	b, _ := s.Generate(ctx, opts)
//
// Seeded results are cached by every input that affects the output bytes,
// so a repeated seeded request skips loading and compositing entirely.
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stickerwall/pkg/cache"
	"github.com/matzehuels/stickerwall/pkg/canvas"
	"github.com/matzehuels/stickerwall/pkg/errors"
	"github.com/matzehuels/stickerwall/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, Preview, and Server
// =============================================================================

const (
	// DefaultWidth and DefaultHeight match a common ultrawide desktop.
	DefaultWidth  = 6000
	DefaultHeight = 3164

	// DefaultDensity is the approximate number of sticker columns.
	DefaultDensity = 20.0

	// DefaultSizeVariation leaves drawn sizes unchanged.
	DefaultSizeVariation = 1.0

	// DefaultFormat is the output encoding.
	DefaultFormat = canvas.FormatPNG

	// DefaultBackend is the drawing surface implementation.
	DefaultBackend = canvas.BackendRaster

	// DefaultBackground is the canvas fill.
	DefaultBackground = canvas.DefaultBackground

	// DefaultRounds is the number of fill passes.
	DefaultRounds = layout.DefaultRounds

	maxRounds = 100
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// It is decoded from JSON request bodies and TOML profiles.
type Options struct {
	// Source options
	AssetsDir     string   `json:"assets_dir,omitempty" toml:"assets"`
	Sources       []string `json:"sources,omitempty" toml:"sources"`
	FilterCorners bool     `json:"filter_corners,omitempty" toml:"filter_corners"`

	// Layout options
	Width         int     `json:"width,omitempty" toml:"width"`
	Height        int     `json:"height,omitempty" toml:"height"`
	Density       float64 `json:"density,omitempty" toml:"density"`
	SizeVariation float64 `json:"size_variation,omitempty" toml:"size_variation"`
	Seed          uint64  `json:"seed,omitempty" toml:"seed"` // 0 picks a random seed per run
	Rounds        int     `json:"rounds,omitempty" toml:"rounds"`

	// Render options
	Background string `json:"background,omitempty" toml:"background"`
	Format     string `json:"format,omitempty" toml:"format"`
	Quality    int    `json:"quality,omitempty" toml:"quality"`
	Backend    string `json:"backend,omitempty" toml:"backend"`

	// Runtime options (not serialized)
	NoCache bool        `json:"-" toml:"-"`
	Logger  *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of one generation.
type Result struct {
	// ID correlates the result with logs, history and HTTP responses.
	ID string

	// Artifact is the encoded wallpaper.
	Artifact canvas.Artifact

	// Seed is the seed actually used.
	Seed uint64

	// Placements is the layout that was drawn.
	Placements []layout.Placement

	// Images is the number of loaded stickers.
	Images int

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the artifact came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Drawn      int
	Bytes      int
	LoadTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo reports how the artifact cache was used.
type CacheInfo struct {
	Key string // empty for unseeded or uncached runs
	Hit bool
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and rejects out-of-range values.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills every zero field with its default.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Density == 0 {
		o.Density = DefaultDensity
	}
	if o.SizeVariation == 0 {
		o.SizeVariation = DefaultSizeVariation
	}
	if o.Rounds == 0 {
		o.Rounds = DefaultRounds
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.Format == "" {
		o.Format = string(DefaultFormat)
	}
	if o.Quality == 0 {
		o.Quality = canvas.DefaultJPEGQuality
	}
	if o.Backend == "" {
		o.Backend = DefaultBackend
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Validate checks every field. Format is rewritten to its canonical name.
func (o *Options) Validate() error {
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if err := errors.ValidateDensity(o.Density); err != nil {
		return err
	}
	if err := errors.ValidateSizeVariation(o.SizeVariation); err != nil {
		return err
	}
	if o.Rounds < 0 || o.Rounds > maxRounds {
		return errors.New(errors.ErrCodeInvalidInput, "rounds must be between 1 and %d (got %d)", maxRounds, o.Rounds)
	}
	if o.Quality < 0 || o.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "quality must be between 1 and 100 (got %d)", o.Quality)
	}
	format, err := canvas.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	o.Format = string(format)
	if !slices.Contains(canvas.Backends(), strings.ToLower(o.Backend)) {
		return errors.New(errors.ErrCodeInvalidBackend, "unknown backend %q (want %s)", o.Backend, strings.Join(canvas.Backends(), " or "))
	}
	if _, err := canvas.ParseBackground(o.Background, nil); err != nil {
		return err
	}
	return nil
}

// WithDefaults returns a copy of o with every zero field taken from base.
// The copy is never marked validated, so values that came from o are
// checked again by ValidateAndSetDefaults.
func (o Options) WithDefaults(base Options) Options {
	if o.AssetsDir == "" {
		o.AssetsDir = base.AssetsDir
	}
	if len(o.Sources) == 0 {
		o.Sources = base.Sources
	}
	o.FilterCorners = o.FilterCorners || base.FilterCorners
	if o.Width == 0 {
		o.Width = base.Width
	}
	if o.Height == 0 {
		o.Height = base.Height
	}
	if o.Density == 0 {
		o.Density = base.Density
	}
	if o.SizeVariation == 0 {
		o.SizeVariation = base.SizeVariation
	}
	if o.Seed == 0 {
		o.Seed = base.Seed
	}
	if o.Rounds == 0 {
		o.Rounds = base.Rounds
	}
	if o.Background == "" {
		o.Background = base.Background
	}
	if o.Format == "" {
		o.Format = base.Format
	}
	if o.Quality == 0 {
		o.Quality = base.Quality
	}
	if o.Backend == "" {
		o.Backend = base.Backend
	}
	o.NoCache = o.NoCache || base.NoCache
	if o.Logger == nil {
		o.Logger = base.Logger
	}
	o.validated = false
	return o
}

// Seeded reports whether the output is reproducible and therefore cacheable.
func (o *Options) Seeded() bool { return o.Seed != 0 }

// ArtifactKeyOpts returns the cache key options for these options over the
// given source fingerprints.
func (o *Options) ArtifactKeyOpts(sources []string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Sources:       sources,
		Width:         o.Width,
		Height:        o.Height,
		Density:       o.Density,
		SizeVariation: o.SizeVariation,
		Seed:          o.Seed,
		Rounds:        o.Rounds,
		Background:    strings.ToLower(o.Background),
		Format:        o.Format,
		Quality:       o.Quality,
		Backend:       strings.ToLower(o.Backend),
	}
}
