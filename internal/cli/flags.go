package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stickerwall/pkg/canvas"
	"github.com/matzehuels/stickerwall/pkg/pipeline"
)

// optionFlags binds pipeline options to command flags and merges them over
// an optional TOML profile.
type optionFlags struct {
	config string
	opts   pipeline.Options
}

// optionSetters copies one option from src to dst, keyed by flag name.
var optionSetters = map[string]func(dst, src *pipeline.Options){
	"assets":         func(d, s *pipeline.Options) { d.AssetsDir = s.AssetsDir },
	"source":         func(d, s *pipeline.Options) { d.Sources = s.Sources },
	"filter-corners": func(d, s *pipeline.Options) { d.FilterCorners = s.FilterCorners },
	"width":          func(d, s *pipeline.Options) { d.Width = s.Width },
	"height":         func(d, s *pipeline.Options) { d.Height = s.Height },
	"density":        func(d, s *pipeline.Options) { d.Density = s.Density },
	"size-variation": func(d, s *pipeline.Options) { d.SizeVariation = s.SizeVariation },
	"seed":           func(d, s *pipeline.Options) { d.Seed = s.Seed },
	"rounds":         func(d, s *pipeline.Options) { d.Rounds = s.Rounds },
	"background":     func(d, s *pipeline.Options) { d.Background = s.Background },
	"format":         func(d, s *pipeline.Options) { d.Format = s.Format },
	"quality":        func(d, s *pipeline.Options) { d.Quality = s.Quality },
	"backend":        func(d, s *pipeline.Options) { d.Backend = s.Backend },
}

func (f *optionFlags) bindConfig(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "TOML profile with default options (flags override it)")
}

func (f *optionFlags) bindSources(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.opts.AssetsDir, "assets", "", "directory of sticker images")
	fl.StringArrayVar(&f.opts.Sources, "source", nil, "extra image path, URL or data URL (repeatable)")
	fl.BoolVar(&f.opts.FilterCorners, "filter-corners", false, "skip images without transparent corners")
}

func (f *optionFlags) bindLayout(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&f.opts.Width, "width", pipeline.DefaultWidth, "canvas width in pixels")
	fl.IntVar(&f.opts.Height, "height", pipeline.DefaultHeight, "canvas height in pixels")
	fl.Float64Var(&f.opts.Density, "density", pipeline.DefaultDensity, "approximate sticker columns across the width")
	fl.Float64Var(&f.opts.SizeVariation, "size-variation", pipeline.DefaultSizeVariation, "exponent applied to sticker sizes")
	fl.Uint64Var(&f.opts.Seed, "seed", 0, "random seed (0 picks one and reports it)")
	fl.IntVar(&f.opts.Rounds, "rounds", pipeline.DefaultRounds, "fill passes over the canvas")
}

func (f *optionFlags) bindRender(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.opts.Background, "background", pipeline.DefaultBackground, "background: hex color, auto, or transparent")
	fl.StringVarP(&f.opts.Format, "format", "f", string(pipeline.DefaultFormat), "output format: png, jpeg")
	fl.IntVar(&f.opts.Quality, "quality", canvas.DefaultJPEGQuality, "JPEG quality (1-100)")
	fl.StringVar(&f.opts.Backend, "backend", pipeline.DefaultBackend, "drawing backend: raster, gg")
}

// bindAll binds every option flag.
func (f *optionFlags) bindAll(cmd *cobra.Command) {
	f.bindConfig(cmd)
	f.bindSources(cmd)
	f.bindLayout(cmd)
	f.bindRender(cmd)
}

// resolve returns the effective options: the profile when one is given,
// with every explicitly set flag applied on top.
func (f *optionFlags) resolve(cmd *cobra.Command) (pipeline.Options, error) {
	if f.config == "" {
		return f.opts, nil
	}
	base, err := pipeline.LoadConfig(f.config)
	if err != nil {
		return pipeline.Options{}, err
	}
	for name, set := range optionSetters {
		if fl := cmd.Flags().Lookup(name); fl != nil && fl.Changed {
			set(&base, &f.opts)
		}
	}
	return base, nil
}
