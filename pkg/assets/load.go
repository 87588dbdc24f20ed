package assets

import (
	"bytes"
	"context"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	// Register decoders beyond the imaging defaults.
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/stickerwall/pkg/errors"
)

// DefaultConcurrency is the number of locators fetched at once.
const DefaultConcurrency = 8

// LoadOption configures Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	concurrency int
}

// WithConcurrency bounds parallel fetches. Values below 1 mean the default.
func WithConcurrency(n int) LoadOption { return func(c *loadConfig) { c.concurrency = n } }

// Load fetches and decodes every locator and returns the images in input
// order. Any failure cancels the remaining work and is returned as one
// ASSET_LOAD error naming the failing locator.
func Load(ctx context.Context, f *Fetcher, locators []Locator, opts ...LoadOption) ([]image.Image, error) {
	cfg := loadConfig{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = DefaultConcurrency
	}

	images := make([]image.Image, len(locators))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)

	for i, loc := range locators {
		g.Go(func() error {
			img, err := loadOne(gctx, f, loc)
			if err != nil {
				return errors.Wrap(errors.ErrCodeAssetLoad, err, "load %s", loc)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func loadOne(ctx context.Context, f *Fetcher, loc Locator) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := f.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}
