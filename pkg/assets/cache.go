package assets

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/matzehuels/stickerwall/pkg/errors"
	"github.com/matzehuels/stickerwall/pkg/observability"
)

// Cache holds the result of one background Load.
//
//	c := assets.NewCache(fetcher, locators)
//	c.Start(ctx)
//	<-c.Done()
//	images, err := c.Result()
type Cache struct {
	fetcher  *Fetcher
	locators []Locator
	opts     []LoadOption

	once sync.Once
	done chan struct{}

	// written once before done is closed
	images []image.Image
	err    error
}

// NewCache prepares a load of locators. Nothing happens until Start.
func NewCache(f *Fetcher, locators []Locator, opts ...LoadOption) *Cache {
	return &Cache{
		fetcher:  f,
		locators: locators,
		opts:     opts,
		done:     make(chan struct{}),
	}
}

// Static returns a Cache that is already resolved with images.
func Static(images ...image.Image) *Cache {
	c := &Cache{done: make(chan struct{}), images: images}
	c.once.Do(func() { close(c.done) })
	return c
}

// Start begins loading in a new goroutine. Later calls do nothing.
func (c *Cache) Start(ctx context.Context) {
	c.once.Do(func() {
		go func() {
			defer close(c.done)
			start := time.Now()
			c.images, c.err = Load(ctx, c.fetcher, c.locators, c.opts...)
			observability.Render().OnAssetsLoaded(ctx, len(c.images), time.Since(start), c.err)
		}()
	})
}

// Done is closed when the load has finished, successfully or not.
func (c *Cache) Done() <-chan struct{} { return c.done }

// Result returns the loaded images. Before Done is closed it returns a
// SURFACE_NOT_READY error.
func (c *Cache) Result() ([]image.Image, error) {
	select {
	case <-c.done:
		return c.images, c.err
	default:
		return nil, errors.New(errors.ErrCodeSurfaceNotReady, "assets still loading")
	}
}
