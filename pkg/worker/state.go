package worker

import (
	"image"

	"github.com/matzehuels/stickerwall/pkg/canvas"
)

// State is everything the worker owns. Handlers receive it by value and
// return the successor.
type State struct {
	surface canvas.Surface
	images  []image.Image
	loaded  bool  // asset load finished
	loadErr error // asset load failure, if any
}

// HasSurface reports whether Init has bound a surface.
func (s State) HasSurface() bool { return s.surface != nil }

// AssetsLoaded reports whether the stickers loaded successfully.
func (s State) AssetsLoaded() bool { return s.loaded && s.loadErr == nil }

// Ready reports whether Generate can be serviced.
func (s State) Ready() bool { return s.HasSurface() && s.AssetsLoaded() }

// ImageCount returns the number of loaded stickers.
func (s State) ImageCount() int { return len(s.images) }

// image returns the sticker at i, or nil when there is none.
func (s State) image(i int) image.Image {
	if i < 0 || i >= len(s.images) {
		return nil
	}
	return s.images[i]
}

func (s State) withSurface(surface canvas.Surface) State {
	s.surface = surface
	return s
}

func (s State) withAssets(images []image.Image, err error) State {
	s.loaded = true
	s.images, s.loadErr = images, err
	return s
}
