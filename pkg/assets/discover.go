package assets

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Entry describes one discovered file.
type Entry struct {
	Path        string
	Width       int
	Height      int
	Transparent bool  // HasTransparentCorners result
	Err         error // Decode failure, if any
}

// imageFiles lists files in dir with an image extension, in lexical order.
func imageFiles(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, file := range files {
		if !file.IsDir() && imageExts[strings.ToLower(filepath.Ext(file.Name()))] {
			paths = append(paths, filepath.Join(dir, file.Name()))
		}
	}
	return paths, nil
}

// Inspect decodes every image file in dir, in lexical order.
func Inspect(dir string) ([]Entry, error) {
	paths, err := imageFiles(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		e := Entry{Path: path}
		img, err := imaging.Open(path)
		if err != nil {
			e.Err = err
		} else {
			b := img.Bounds()
			e.Width, e.Height = b.Dx(), b.Dy()
			e.Transparent = HasTransparentCorners(img)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Discover returns the image paths in dir. With filter, only decodable
// images with transparent corners are kept.
func Discover(dir string, filter bool) ([]string, error) {
	if !filter {
		return imageFiles(dir)
	}

	entries, err := Inspect(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.Err == nil && e.Transparent {
			paths = append(paths, e.Path)
		}
	}
	return paths, nil
}

// HasTransparentCorners reports whether img looks like a cut-out sticker
// rather than a rectangular picture. It is false when any of these pairs are
// opaque: both top corners, both mid-height edges, top and bottom center. It
// is also false when both bottom corners are opaque pure black or white.
func HasTransparentCorners(img image.Image) bool {
	b := img.Bounds()
	if b.Empty() {
		return false
	}
	left, right := b.Min.X, b.Max.X-1
	top, bottom := b.Min.Y, b.Max.Y-1
	midX, midY := b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2

	at := func(x, y int) color.NRGBA {
		return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	}
	opaque := func(x, y int) bool { return at(x, y).A != 0 }
	blackOrWhite := func(x, y int) bool {
		c := at(x, y)
		return c.A == 255 && ((c.R == 0 && c.G == 0 && c.B == 0) || (c.R == 255 && c.G == 255 && c.B == 255))
	}

	switch {
	case opaque(left, top) && opaque(right, top):
		return false
	case blackOrWhite(left, bottom) && blackOrWhite(right, bottom):
		return false
	case opaque(left, midY) && opaque(right, midY):
		return false
	case opaque(midX, top) && opaque(midX, bottom):
		return false
	}
	return true
}
