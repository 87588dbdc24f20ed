package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Raster is a Surface backed by *image.RGBA.
type Raster struct {
	img *image.RGBA
}

// NewRaster returns a transparent width×height raster.
func NewRaster(width, height int) *Raster {
	return &Raster{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (r *Raster) Resize(width, height int) error {
	if w, h := r.Size(); w == width && h == height {
		return nil
	}
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

func (r *Raster) Fill(c color.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *Raster) DrawSticker(img image.Image, cx, cy, size, angle float64) {
	if img == nil || size <= 0 || img.Bounds().Empty() {
		return
	}
	draw.BiLinear.Transform(r.img, stickerTransform(img.Bounds(), cx, cy, size, angle), img, img.Bounds(), draw.Over, nil)
}

func (r *Raster) Image() image.Image { return r.img }

// stickerTransform maps source pixels to destination pixels: scale the
// bounds to size×size, rotate clockwise by angle degrees about the source
// center, and move that center to (cx, cy).
func stickerTransform(src image.Rectangle, cx, cy, size, angle float64) f64.Aff3 {
	sx := size / float64(src.Dx())
	sy := size / float64(src.Dy())
	sin, cos := math.Sincos(angle * math.Pi / 180)

	a, b := cos*sx, -sin*sy
	d, e := sin*sx, cos*sy
	mx := float64(src.Min.X) + float64(src.Dx())/2
	my := float64(src.Min.Y) + float64(src.Dy())/2

	return f64.Aff3{
		a, b, cx - (a*mx + b*my),
		d, e, cy - (d*mx + e*my),
	}
}

var _ Surface = (*Raster)(nil)
