package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
)

// GG is a Surface backed by a gogpu/gg context.
//
// gg blits images axis-aligned, so each sticker is first transformed into a
// scratch image covering only the visible part of its rotated bounding box,
// then blitted at that box. Memory is bounded by the canvas, not the sticker.
type GG struct {
	dc *gg.Context
}

// NewGG returns a width×height gg surface.
func NewGG(width, height int) *GG {
	return &GG{dc: gg.NewContext(width, height)}
}

func (g *GG) Resize(width, height int) error { return g.dc.Resize(width, height) }

func (g *GG) Size() (int, int) { return g.dc.Width(), g.dc.Height() }

func (g *GG) Fill(c color.Color) { g.dc.ClearWithColor(gg.FromColor(c)) }

func (g *GG) DrawSticker(img image.Image, cx, cy, size, angle float64) {
	if img == nil || size <= 0 || img.Bounds().Empty() {
		return
	}
	w, h := g.Size()
	visible := stickerBounds(cx, cy, size, angle).Intersect(image.Rect(0, 0, w, h))
	if visible.Empty() {
		return
	}

	m := stickerTransform(img.Bounds(), cx, cy, size, angle)
	m[2] -= float64(visible.Min.X)
	m[5] -= float64(visible.Min.Y)
	sprite := image.NewNRGBA(image.Rect(0, 0, visible.Dx(), visible.Dy()))
	draw.BiLinear.Transform(sprite, m, img, img.Bounds(), draw.Src, nil)

	g.dc.DrawImageEx(gg.ImageBufFromImage(sprite), gg.DrawImageOptions{
		X:         float64(visible.Min.X),
		Y:         float64(visible.Min.Y),
		DstWidth:  float64(visible.Dx()),
		DstHeight: float64(visible.Dy()),
	})
}

func (g *GG) Image() image.Image { return g.dc.Image() }

// Close releases the gg context.
func (g *GG) Close() error { return g.dc.Close() }

// stickerBounds is the pixel rectangle covered by a size×size square centered
// at (cx, cy) and rotated by angle degrees. Coordinates are clamped so huge
// stickers cannot overflow int.
func stickerBounds(cx, cy, size, angle float64) image.Rectangle {
	sin, cos := math.Sincos(angle * math.Pi / 180)
	half := size / 2 * (math.Abs(sin) + math.Abs(cos))
	clamp := func(v float64) int { return int(math.Max(-maxCoord, math.Min(maxCoord, v))) }
	return image.Rect(
		clamp(math.Floor(cx-half)), clamp(math.Floor(cy-half)),
		clamp(math.Ceil(cx+half)), clamp(math.Ceil(cy+half)),
	)
}

// maxCoord bounds bounding-box coordinates; it is far beyond any canvas.
const maxCoord = 1 << 30

var _ Surface = (*GG)(nil)
