// Package canvas provides the drawing surfaces stickers are composited on
// and the encoders that turn a finished surface into an artifact.
//
// Two backends implement [Surface]:
//   - "raster": an *image.RGBA drawn with one affine transform per sticker
//     through golang.org/x/image/draw
//   - "gg": a github.com/gogpu/gg context; the visible part of each rotated
//     sticker is rendered into a scratch image and blitted at its bounds
//
// A surface is handed to the worker once through a [Transferable]; after the
// transfer the sender can no longer obtain it.
package canvas

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"

	swerrors "github.com/matzehuels/stickerwall/pkg/errors"
)

// Backend names accepted by NewSurface.
const (
	BackendRaster = "raster"
	BackendGG     = "gg"
)

// Surface is a resizable drawing target.
type Surface interface {
	// Resize sets the pixel size. Contents are undefined afterwards.
	Resize(width, height int) error
	Size() (width, height int)

	// Fill paints every pixel with c.
	Fill(c color.Color)

	// DrawSticker draws img scaled to a size×size square centered on
	// (cx, cy) and rotated clockwise by angle degrees. A nil img is ignored.
	DrawSticker(img image.Image, cx, cy, size, angle float64)

	// Image returns the current pixels.
	Image() image.Image
}

// Backends lists the accepted backend names.
func Backends() []string { return []string{BackendRaster, BackendGG} }

// NewSurface returns a surface of the named backend. An empty name selects
// the raster backend.
func NewSurface(backend string, width, height int) (Surface, error) {
	if err := swerrors.ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	switch strings.ToLower(backend) {
	case "", BackendRaster:
		return NewRaster(width, height), nil
	case BackendGG:
		return NewGG(width, height), nil
	}
	return nil, swerrors.New(swerrors.ErrCodeInvalidBackend, "unknown backend %q (want %s)", backend, strings.Join(Backends(), " or "))
}

// ErrTransferred is returned when a Transferable is transferred twice.
var ErrTransferred = errors.New("surface already transferred")

// Transferable hands a surface to exactly one receiver.
type Transferable struct {
	mu      sync.Mutex
	surface Surface
}

// NewTransferable wraps s for a one-way transfer.
func NewTransferable(s Surface) *Transferable {
	return &Transferable{surface: s}
}

// Transfer returns the surface and forgets it. Every later call returns a
// TRANSFERRED error wrapping ErrTransferred.
func (t *Transferable) Transfer() (Surface, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.surface == nil {
		return nil, swerrors.Wrap(swerrors.ErrCodeTransferred, ErrTransferred, "surface can only be transferred once")
	}
	s := t.surface
	t.surface = nil
	return s, nil
}

// Transferred reports whether Transfer has already succeeded.
func (t *Transferable) Transferred() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.surface == nil
}
