package canvas

import (
	"image"
	"image/color"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/stickerwall/pkg/errors"
)

// DefaultBackground is the pale mint the wallpapers are painted on.
const DefaultBackground = "#eaffef"

const (
	// BackgroundAuto derives a tint from the stickers.
	BackgroundAuto = "auto"
	// BackgroundTransparent leaves the canvas clear; JPEG output turns it black.
	BackgroundTransparent = "transparent"
)

const (
	// autoSamples is how many stickers contribute to an auto background.
	autoSamples = 8
	// autoPaleness is how far the sticker tint is blended toward white.
	autoPaleness = 0.85
)

// ParseBackground resolves a background spec: a hex color with or without
// '#', "transparent", or "auto". images is only read for "auto".
func ParseBackground(s string, images []image.Image) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		s = DefaultBackground
	case BackgroundTransparent:
		return color.Transparent, nil
	case BackgroundAuto:
		return autoBackground(images), nil
	}

	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid background %q", s)
	}
	return toNRGBA(c), nil
}

// autoBackground blends the dominant colors of the first stickers in Lab
// space and lifts the result toward white.
func autoBackground(images []image.Image) color.Color {
	white := colorful.Color{R: 1, G: 1, B: 1}
	var (
		mix colorful.Color
		n   int
	)
	for _, img := range images {
		if n == autoSamples {
			break
		}
		if img == nil {
			continue
		}
		c, ok := colorful.MakeColor(dominantcolor.Find(img))
		if !ok {
			continue
		}
		n++
		if n == 1 {
			mix = c
			continue
		}
		mix = mix.BlendLab(c, 1/float64(n))
	}
	if n == 0 {
		c, _ := colorful.Hex(DefaultBackground)
		return toNRGBA(c)
	}
	return toNRGBA(mix.BlendLab(white, autoPaleness).Clamped())
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Hex formats c as #rrggbb, ignoring alpha.
func Hex(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "transparent"
	}
	return cf.Hex()
}
