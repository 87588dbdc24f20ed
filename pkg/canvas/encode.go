package canvas

import (
	"bytes"
	"encoding/base64"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/stickerwall/pkg/errors"
)

// Format is an output image format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// DefaultJPEGQuality is used when Encode is given a quality outside 1..100.
const DefaultJPEGQuality = 92

// ParseFormat accepts png, jpeg and jpg in any case. An empty string is PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want png or jpeg)", s)
}

// MIME returns the media type of f.
func (f Format) MIME() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Ext returns the file extension of f, with the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// Artifact is an encoded image in binary and data-URL form.
type Artifact struct {
	Blob    []byte
	MIME    string
	DataURL string
}

// Encode compresses img. quality applies to JPEG only.
func Encode(img image.Image, format Format, quality int) (Artifact, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatPNG, "":
		format = FormatPNG
		err = imaging.Encode(&buf, img, imaging.PNG)
	case FormatJPEG:
		if quality < 1 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		return Artifact{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	if err != nil {
		return Artifact{}, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", format)
	}

	blob := buf.Bytes()
	return Artifact{
		Blob:    blob,
		MIME:    format.MIME(),
		DataURL: "data:" + format.MIME() + ";base64," + base64.StdEncoding.EncodeToString(blob),
	}, nil
}
