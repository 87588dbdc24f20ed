package assets

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/matzehuels/stickerwall/pkg/errors"
)

// Kind is the transport behind a locator.
type Kind int

const (
	KindFile Kind = iota
	KindHTTP
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindData:
		return "data"
	default:
		return "file"
	}
}

// Locator is a parsed image source.
type Locator struct {
	Kind Kind
	Raw  string // Input as given
	Path string // Filesystem path for KindFile
	MIME string // Declared media type for KindData

	data []byte
}

// ParseLocator classifies s. Data URLs are decoded immediately so a bad
// payload fails before any loading starts.
func ParseLocator(s string) (Locator, error) {
	if err := errors.ValidateLocator(s); err != nil {
		return Locator{}, err
	}

	switch {
	case strings.HasPrefix(s, "data:"):
		mime, data, err := decodeDataURL(s)
		if err != nil {
			return Locator{}, errors.Wrap(errors.ErrCodeInvalidSource, err, "invalid data URL")
		}
		return Locator{Kind: KindData, Raw: s, MIME: mime, data: data}, nil

	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		u, err := url.Parse(s)
		if err != nil || u.Host == "" {
			return Locator{}, errors.New(errors.ErrCodeInvalidSource, "invalid URL %q", s)
		}
		return Locator{Kind: KindHTTP, Raw: s}, nil

	case strings.HasPrefix(s, "file://"):
		u, err := url.Parse(s)
		if err != nil || u.Path == "" {
			return Locator{}, errors.New(errors.ErrCodeInvalidSource, "invalid file URL %q", s)
		}
		return Locator{Kind: KindFile, Raw: s, Path: filepath.FromSlash(u.Path)}, nil

	case strings.Contains(s, "://"):
		return Locator{}, errors.New(errors.ErrCodeInvalidSource, "unsupported scheme in %q", s)
	}
	return Locator{Kind: KindFile, Raw: s, Path: filepath.Clean(s)}, nil
}

// ParseLocators parses every entry of list.
func ParseLocators(list []string) ([]Locator, error) {
	out := make([]Locator, 0, len(list))
	for i, s := range list {
		loc, err := ParseLocator(s)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		out = append(out, loc)
	}
	return out, nil
}

// String returns the locator for messages, abbreviating data URLs.
func (l Locator) String() string {
	if l.Kind == KindData {
		return fmt.Sprintf("data:%s (%d bytes)", l.MIME, len(l.data))
	}
	return l.Raw
}

// DataURL encodes data as a base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// decodeDataURL splits data:[<mime>][;base64],<payload>.
func decodeDataURL(s string) (string, []byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("missing ','")
	}

	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if mime == "" {
		mime = "text/plain"
	}
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, err
		}
		return mime, data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, err
	}
	return mime, []byte(text), nil
}
