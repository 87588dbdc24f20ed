package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/stickerwall/pkg/assets"
	"github.com/matzehuels/stickerwall/pkg/cache"
)

// Locators resolves AssetsDir and Sources into locators, directory entries
// first in name order. A leading ~ in AssetsDir is expanded.
func (o *Options) Locators() ([]assets.Locator, error) {
	var raw []string
	if o.AssetsDir != "" {
		dir, err := expandHome(o.AssetsDir)
		if err != nil {
			return nil, err
		}
		paths, err := assets.Discover(dir, o.FilterCorners)
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", dir, err)
		}
		raw = append(raw, paths...)
	}
	raw = append(raw, o.Sources...)
	return assets.ParseLocators(raw)
}

// Fingerprints identifies the content behind locators for cache keys. Local
// files include their size and modification time so an edited sticker
// invalidates cached wallpapers. Data URLs are hashed.
func Fingerprints(locators []assets.Locator) []string {
	out := make([]string, len(locators))
	for i, loc := range locators {
		switch loc.Kind {
		case assets.KindFile:
			if fi, err := os.Stat(loc.Path); err == nil {
				out[i] = fmt.Sprintf("%s@%d:%d", loc.Path, fi.ModTime().UnixNano(), fi.Size())
				continue
			}
			out[i] = loc.Path
		case assets.KindData:
			out[i] = "data:" + cache.Hash([]byte(loc.Raw))
		default:
			out[i] = loc.Raw
		}
	}
	return out
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
