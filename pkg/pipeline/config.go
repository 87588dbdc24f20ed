package pipeline

import (
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stickerwall/pkg/errors"
)

// LoadConfig reads a TOML profile. Keys map to the toml tags of Options;
// unknown keys are rejected so typos do not pass silently.
//
//	assets = "~/stickers"
//	filter_corners = true
//	width = 3840
//	height = 2160
//	density = 25
//	background = "auto"
func LoadConfig(path string) (Options, error) {
	var opts Options
	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Options{}, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return opts, nil
}
