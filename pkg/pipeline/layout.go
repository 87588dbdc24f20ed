package pipeline

import (
	"math/rand/v2"

	"github.com/matzehuels/stickerwall/pkg/layout"
)

// =============================================================================
// Layout Only
// =============================================================================

// Layout runs only the layout stage for total stickers, without loading or
// drawing anything. It returns the placements and the seed used.
func Layout(opts Options, total int) ([]layout.Placement, uint64, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, 0, err
	}
	seed := opts.Seed
	for seed == 0 {
		seed = rand.Uint64()
	}
	placements, err := layout.Generate(layout.NewRand(seed), layout.Params{
		Width:         opts.Width,
		Height:        opts.Height,
		Total:         total,
		Density:       opts.Density,
		SizeVariation: opts.SizeVariation,
	}, layout.WithRounds(opts.Rounds))
	if err != nil {
		return nil, 0, err
	}
	return placements, seed, nil
}
