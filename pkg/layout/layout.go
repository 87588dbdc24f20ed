package layout

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/stickerwall/pkg/errors"
	"github.com/matzehuels/stickerwall/pkg/weighted"
)

// Rand is the random source used by Generate.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a deterministic source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Params describes the canvas and the sticker set.
type Params struct {
	Width, Height int     // Output size in pixels
	Total         int     // Number of distinct images; indices are drawn from [0, Total)
	Density       float64 // Approximate sticker columns across the width
	SizeVariation float64 // Exponent applied to each drawn size
}

// Placement is one sticker to draw. X and Y are the pixel-space center,
// Size the edge length of the square draw region and Angle the rotation in
// degrees.
type Placement struct {
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Angle float64 `json:"angle"`
	Round int     `json:"round"`
}

// Geometry is the unit system derived from Params.
type Geometry struct {
	Density      float64 `json:"density"`        // Density after aspect-ratio adjustment
	Scale        float64 `json:"scale"`          // Pixels per unit
	HeightInUnit float64 `json:"height_in_unit"` // Canvas height in units
	Columns      int     `json:"columns"`        // Height-field cells
}

// Validate reports whether the parameters can be laid out.
func (p Params) Validate() error {
	if err := errors.ValidateDimensions(p.Width, p.Height); err != nil {
		return err
	}
	if p.Total < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "total must be non-negative (got %d)", p.Total)
	}
	if err := errors.ValidateDensity(p.Density); err != nil {
		return err
	}
	return errors.ValidateSizeVariation(p.SizeVariation)
}

// Geometry derives the unit system. Portrait canvases scale density down by
// width/height so a column keeps roughly the same pixel width.
func (p Params) Geometry(columnsPerUnit int) Geometry {
	density := p.Density
	if p.Height > p.Width {
		density *= float64(p.Width) / float64(p.Height)
	}
	scale := float64(p.Width) / density
	return Geometry{
		Density:      density,
		Scale:        scale,
		HeightInUnit: float64(p.Height) / scale,
		Columns:      int(math.Ceil(density * float64(columnsPerUnit))),
	}
}

// Generate lays out stickers for p. The result is ordered by round, then by
// acceptance within the round. It returns an INVALID_INPUT error for bad
// parameters and an INTERNAL_SELECTION error for an unusable size table.
func Generate(r Rand, p Params, opts ...Option) ([]Placement, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Total == 0 {
		return []Placement{}, nil
	}

	cfg := newConfig(opts)
	sizes := defaultSizes
	if cfg.sizeClasses != nil {
		s, err := weighted.New(cfg.sizeClasses...)
		if err != nil {
			return nil, err
		}
		sizes = s
	}

	g := &generator{
		r:     r,
		p:     p,
		cfg:   cfg,
		geo:   p.Geometry(cfg.columnsPerUnit),
		sizes: sizes,
	}

	var out []Placement
	for round := range cfg.rounds {
		placed, err := g.fillRound(round)
		if err != nil {
			return nil, err
		}
		out = append(out, placed...)
	}
	return out, nil
}

type generator struct {
	r     Rand
	p     Params
	cfg   config
	geo   Geometry
	sizes *weighted.Selector[float64]
}

// fillRound places shuffled passes of every index on a fresh field and
// returns as soon as one sticker cannot land.
func (g *generator) fillRound(round int) ([]Placement, error) {
	field := newHeightField(g.geo.Columns)
	indices := make([]int, g.p.Total)
	for i := range indices {
		indices[i] = i
	}

	var placed []Placement
	for {
		g.r.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
		for _, idx := range indices {
			size, err := g.drawSize()
			if err != nil {
				return nil, err
			}
			pl, ok := g.place(field, idx, size)
			if !ok {
				return placed, nil
			}
			pl.Round = round
			placed = append(placed, pl)
		}
	}
}

// drawSize returns jitter^SizeVariation * class in units. Only the jitter is
// shaped by the exponent, so a size never exceeds the largest class by more
// than jitterMax^SizeVariation.
func (g *generator) drawSize() (float64, error) {
	class, err := g.sizes.Pick(g.r)
	if err != nil {
		return 0, err
	}
	jitter := jitterMin + g.r.Float64()*(jitterMax-jitterMin)
	return math.Pow(jitter, g.p.SizeVariation) * class, nil
}

// place tries random columns for one sticker. It reports false when every
// attempt was rejected.
func (g *generator) place(field heightField, index int, size float64) (Placement, bool) {
	limit := g.geo.HeightInUnit + floatMargin
	span := g.geo.Density + 2*edgeUnits
	for range g.cfg.maxAttempts {
		x := math.Floor(g.r.Float64()*span) - edgeUnits
		lo, hi := field.window(x, size, g.cfg.columnsPerUnit)
		minY, maxY, ok := field.settle(g.r, lo, hi)
		if !ok || minY >= limit {
			continue
		}
		field.raise(lo, hi, minY, maxY, size)
		return Placement{
			Index: index,
			X:     x * g.geo.Scale,
			Y:     minY * g.geo.Scale,
			Size:  size * g.geo.Scale,
			Angle: g.cfg.angleMin + g.r.Float64()*(g.cfg.angleMax-g.cfg.angleMin),
		}, true
	}
	return Placement{}, false
}
