package layout

import "github.com/matzehuels/stickerwall/pkg/weighted"

const (
	DefaultRounds         = 3
	DefaultColumnsPerUnit = 100
	DefaultAngleMin       = -20.0
	DefaultAngleMax       = 30.0
)

const (
	// windowDivisor scales a sticker's size to the half width of the
	// height-field window it examines, in units of ColumnsPerUnit.
	windowDivisor = 2.3
	// blendDivisor controls how much of the window's relief survives a landing.
	blendDivisor = 5.0
	// maxSettle bounds the random amount subtracted from each cell on read.
	maxSettle = 0.1
	// floatMargin is how far below the visible bottom, in units, a sticker
	// may still land.
	floatMargin = 2.0
	// edgeUnits is how far beyond each side of the canvas a sticker may be
	// centered.
	edgeUnits = 2
	jitterMin = 0.9
	jitterMax = 1.1
)

// DefaultSizeClasses are the size categories biased toward medium stickers.
var DefaultSizeClasses = []weighted.Choice[float64]{
	{Key: 0.5, Weight: 1},
	{Key: 1, Weight: 10},
	{Key: 3, Weight: 1},
}

var defaultSizes = weighted.MustNew(DefaultSizeClasses...)

// Option configures Generate.
type Option func(*config)

type config struct {
	rounds         int
	columnsPerUnit int
	maxAttempts    int
	angleMin       float64
	angleMax       float64
	sizeClasses    []weighted.Choice[float64]
}

func newConfig(opts []Option) config {
	c := config{
		rounds:         DefaultRounds,
		columnsPerUnit: DefaultColumnsPerUnit,
		angleMin:       DefaultAngleMin,
		angleMax:       DefaultAngleMax,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.rounds <= 0 {
		c.rounds = DefaultRounds
	}
	if c.columnsPerUnit <= 0 {
		c.columnsPerUnit = DefaultColumnsPerUnit
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 100 * c.columnsPerUnit
	}
	if c.angleMax < c.angleMin {
		c.angleMin, c.angleMax = c.angleMax, c.angleMin
	}
	return c
}

// WithRounds sets the number of layering rounds.
func WithRounds(n int) Option { return func(c *config) { c.rounds = n } }

// WithColumnsPerUnit sets the height-field resolution per unit of density.
func WithColumnsPerUnit(n int) Option { return func(c *config) { c.columnsPerUnit = n } }

// WithMaxAttempts bounds the tries for a single sticker before its round ends.
// The default is 100 times the columns per unit.
func WithMaxAttempts(n int) Option { return func(c *config) { c.maxAttempts = n } }

// WithAngleRange sets the rotation range in degrees, [min, max).
func WithAngleRange(min, max float64) Option {
	return func(c *config) { c.angleMin, c.angleMax = min, max }
}

// WithSizeClasses replaces the weighted size categories. The order of
// classes is the tie-break order of the draw.
func WithSizeClasses(classes ...weighted.Choice[float64]) Option {
	return func(c *config) { c.sizeClasses = classes }
}
