// Package weighted draws keys from a discrete weighted distribution.
//
// A [Selector] is built from an ordered list of (key, weight) pairs. The
// cumulative weights are computed once; each [Selector.Pick] takes a uniform
// draw in [0, total) and returns the first key whose cumulative weight
// exceeds it. The order of the list is therefore the tie-break order, which
// keeps draws reproducible for a seeded source.
//
//	sizes, err := weighted.New(
//	    weighted.Choice[float64]{Key: 0.5, Weight: 1},
//	    weighted.Choice[float64]{Key: 1, Weight: 10},
//	    weighted.Choice[float64]{Key: 3, Weight: 1},
//	)
//	size, err := sizes.Pick(rng)
package weighted

import (
	"errors"
	"math"

	swerrors "github.com/matzehuels/stickerwall/pkg/errors"
)

// ErrUnreachable is the cause attached when a draw matches no category.
// It can only happen through floating-point edge cases on a table that
// passed validation, and indicates a configuration bug.
var ErrUnreachable = errors.New("weighted: no category selected")

// Rand is the source of uniform draws in [0, 1).
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Choice is one category of the distribution.
type Choice[K comparable] struct {
	Key    K
	Weight float64
}

// Selector picks keys with probability proportional to their weight.
// A Selector is immutable and safe for concurrent use; the randomness lives
// in the Rand passed to Pick.
type Selector[K comparable] struct {
	keys       []K
	cumulative []float64
}

// New builds a Selector from choices in the given order.
// It returns an INTERNAL_SELECTION error if the table is empty or any weight
// is non-positive, NaN or infinite.
func New[K comparable](choices ...Choice[K]) (*Selector[K], error) {
	if len(choices) == 0 {
		return nil, swerrors.Wrap(swerrors.ErrCodeInternalSelection, ErrUnreachable, "empty weight table")
	}
	s := &Selector[K]{
		keys:       make([]K, len(choices)),
		cumulative: make([]float64, len(choices)),
	}
	var total float64
	for i, c := range choices {
		if math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) || c.Weight <= 0 {
			return nil, swerrors.Wrap(swerrors.ErrCodeInternalSelection, ErrUnreachable,
				"weight for %v must be positive and finite (got %v)", c.Key, c.Weight)
		}
		total += c.Weight
		s.keys[i] = c.Key
		s.cumulative[i] = total
	}
	return s, nil
}

// MustNew is like New but panics on an invalid table.
// It is intended for package-level tables fixed at compile time.
func MustNew[K comparable](choices ...Choice[K]) *Selector[K] {
	s, err := New(choices...)
	if err != nil {
		panic(err)
	}
	return s
}

// Total returns the sum of all weights.
func (s *Selector[K]) Total() float64 {
	return s.cumulative[len(s.cumulative)-1]
}

// Pick draws one key.
func (s *Selector[K]) Pick(r Rand) (K, error) {
	return s.pick(r.Float64() * s.Total())
}

// pick returns the first key whose cumulative weight exceeds u.
func (s *Selector[K]) pick(u float64) (K, error) {
	for i, c := range s.cumulative {
		if u < c {
			return s.keys[i], nil
		}
	}
	var zero K
	return zero, swerrors.Wrap(swerrors.ErrCodeInternalSelection, ErrUnreachable, "draw %v outside total %v", u, s.Total())
}
