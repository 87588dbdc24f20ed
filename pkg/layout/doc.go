// Package layout places stickers over a rectangular canvas.
//
// # Overview
//
// [Generate] produces an ordered sequence of [Placement] values for a canvas
// of a given pixel size. It does not draw anything: the compositor consumes
// the placements in order, so later placements are drawn on top.
//
// # Height Field
//
// Collision is approximated with a one-dimensional height field spanning the
// canvas width. The width is divided into density units, and each unit into
// ColumnsPerUnit cells holding the current occupied height. A sticker of size
// s dropped at unit x examines the window of cells within s*ColumnsPerUnit/2.3
// of x*ColumnsPerUnit, reads the lowest and highest value (each lowered by a
// small random settle), and lands on the lowest. The window is then raised to
//
//	min + (max-min)/5 + size/2
//
// so the next sticker in that band stacks on top. This trades geometric
// precision for O(window) work per attempt; partial overlap is expected.
//
// # Rounds
//
// The field is reset for each of a small number of rounds. Within a round the
// image indices are shuffled and placed pass after pass until one sticker
// fails to land within MaxAttempts tries; the whole round then ends. Rounds
// are concatenated, which stacks independent layers for visual depth.
//
// # Randomness
//
// All randomness comes from the [Rand] passed to [Generate]. Two calls with
// sources built by [NewRand] from the same seed return identical placements:
//
//	placements, err := layout.Generate(layout.NewRand(42), layout.Params{
//	    Width: 6000, Height: 3164, Total: len(images),
//	    Density: 20, SizeVariation: 1,
//	})
package layout
