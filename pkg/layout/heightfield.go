package layout

import "math"

// heightField is the per-round collision proxy: one occupied height per
// column, in layout units.
type heightField []float64

func newHeightField(columns int) heightField {
	return make(heightField, columns)
}

// window returns the half-open cell range examined by a sticker of the given
// size centered at unit x, clamped to the field. lo >= hi means the sticker
// lies entirely off the field.
func (f heightField) window(x, size float64, columnsPerUnit int) (lo, hi int) {
	center := x * float64(columnsPerUnit)
	delta := float64(columnsPerUnit) / windowDivisor * size
	lo = int(math.Floor(math.Max(0, center-delta)))
	hi = int(math.Floor(math.Min(float64(len(f)), center+delta)))
	return lo, hi
}

// settle reads the lowest and highest cell in [lo, hi), each lowered by an
// independent draw in [0, maxSettle). ok is false for an empty window.
func (f heightField) settle(r Rand, lo, hi int) (minY, maxY float64, ok bool) {
	if lo >= hi {
		return 0, 0, false
	}
	minY, maxY = math.Inf(1), math.Inf(-1)
	for _, h := range f[lo:hi] {
		y := h - r.Float64()*maxSettle
		minY = min(minY, y)
		maxY = max(maxY, y)
	}
	return minY, maxY, true
}

// raise sets every cell in [lo, hi) to the landing height of a sticker.
func (f heightField) raise(lo, hi int, minY, maxY, size float64) {
	h := minY + (maxY-minY)/blendDivisor + size/2
	for i := lo; i < hi; i++ {
		f[i] = h
	}
}
