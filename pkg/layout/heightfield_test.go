package layout

import "testing"

// constRand returns the same value for every draw.
type constRand float64

func (c constRand) Float64() float64          { return float64(c) }
func (constRand) Shuffle(int, func(i, j int)) {}

func TestHeightFieldWindow(t *testing.T) {
	f := newHeightField(2000)

	tests := []struct {
		name   string
		x      float64
		size   float64
		lo, hi int
	}{
		{"centered", 10, 1, 956, 1043},
		{"clamped left", 0, 1, 0, 43},
		{"clamped right", 20, 1, 1956, 2000},
		{"large", 5, 3, 369, 630},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := f.window(tt.x, tt.size, 100)
			if lo != tt.lo || hi != tt.hi {
				t.Errorf("window(%v, %v) = [%d, %d), want [%d, %d)", tt.x, tt.size, lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestHeightFieldWindowOffField(t *testing.T) {
	f := newHeightField(2000)
	for _, x := range []float64{-2, -1, 21} {
		if lo, hi := f.window(x, 1, 100); lo < hi {
			t.Errorf("window(%v, 1) = [%d, %d), want empty", x, lo, hi)
		}
	}
}

func TestHeightFieldSettleEmptyWindow(t *testing.T) {
	f := newHeightField(10)
	if _, _, ok := f.settle(constRand(0), 5, 5); ok {
		t.Error("settle on empty window should not be ok")
	}
	if _, _, ok := f.settle(constRand(0), 7, 3); ok {
		t.Error("settle on inverted window should not be ok")
	}
}

func TestHeightFieldSettle(t *testing.T) {
	f := heightField{0, 1, 4, 2, 9}

	minY, maxY, ok := f.settle(constRand(0.5), 1, 4)
	if !ok {
		t.Fatal("settle should be ok")
	}
	// every cell is lowered by 0.5 * maxSettle
	if want := 1 - 0.05; !approx(minY, want) {
		t.Errorf("minY = %v, want %v", minY, want)
	}
	if want := 4 - 0.05; !approx(maxY, want) {
		t.Errorf("maxY = %v, want %v", maxY, want)
	}
}

func TestHeightFieldRaise(t *testing.T) {
	f := heightField{0, 0, 0, 0, 7}
	f.raise(1, 4, 1, 6, 2)

	want := heightField{0, 3, 3, 3, 7} // 1 + (6-1)/5 + 2/2
	for i := range f {
		if !approx(f[i], want[i]) {
			t.Errorf("f[%d] = %v, want %v", i, f[i], want[i])
		}
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
