package canvas

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	swerrors "github.com/matzehuels/stickerwall/pkg/errors"
)

var (
	mint = color.NRGBA{R: 0xea, G: 0xff, B: 0xef, A: 255}
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

// halves returns an n×n image, red on the left and blue on the right.
func halves(n int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	for y := range n {
		for x := range n {
			if x < n/2 {
				img.SetNRGBA(x, y, red)
			} else {
				img.SetNRGBA(x, y, blue)
			}
		}
	}
	return img
}

// near reports whether the pixel at (x, y) is within tol of want per channel.
func near(img image.Image, x, y int, want color.NRGBA, tol int) bool {
	got := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	d := func(a, b uint8) bool { return int(a)-int(b) <= tol && int(b)-int(a) <= tol }
	return d(got.R, want.R) && d(got.G, want.G) && d(got.B, want.B) && d(got.A, want.A)
}

func TestNewSurface(t *testing.T) {
	tests := []struct {
		backend  string
		wantType string
		wantCode swerrors.Code
	}{
		{"", "*canvas.Raster", ""},
		{"raster", "*canvas.Raster", ""},
		{"GG", "*canvas.GG", ""},
		{"cairo", "", swerrors.ErrCodeInvalidBackend},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := NewSurface(tt.backend, 8, 4)
			if tt.wantCode != "" {
				if !swerrors.Is(err, tt.wantCode) {
					t.Fatalf("error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if w, h := s.Size(); w != 8 || h != 4 {
				t.Errorf("Size() = %dx%d, want 8x4", w, h)
			}
			if got := typeName(s); got != tt.wantType {
				t.Errorf("type = %s, want %s", got, tt.wantType)
			}
		})
	}

	if _, err := NewSurface("raster", 0, 10); !swerrors.Is(err, swerrors.ErrCodeInvalidInput) {
		t.Errorf("zero width error = %v, want INVALID_INPUT", err)
	}
}

func typeName(s Surface) string {
	switch s.(type) {
	case *Raster:
		return "*canvas.Raster"
	case *GG:
		return "*canvas.GG"
	}
	return "unknown"
}

func TestTransferable(t *testing.T) {
	tr := NewTransferable(NewRaster(2, 2))
	if tr.Transferred() {
		t.Fatal("new Transferable reports transferred")
	}

	s, err := tr.Transfer()
	if err != nil || s == nil {
		t.Fatalf("first Transfer() = %v, %v", s, err)
	}
	if !tr.Transferred() {
		t.Error("Transferred() should be true after Transfer")
	}

	s, err = tr.Transfer()
	if s != nil {
		t.Error("second Transfer() returned a surface")
	}
	if !errors.Is(err, ErrTransferred) || !swerrors.Is(err, swerrors.ErrCodeTransferred) {
		t.Errorf("second Transfer() error = %v, want TRANSFERRED", err)
	}
}

func TestSurfaces(t *testing.T) {
	surfaces := map[string]func() Surface{
		"raster": func() Surface { return NewRaster(100, 100) },
		"gg":     func() Surface { return NewGG(100, 100) },
	}

	for name, newSurface := range surfaces {
		t.Run(name+"/fill", func(t *testing.T) {
			s := newSurface()
			s.Fill(mint)
			for _, p := range []image.Point{{0, 0}, {99, 99}, {50, 50}} {
				if !near(s.Image(), p.X, p.Y, mint, 1) {
					t.Errorf("pixel %v = %v, want mint", p, s.Image().At(p.X, p.Y))
				}
			}
		})

		t.Run(name+"/resize", func(t *testing.T) {
			s := newSurface()
			if err := s.Resize(40, 30); err != nil {
				t.Fatal(err)
			}
			if w, h := s.Size(); w != 40 || h != 30 {
				t.Errorf("Size() = %dx%d, want 40x30", w, h)
			}
			if b := s.Image().Bounds(); b.Dx() != 40 || b.Dy() != 30 {
				t.Errorf("Image bounds = %v, want 40x30", b)
			}
		})

		t.Run(name+"/sticker", func(t *testing.T) {
			s := newSurface()
			s.Fill(mint)
			s.DrawSticker(halves(10), 50, 50, 40, 0)

			img := s.Image()
			if !near(img, 38, 50, red, 8) {
				t.Errorf("left of center = %v, want red", img.At(38, 50))
			}
			if !near(img, 62, 50, blue, 8) {
				t.Errorf("right of center = %v, want blue", img.At(62, 50))
			}
			if !near(img, 20, 50, mint, 1) || !near(img, 50, 80, mint, 1) {
				t.Error("pixels outside the sticker should keep the background")
			}
		})

		t.Run(name+"/rotated", func(t *testing.T) {
			s := newSurface()
			s.Fill(mint)
			// clockwise quarter turn moves the left half to the top
			s.DrawSticker(halves(10), 50, 50, 40, 90)

			img := s.Image()
			if !near(img, 50, 38, red, 8) {
				t.Errorf("above center = %v, want red", img.At(50, 38))
			}
			if !near(img, 50, 62, blue, 8) {
				t.Errorf("below center = %v, want blue", img.At(50, 62))
			}
		})

		t.Run(name+"/left edge", func(t *testing.T) {
			s := newSurface()
			s.Fill(mint)
			// only the right (blue) half is on the canvas
			s.DrawSticker(halves(10), 0, 50, 40, 0)

			if img := s.Image(); !near(img, 8, 50, blue, 8) {
				t.Errorf("visible part = %v, want blue", img.At(8, 50))
			}
		})

		t.Run(name+"/larger than canvas", func(t *testing.T) {
			s := newSurface()
			s.Fill(mint)
			// far larger than the canvas; only the visible part may be rendered
			s.DrawSticker(halves(10), 50, 50, 3e6, 15)

			img := s.Image()
			for _, p := range []image.Point{{0, 0}, {99, 0}, {0, 99}, {99, 99}, {50, 50}} {
				if near(img, p.X, p.Y, mint, 1) {
					t.Errorf("pixel %v kept the background, want the sticker", p)
				}
			}
		})

		t.Run(name+"/off canvas", func(t *testing.T) {
			s := newSurface()
			s.Fill(mint)
			s.DrawSticker(halves(10), 500, 500, 40, 45)
			if !near(s.Image(), 99, 99, mint, 1) {
				t.Error("a sticker beyond the canvas should leave it untouched")
			}
		})

		t.Run(name+"/nil image", func(t *testing.T) {
			s := newSurface()
			s.Fill(mint)
			s.DrawSticker(nil, 50, 50, 40, 0)
			if !near(s.Image(), 50, 50, mint, 1) {
				t.Error("nil sticker should leave the surface untouched")
			}
		})
	}
}

func TestStickerBounds(t *testing.T) {
	tests := []struct {
		name                string
		cx, cy, size, angle float64
		want                image.Rectangle
	}{
		{"axis aligned", 50, 50, 40, 0, image.Rect(30, 30, 70, 70)},
		{"quarter turn", 50, 50, 40, 90, image.Rect(30, 30, 70, 70)},
		{"diagonal", 0, 0, 20, 45, image.Rect(-15, -15, 15, 15)},
		{"huge", 0, 0, 1e300, 0, image.Rect(-maxCoord, -maxCoord, maxCoord, maxCoord)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stickerBounds(tt.cx, tt.cy, tt.size, tt.angle); got != tt.want {
				t.Errorf("stickerBounds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStickerTransform(t *testing.T) {
	src := image.Rect(10, 20, 30, 60) // 20×40, center (20, 40)
	m := stickerTransform(src, 100, 200, 80, 30)

	apply := func(x, y float64) (float64, float64) {
		return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
	}

	if x, y := apply(20, 40); math.Abs(x-100) > 1e-9 || math.Abs(y-200) > 1e-9 {
		t.Errorf("center maps to (%v, %v), want (100, 200)", x, y)
	}

	// the source's right edge midpoint is 40px right of center before rotation
	x, y := apply(30, 40)
	wantX := 100 + 40*math.Cos(math.Pi/6)
	wantY := 200 + 40*math.Sin(math.Pi/6)
	if math.Abs(x-wantX) > 1e-9 || math.Abs(y-wantY) > 1e-9 {
		t.Errorf("right edge maps to (%v, %v), want (%v, %v)", x, y, wantX, wantY)
	}
}
