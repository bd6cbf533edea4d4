package backend

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"slices"
	"testing"

	"github.com/gogpu/ggfx/filter"
	"github.com/gogpu/ggfx/resource"
)

type stubBackend struct{ name string }

func (s *stubBackend) Name() string { return s.name }
func (s *stubBackend) ApplyFilters([]filter.Filter, image.Image, int, int, draw.Image) error {
	return nil
}
func (s *stubBackend) Close() {}

func TestRegistry(t *testing.T) {
	Register("stub-b", func() (Backend, error) { return &stubBackend{name: "stub-b"}, nil })
	Register("stub-a", func() (Backend, error) { return nil, errors.New("no device") })
	defer Unregister("stub-a")
	defer Unregister("stub-b")

	if !IsRegistered("stub-b") {
		t.Fatal("stub-b not registered")
	}
	b, err := Get("stub-b")
	if err != nil || b.Name() != "stub-b" {
		t.Fatalf("Get(stub-b) = %v, %v", b, err)
	}
	if _, err := Get("stub-a"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Get(stub-a) error = %v, want ErrBackendNotAvailable", err)
	}
	if _, err := Get("missing"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Get(missing) error = %v, want ErrBackendNotAvailable", err)
	}
	names := Available()
	if i, j := slices.Index(names, "stub-a"), slices.Index(names, "stub-b"); i < 0 || j < 0 || i > j {
		t.Errorf("Available() = %v, want stub-a before stub-b", names)
	}
}

func TestAvailablePriority(t *testing.T) {
	Register(NameCPU, func() (Backend, error) { return &stubBackend{name: NameCPU}, nil })
	Register(NameWGPU, func() (Backend, error) { return &stubBackend{name: NameWGPU}, nil })
	defer Unregister(NameCPU)
	defer Unregister(NameWGPU)

	names := Available()
	if len(names) < 2 || names[0] != NameWGPU || names[1] != NameCPU {
		t.Errorf("Available() = %v, want [wgpu cpu ...]", names)
	}
}

func TestValidateInput(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	tests := []struct {
		name string
		src  image.Image
		w, h int
		dst  draw.Image
		ok   bool
	}{
		{"valid", img, 2, 2, img, true},
		{"nil source", nil, 2, 2, img, false},
		{"nil destination", img, 2, 2, nil, false},
		{"zero width", img, 0, 2, img, false},
	}
	for _, tt := range tests {
		err := ValidateInput(tt.src, tt.w, tt.h, tt.dst)
		if tt.ok != (err == nil) {
			t.Errorf("%s: err = %v", tt.name, err)
		}
		if err != nil && !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", tt.name, err)
		}
	}
}

func TestRasterCopiesAndScales(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 7))
	for y := 5; y < 7; y++ {
		for x := 5; x < 7; x++ {
			src.Set(x, y, color.RGBA{200, 100, 50, 255})
		}
	}
	pool := resource.NewPool(4)
	r := Raster(pool, "test:raster", src, 2, 2)
	if got := r.NRGBAAt(1, 1); got != (color.NRGBA{200, 100, 50, 255}) {
		t.Errorf("copied pixel = %v", got)
	}
	if again := Raster(pool, "test:raster", src, 2, 2); again != r {
		t.Error("raster not reused from pool")
	}

	scaled := Raster(nil, "test:raster", src, 4, 3)
	if b := scaled.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("scaled bounds = %v", b)
	}
	got := scaled.NRGBAAt(2, 1)
	if diff(got.R, 200) > 1 || diff(got.G, 100) > 1 || diff(got.B, 50) > 1 || got.A != 255 {
		t.Errorf("scaled pixel = %v", got)
	}
}

func TestRasterKeepsLowAlphaColors(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	copy(src.Pix, []uint8{100, 3, 250, 1})
	r := Raster(nil, "test:raster", src, 1, 1)
	if got := r.NRGBAAt(0, 0); got != (color.NRGBA{100, 3, 250, 1}) {
		t.Errorf("raster pixel = %v, want exact copy", got)
	}
}

func TestWriteResultOffset(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(10, 10, 14, 14))
	WriteResult(dst, []uint8{1, 2, 3, 4, 5, 6, 7, 8}, 2, 1)
	if got := dst.NRGBAAt(11, 10); got != (color.NRGBA{5, 6, 7, 8}) {
		t.Errorf("pixel at (11,10) = %v", got)
	}
	if got := dst.NRGBAAt(10, 11); got != (color.NRGBA{}) {
		t.Errorf("pixel outside result = %v", got)
	}

	clipped := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	WriteResult(clipped, []uint8{1, 2, 3, 4, 5, 6, 7, 8}, 2, 1)
	if got := clipped.NRGBAAt(0, 0); got != (color.NRGBA{1, 2, 3, 4}) {
		t.Errorf("clipped pixel = %v", got)
	}

	exact := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	WriteResult(exact, []uint8{1, 2, 3, 4, 5, 6, 7, 8}, 2, 1)
	if exact.Pix[4] != 5 {
		t.Errorf("fast path pix = %v", exact.Pix)
	}
}

func diff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
