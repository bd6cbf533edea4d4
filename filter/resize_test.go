// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"testing"

	"github.com/gogpu/ggfx/resource"
)

func TestResizeOutputSize(t *testing.T) {
	tests := []struct {
		sx, sy       float64
		w, h         int
		wantW, wantH int
	}{
		{0.5, 0.5, 10, 8, 5, 4},
		{2, 3, 10, 8, 20, 24},
		{0.25, 1, 10, 8, 3, 8},
		{0.01, 0.01, 10, 8, 1, 1},
		{1.5, 0.75, 3, 3, 5, 2},
	}
	for _, tt := range tests {
		w, h := NewResize(tt.sx, tt.sy).OutputSize(tt.w, tt.h)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("OutputSize(%v,%v on %dx%d) = %dx%d, want %dx%d",
				tt.sx, tt.sy, tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}

func uniformImage(w, h int, c [4]uint8) []uint8 {
	pix := make([]uint8, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		copy(pix[i:i+4], c[:])
	}
	return pix
}

func TestResizeStrategiesPreserveUniformColor(t *testing.T) {
	c := [4]uint8{40, 120, 200, 255}
	strategies := []string{ResizeBilinear, ResizeHermite, ResizeSliceHack, ResizeLanczos}
	scales := [][2]float64{{0.5, 0.5}, {0.2, 0.3}, {2, 1.5}, {0.5, 2}}
	for _, s := range strategies {
		for _, sc := range scales {
			f := NewResize(sc[0], sc[1])
			f.ResizeType = s
			st := NewCPUState(uniformImage(12, 10, c), 12, 10, resource.NewPool(8))
			f.ApplyCPU(st)
			wantW, wantH := f.OutputSize(12, 10)
			if st.Width != wantW || st.Height != wantH {
				t.Fatalf("%s %v: size %dx%d, want %dx%d", s, sc, st.Width, st.Height, wantW, wantH)
			}
			if len(st.Pix) != wantW*wantH*4 {
				t.Fatalf("%s %v: len(Pix) = %d", s, sc, len(st.Pix))
			}
			for i := 0; i < len(st.Pix); i += 4 {
				for ch := range 4 {
					if d := int(st.Pix[i+ch]) - int(c[ch]); d < -1 || d > 1 {
						t.Fatalf("%s %v: pixel %d = %v, want %v", s, sc, i/4, st.Pix[i:i+4], c)
					}
				}
			}
		}
	}
}

func TestResizeBilinearInterpolates(t *testing.T) {
	st := NewCPUState([]uint8{0, 0, 0, 255, 200, 200, 200, 255}, 2, 1, nil)
	f := NewResize(2, 1)
	f.ResizeType = ResizeBilinear
	f.ApplyCPU(st)
	// ratio 0.5: sample points 0, 0.5, 1, 1.5 with the last clamped to the edge.
	assertPixels(t, st.Pix, []uint8{
		0, 0, 0, 255,
		100, 100, 100, 255,
		200, 200, 200, 255,
		200, 200, 200, 255,
	})
}

func TestResizeSliceHackHalvesWithBoxAverage(t *testing.T) {
	st := NewCPUState([]uint8{
		0, 0, 0, 255, 100, 100, 100, 255, 50, 50, 50, 255, 50, 50, 50, 255,
		200, 200, 200, 255, 100, 100, 100, 255, 50, 50, 50, 255, 50, 50, 50, 255,
	}, 4, 2, nil)
	f := NewResize(0.5, 0.5)
	f.ResizeType = ResizeSliceHack
	f.ApplyCPU(st)
	assertPixels(t, st.Pix, []uint8{100, 100, 100, 255, 50, 50, 50, 255})
}

func TestResizeNeutralScaleKeepsBuffer(t *testing.T) {
	pix := gradient(4, 4)
	st := NewCPUState(pix, 4, 4, nil)
	NewResize(1.01, 1.01).ApplyCPU(st)
	if &st.Pix[0] != &pix[0] {
		t.Error("resize to the same size replaced the buffer")
	}
}

func TestResizeUsesPoolScratch(t *testing.T) {
	pool := resource.NewPool(8)
	f := NewResize(0.5, 1)
	f.ResizeType = ResizeLanczos
	st := NewCPUState(gradient(8, 4), 8, 4, pool)
	f.ApplyCPU(st)
	if _, ok := pool.Get(resource.NewKey("resize:lanczos", 4, 4)); !ok {
		t.Error("lanczos scratch not pooled")
	}
}

func TestLanczosWeightsNormalized(t *testing.T) {
	for _, tc := range []struct{ n, dn, lobes int }{{10, 5, 3}, {5, 10, 3}, {7, 3, 2}, {3, 8, 1}} {
		ax := newLanczosAxis(tc.n, tc.dn, tc.lobes)
		ws := make([]float64, 0, ax.taps)
		for d := 0; d < tc.dn; d++ {
			var first int
			first, ws = ax.weights(d, tc.n, ws)
			var sum float64
			for k, w := range ws {
				if s := first + k; (s < 0 || s >= tc.n) && w != 0 {
					t.Fatalf("%v: out-of-range tap %d has weight %v", tc, s, w)
				}
				sum += w
			}
			if sum < 0.999999 || sum > 1.000001 {
				t.Fatalf("%v: weights for %d sum to %v", tc, d, sum)
			}
		}
	}
}

func TestResizeGPUPasses(t *testing.T) {
	f := NewResize(0.5, 0.25)
	passes := f.GPUPasses(10, 8)
	if len(passes) != 2 {
		t.Fatalf("len(passes) = %d, want 2", len(passes))
	}
	if passes[0].OutWidth != 5 || passes[0].OutHeight != 8 {
		t.Errorf("horizontal pass size = %dx%d, want 5x8", passes[0].OutWidth, passes[0].OutHeight)
	}
	if passes[1].OutWidth != 5 || passes[1].OutHeight != 2 {
		t.Errorf("vertical pass size = %dx%d, want 5x2", passes[1].OutWidth, passes[1].OutHeight)
	}
	if passes[0].Key == passes[1].Key {
		t.Error("horizontal and vertical passes share a program key")
	}

	if got := NewResize(1, 0.5).GPUPasses(10, 8); len(got) != 1 || got[0].OutWidth != 10 {
		t.Errorf("height-only resize passes = %+v", got)
	}
}
