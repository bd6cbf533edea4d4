// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"image/color"
	"testing"

	"github.com/gogpu/ggfx/resource"
)

func TestBlendImageMultiply(t *testing.T) {
	in := []uint8{200, 100, 50, 77, 10, 20, 30, 40}
	white := NewBlendImage(solid(2, 2, color.NRGBA{255, 255, 255, 255}), BlendImageMultiply, 1)
	assertPixels(t, applyRow(t, white, in), in)

	black := NewBlendImage(solid(2, 2, color.NRGBA{0, 0, 0, 255}), BlendImageMultiply, 1)
	assertPixels(t, applyRow(t, black, in), []uint8{0, 0, 0, 77, 0, 0, 0, 40})

	half := NewBlendImage(solid(2, 2, color.NRGBA{0, 0, 0, 255}), BlendImageMultiply, 0.5)
	assertPixels(t, applyRow(t, half, in), []uint8{100, 50, 25, 77, 5, 10, 15, 40})
}

func TestBlendImageMask(t *testing.T) {
	in := []uint8{200, 100, 50, 200, 10, 20, 30, 40}
	clear := NewBlendImage(solid(1, 1, color.NRGBA{}), BlendImageMask, 1)
	assertPixels(t, applyRow(t, clear, in), []uint8{200, 100, 50, 0, 10, 20, 30, 0})

	opaque := NewBlendImage(solid(1, 1, color.NRGBA{9, 9, 9, 255}), BlendImageMask, 1)
	assertPixels(t, applyRow(t, opaque, in), in)
}

func TestBlendImagePlacement(t *testing.T) {
	f := NewBlendImage(solid(2, 2, color.NRGBA{0, 0, 0, 255}), BlendImageMultiply, 1)
	f.Image.ScaleX = 0.5
	in := uniformImage(4, 1, [4]uint8{100, 100, 100, 255})
	st := NewCPUState(in, 4, 1, nil)
	f.ApplyCPU(st)
	// The image covers the left half; the uncovered right half is transparent black.
	for x := 0; x < 2; x++ {
		if st.Pix[x*4] != 0 {
			t.Errorf("covered pixel %d = %d, want 0", x, st.Pix[x*4])
		}
	}
}

func TestBlendImageSurfaceCached(t *testing.T) {
	pool := resource.NewPool(4)
	f := NewBlendImage(solid(2, 2, color.NRGBA{255, 255, 255, 255}), BlendImageMultiply, 1)
	s1 := f.surface(pool, 3, 3)
	s2 := f.surface(pool, 3, 3)
	if s1 != s2 {
		t.Error("surface redrawn for unchanged filter")
	}
	if pool.Len() != 1 {
		t.Errorf("pool.Len() = %d, want 1", pool.Len())
	}

	f.Image.Left = 1
	if s3 := f.surface(pool, 3, 3); s3 == s1 {
		t.Error("surface reused after placement change")
	}
	f.Image.Left = 0
	f.Pixels = solid(2, 2, color.NRGBA{1, 1, 1, 255})
	s4 := f.surface(pool, 3, 3)
	if s4.Pix[0] != 1 {
		t.Errorf("surface not redrawn after image change: %v", s4.Pix[:4])
	}
	if s5 := f.surface(pool, 4, 3); s5.Bounds().Dx() != 4 {
		t.Errorf("surface width = %d, want 4", s5.Bounds().Dx())
	}
}

func TestBlendImagePassesShareCPUSurface(t *testing.T) {
	pool := resource.NewPool(4)
	f := NewBlendImage(solid(2, 2, color.NRGBA{255, 0, 0, 255}), BlendImageMask, 0.5)

	cpu := f.surface(pool, 5, 3)
	aux := Passes(f, pool, 5, 3)[0].Aux
	if aux != cpu {
		t.Error("GPU pass redrew the pooled surface")
	}
	nested := Passes(NewComposed(NewInvert(), f), pool, 5, 3)
	if len(nested) != 2 || nested[1].Aux != cpu {
		t.Error("Composed did not pass the pool through")
	}
	if pool.Len() != 1 {
		t.Errorf("pool.Len() = %d, want 1", pool.Len())
	}

	if p := Passes(f, nil, 5, 3)[0]; p.Aux == cpu || p.Aux.Bounds().Dx() != 5 {
		t.Error("pass without a pool reused the pooled surface")
	}
}
