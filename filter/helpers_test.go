// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"image"
	"image/color"
	"testing"
)

// referencePixels is a 3x1 image used by the catalog vectors.
func referencePixels() []uint8 {
	return []uint8{200, 100, 50, 1, 30, 255, 10, 1, 255, 255, 3, 1}
}

func applyRow(t *testing.T, f Filter, pix []uint8) []uint8 {
	t.Helper()
	st := NewCPUState(append([]uint8(nil), pix...), len(pix)/4, 1, nil)
	f.ApplyCPU(st)
	return st.Pix
}

func assertPixels(t *testing.T, got, want []uint8) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pix[%d] = %d, want %d (got %v)", i, got[i], want[i], got)
			return
		}
	}
}

// gradient returns a w x h image with varied colors and alpha.
func gradient(w, h int) []uint8 {
	pix := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 4
			pix[o] = uint8((x * 255) / max(1, w-1))
			pix[o+1] = uint8((y * 255) / max(1, h-1))
			pix[o+2] = uint8((x*37 + y*91) % 256)
			pix[o+3] = uint8(128 + (x+y)%128)
		}
	}
	return pix
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}
