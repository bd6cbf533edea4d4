// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"image/color"
	"math"
	"testing"
)

func TestCatalogVectors(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []uint8
	}{
		{"brightness", NewBrightness(0.2), []uint8{251, 151, 101, 1, 81, 255, 61, 1, 255, 255, 54, 1}},
		{"contrast", NewContrast(0.2), []uint8{236, 86, 11, 1, 0, 255, 0, 1, 255, 255, 0, 1}},
		{"saturation", NewSaturation(0.2), []uint8{200, 80, 20, 1, 0, 255, 0, 1, 255, 255, 0, 1}},
		{"invert", NewInvert(), []uint8{55, 155, 205, 1, 225, 0, 245, 1, 0, 0, 252, 1}},
		{"invert alpha", &Invert{Invert: true, Alpha: true}, []uint8{55, 155, 205, 254, 225, 0, 245, 254, 0, 0, 252, 254}},
		{"pixelate", NewPixelate(2), []uint8{200, 100, 50, 1, 200, 100, 50, 1, 255, 255, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertPixels(t, applyRow(t, tt.filter, referencePixels()), tt.want)
		})
	}
}

func TestColorMatrixVector(t *testing.T) {
	f := NewColorMatrix([20]float64{
		0, 1, 0, 0, .2,
		0, 0, 1, 0, .1,
		1, 0, 0, 0, .3,
		0, 0, 0, 1, 0,
	})
	got := applyRow(t, f, referencePixels())
	assertPixels(t, got[:4], []uint8{151, 76, 255, 1})
}

func TestColorMatrixAlphaRow(t *testing.T) {
	m := identityMatrix
	m[18] = 0
	m[19] = 1
	f := &ColorMatrix{Matrix: m}
	got := applyRow(t, f, []uint8{10, 20, 30, 40})
	assertPixels(t, got, []uint8{10, 20, 30, 255})

	f.ColorsOnly = true
	got = applyRow(t, f, []uint8{10, 20, 30, 40})
	assertPixels(t, got, []uint8{10, 20, 30, 40})
}

func TestGrayscaleModes(t *testing.T) {
	tests := []struct {
		mode string
		want uint8
	}{
		{GrayscaleAverage, 117},
		{GrayscaleLightness, 125},
		{GrayscaleLuminosity, 118},
		{"unknown", 117},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got := applyRow(t, NewGrayscale(tt.mode), referencePixels())
			assertPixels(t, got[:4], []uint8{tt.want, tt.want, tt.want, 1})
		})
	}
}

func TestGammaLookupTracksParameter(t *testing.T) {
	f := NewGamma(2, 1, 0.5)
	got := applyRow(t, f, []uint8{64, 64, 64, 9})
	// 255*(64/255)^(1/2) = 127.75; 255*(64/255)^2 = 16.06
	assertPixels(t, got, []uint8{128, 64, 16, 9})

	f.Gamma = [3]float64{1, 1, 1}
	got = applyRow(t, f, []uint8{64, 64, 64, 9})
	assertPixels(t, got, []uint8{64, 64, 64, 9})
}

func TestHueRotationMatrixTracksRotation(t *testing.T) {
	f := NewHueRotation(0)
	if f.Matrix() != identityMatrix {
		t.Fatalf("rotation 0 matrix = %v, want identity", f.Matrix())
	}
	f.Rotation = 1
	m := f.Matrix()
	// A half turn maps each primary onto 2/3 of the other two channels minus itself.
	if math.Abs(m[0]-(-1.0/3)) > 1e-9 || math.Abs(m[1]-2.0/3) > 1e-9 {
		t.Errorf("rotation 1 row 0 = %v", m[:5])
	}
	got := applyRow(t, f, []uint8{90, 90, 90, 7})
	assertPixels(t, got, []uint8{90, 90, 90, 7})
}

func TestRemoveColorInclusive(t *testing.T) {
	f := NewRemoveColor("#c86432", 0.2)
	got := applyRow(t, f, []uint8{
		200, 100, 50, 200,
		251, 49, 101, 200,
		252, 100, 50, 200,
	})
	assertPixels(t, got, []uint8{
		200, 100, 50, 0,
		251, 49, 101, 0,
		252, 100, 50, 200,
	})
}

func TestBlendColorModes(t *testing.T) {
	in := []uint8{200, 100, 50, 9}
	tests := []struct {
		mode  string
		alpha float64
		want  []uint8
	}{
		{BlendMultiply, 1, []uint8{100, 0, 50, 9}},
		{BlendAdd, 1, []uint8{255, 100, 255, 9}},
		{BlendDiff, 1, []uint8{72, 100, 205, 9}},
		{"difference", 1, []uint8{72, 100, 205, 9}},
		{BlendSubtract, 1, []uint8{72, 100, 0, 9}},
		{BlendDarken, 1, []uint8{128, 0, 50, 9}},
		{BlendLighten, 1, []uint8{200, 100, 255, 9}},
		{BlendTint, 0.5, []uint8{164, 50, 152, 9}},
		{BlendMultiply, 0, []uint8{200, 100, 50, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got := applyRow(t, NewBlendColor("#8000ff", tt.mode, tt.alpha), in)
			assertPixels(t, got, tt.want)
		})
	}
}

func TestNoiseRangeAndSharedOffset(t *testing.T) {
	f := &Noise{Noise: 40, Seed: 7}
	in := make([]uint8, 64*4)
	for i := range in {
		in[i] = 128
	}
	got := applyRow(t, f, in)
	for i := 0; i < len(got); i += 4 {
		if got[i] != got[i+1] || got[i] != got[i+2] {
			t.Fatalf("pixel %d channels differ: %v", i/4, got[i:i+4])
		}
		if got[i] < 108 || got[i] > 148 {
			t.Fatalf("pixel %d = %d, outside [108, 148]", i/4, got[i])
		}
		if got[i+3] != 128 {
			t.Fatalf("pixel %d alpha changed", i/4)
		}
	}
	again := applyRow(t, f, in)
	assertPixels(t, again, got)
}

func TestVibranceFavorsMutedPixels(t *testing.T) {
	f := NewVibrance(0.5)
	got := applyRow(t, f, []uint8{120, 100, 100, 1, 250, 10, 10, 1})
	// The muted pixel moves 0.5*(1-20/255) of the way toward its max.
	// The saturated pixel moves only 0.5*(1-240/255).
	if d := int(got[1]) - 100; d >= 0 {
		t.Errorf("muted green = %d, want pushed below 100", got[1])
	}
	if got[5] != 3 {
		t.Errorf("saturated green = %d, want 3", got[5])
	}
	if got[0] != 120 || got[4] != 250 {
		t.Error("max channel changed")
	}
}

func TestConvoluteIdentityAndOpaque(t *testing.T) {
	pix := gradient(5, 4)
	st := NewCPUState(append([]uint8(nil), pix...), 5, 4, nil)
	NewConvolute([]float64{0, 0, 0, 0, 1, 0, 0, 0, 0}, false).ApplyCPU(st)
	assertPixels(t, st.Pix, pix)

	NewConvolute([]float64{0, 0, 0, 0, 1, 0, 0, 0, 0}, true).ApplyCPU(st)
	for i := 3; i < len(st.Pix); i += 4 {
		if st.Pix[i] != 255 {
			t.Fatalf("alpha[%d] = %d, want 255", i/4, st.Pix[i])
		}
	}
}

func TestConvoluteEdgesContributeZero(t *testing.T) {
	st := NewCPUState([]uint8{
		90, 90, 90, 255, 90, 90, 90, 255, 90, 90, 90, 255,
	}, 3, 1, nil)
	box := make([]float64, 9)
	for i := range box {
		box[i] = 1.0 / 3
	}
	NewConvolute(box, false).ApplyCPU(st)
	// Only the row itself is in bounds: edges see two samples, center three.
	assertPixels(t, st.Pix, []uint8{
		60, 60, 60, 170, 90, 90, 90, 255, 60, 60, 60, 170,
	})
}

// alphaPreserving lists filters whose contract leaves alpha untouched.
func alphaPreserving() []Filter {
	return []Filter{
		NewBrightness(0.3),
		NewContrast(-0.4),
		NewSaturation(0.6),
		NewGamma(0.5, 1.5, 2.2),
		NewColorMatrix([20]float64{0.5, 0.2, 0, 0.9, 0.1, 0, 1, 0, 0, 0, 0, 0, 1, 0, 0.2, 0.3, 0.3, 0.3, 0, 0.5}),
		NewHueRotation(0.4),
		NewSepia(),
		NewGrayscale(GrayscaleLuminosity),
		NewInvert(),
		&Noise{Noise: 90, Seed: 3},
		NewVibrance(-0.7),
		NewBlendColor("#336699", BlendOverlay, 0.8),
		NewBlendImage(solid(3, 2, color.NRGBA{10, 200, 30, 40}), BlendImageMultiply, 0.7),
	}
}

func TestAlphaInvariant(t *testing.T) {
	for _, f := range alphaPreserving() {
		t.Run(string(f.Type()), func(t *testing.T) {
			in := gradient(7, 5)
			st := NewCPUState(append([]uint8(nil), in...), 7, 5, nil)
			f.ApplyCPU(st)
			for i := 3; i < len(in); i += 4 {
				if st.Pix[i] != in[i] {
					t.Fatalf("alpha[%d] = %d, want %d", i/4, st.Pix[i], in[i])
				}
			}
		})
	}
}

func TestNeutralFiltersChangeNothing(t *testing.T) {
	neutral := []Filter{
		NewBrightness(0),
		NewContrast(0),
		NewSaturation(0),
		NewGamma(1, 1, 1),
		NewColorMatrix(identityMatrix),
		NewHueRotation(0),
		&Invert{},
		NewNoise(0),
		NewPixelate(1),
		NewResize(1, 1),
		NewVibrance(0),
		NewComposed(NewBrightness(0), NewPixelate(1)),
	}
	for _, f := range neutral {
		t.Run(string(f.Type()), func(t *testing.T) {
			if !f.IsNeutral() {
				t.Fatal("IsNeutral() = false")
			}
			in := gradient(6, 3)
			st := NewCPUState(append([]uint8(nil), in...), 6, 3, nil)
			f.ApplyCPU(st)
			assertPixels(t, st.Pix, in)
		})
	}
}

func TestComposedNeutrality(t *testing.T) {
	tests := []struct {
		name string
		subs []Filter
		want bool
	}{
		{"empty", nil, true},
		{"all neutral", []Filter{NewBrightness(0), &Invert{}}, true},
		{"one active", []Filter{NewBrightness(0), NewContrast(0.1)}, false},
		{"never neutral", []Filter{NewSepia()}, false},
		{"nested", []Filter{NewComposed(NewBrightness(0)), NewResize(1, 1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewComposed(tt.subs...).IsNeutral(); got != tt.want {
				t.Errorf("IsNeutral() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComposedAppliesInOrder(t *testing.T) {
	c := NewComposed(NewBrightness(0.2), NewInvert())
	got := applyRow(t, c, referencePixels())
	want := applyRow(t, NewInvert(), applyRow(t, NewBrightness(0.2), referencePixels()))
	assertPixels(t, got, want)
}

func TestBounds(t *testing.T) {
	filters := []Filter{
		NewResize(0.5, 2),
		NewBrightness(0.1),
		NewComposed(NewResize(3, 1)),
		NewResize(1, 1),
	}
	w, h := Bounds(filters, 10, 7)
	if w != 15 || h != 14 {
		t.Errorf("Bounds = %dx%d, want 15x14", w, h)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want rgb
	}{
		{"#ffffff", rgb{255, 255, 255}},
		{"#F95C63", rgb{249, 92, 99}},
		{"#abc", rgb{170, 187, 204}},
		{"#11223344", rgb{17, 34, 51}},
		{"red", rgb{}},
		{"", rgb{}},
	}
	for _, tt := range tests {
		if got := parseColor(tt.in); got != tt.want {
			t.Errorf("parseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClamp8(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-3, 0},
		{math.NaN(), 0},
		{0.5, 0},
		{1.5, 2},
		{75.5, 76},
		{254.5, 254},
		{300, 255},
		{math.Inf(1), 255},
	}
	for _, tt := range tests {
		if got := clamp8(tt.in); got != tt.want {
			t.Errorf("clamp8(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
