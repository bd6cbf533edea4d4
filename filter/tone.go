// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"math"
	"math/rand/v2"
)

// Grayscale modes.
const (
	GrayscaleAverage    = "average"
	GrayscaleLightness  = "lightness"
	GrayscaleLuminosity = "luminosity"
)

// Grayscale replaces r, g and b with a single gray value computed by Mode.
// Unknown modes behave as average.
type Grayscale struct {
	Mode string `json:"mode"`
}

// NewGrayscale returns a Grayscale filter.
func NewGrayscale(mode string) *Grayscale {
	return &Grayscale{Mode: mode}
}

func (f *Grayscale) Type() Kind      { return KindGrayscale }
func (f *Grayscale) IsNeutral() bool { return false }

func (f *Grayscale) CacheKey() string {
	return string(KindGrayscale) + ":" + f.mode()
}

func (f *Grayscale) mode() string {
	switch f.Mode {
	case GrayscaleLightness, GrayscaleLuminosity:
		return f.Mode
	default:
		return GrayscaleAverage
	}
}

func (f *Grayscale) ApplyCPU(st *CPUState) {
	mode := f.mode()
	pix := st.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b := float64(pix[i]), float64(pix[i+1]), float64(pix[i+2])
		var v float64
		switch mode {
		case GrayscaleLightness:
			v = (math.Max(r, math.Max(g, b)) + math.Min(r, math.Min(g, b))) / 2
		case GrayscaleLuminosity:
			v = 0.2126*r + 0.7152*g + 0.0722*b
		default:
			v = (r + g + b) / 3
		}
		gray := clamp8(v)
		pix[i], pix[i+1], pix[i+2] = gray, gray, gray
	}
}

func (f *Grayscale) GPUPasses(_, _ int) []Pass {
	var expr string
	switch f.mode() {
	case GrayscaleLightness:
		expr = "(max(c.r, max(c.g, c.b)) + min(c.r, min(c.g, c.b))) / 2.0"
	case GrayscaleLuminosity:
		expr = "dot(c.rgb, vec3<f32>(0.2126, 0.7152, 0.0722))"
	default:
		expr = "(c.r + c.g + c.b) / 3.0"
	}
	return []Pass{pointPass(f.CacheKey(), `
    let v = `+expr+`;
    return vec4<f32>(vec3<f32>(v), c.a);
`)}
}

// Invert inverts the color channels, and alpha too when Alpha is set.
type Invert struct {
	Invert bool `json:"invert"`
	Alpha  bool `json:"alpha"`
}

// NewInvert returns an Invert filter that inverts colors only.
func NewInvert() *Invert {
	return &Invert{Invert: true}
}

func (f *Invert) Type() Kind       { return KindInvert }
func (f *Invert) IsNeutral() bool  { return !f.Invert }
func (f *Invert) CacheKey() string { return string(KindInvert) }

func (f *Invert) ApplyCPU(st *CPUState) {
	if !f.Invert {
		return
	}
	pix := st.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = 255 - pix[i]
		pix[i+1] = 255 - pix[i+1]
		pix[i+2] = 255 - pix[i+2]
		if f.Alpha {
			pix[i+3] = 255 - pix[i+3]
		}
	}
}

func (f *Invert) GPUPasses(_, _ int) []Pass {
	return []Pass{pointPass(f.CacheKey(), `
    if (param(0u) < 0.5) {
        return c;
    }
    let a = select(c.a, 255.0 - c.a, param(1u) > 0.5);
    return vec4<f32>(vec3<f32>(255.0) - c.rgb, a);
`, boolf(f.Invert), boolf(f.Alpha))}
}

// Noise adds a uniform random offset in [-Noise/2, Noise/2] to each pixel.
// The same offset is applied to r, g and b of a pixel. A non-zero Seed
// makes the output reproducible.
type Noise struct {
	Noise float64 `json:"noise"`
	Seed  uint64  `json:"seed,omitempty"`
}

// NewNoise returns a Noise filter.
func NewNoise(noise float64) *Noise {
	return &Noise{Noise: noise}
}

func (f *Noise) Type() Kind       { return KindNoise }
func (f *Noise) IsNeutral() bool  { return f.Noise == 0 }
func (f *Noise) CacheKey() string { return string(KindNoise) }

func (f *Noise) seed() uint64 {
	if f.Seed != 0 {
		return f.Seed
	}
	return rand.Uint64()
}

func (f *Noise) ApplyCPU(st *CPUState) {
	rng := rand.New(rand.NewPCG(f.seed(), 0x9e3779b97f4a7c15))
	pix := st.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		off := (0.5 - rng.Float64()) * f.Noise
		pix[i] = clamp8(float64(pix[i]) + off)
		pix[i+1] = clamp8(float64(pix[i+1]) + off)
		pix[i+2] = clamp8(float64(pix[i+2]) + off)
	}
}

func (f *Noise) GPUPasses(_, _ int) []Pass {
	seed := uint32(f.seed()) //nolint:gosec // truncation intended
	return []Pass{pointPass(f.CacheKey(), `
    var h = idx ^ u32(param(1u));
    h = h ^ (h >> 16u);
    h = h * 0x7feb352du;
    h = h ^ (h >> 15u);
    h = h * 0x846ca68bu;
    h = h ^ (h >> 16u);
    let off = (0.5 - f32(h) / 4294967295.0) * param(0u);
    return vec4<f32>(c.rgb + vec3<f32>(off), c.a);
`, float32(f.Noise), float32(seed&0xffffff))}
}

func boolf(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
