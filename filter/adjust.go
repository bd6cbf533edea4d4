// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"math"
)

// Brightness adds Brightness*255 to every color channel.
type Brightness struct {
	Brightness float64 `json:"brightness"`
}

// NewBrightness returns a Brightness filter.
func NewBrightness(brightness float64) *Brightness {
	return &Brightness{Brightness: brightness}
}

func (f *Brightness) Type() Kind       { return KindBrightness }
func (f *Brightness) IsNeutral() bool  { return f.Brightness == 0 }
func (f *Brightness) CacheKey() string { return string(KindBrightness) }

func (f *Brightness) ApplyCPU(st *CPUState) {
	delta := f.Brightness * 255
	pix := st.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = clamp8(float64(pix[i]) + delta)
		pix[i+1] = clamp8(float64(pix[i+1]) + delta)
		pix[i+2] = clamp8(float64(pix[i+2]) + delta)
	}
}

func (f *Brightness) GPUPasses(_, _ int) []Pass {
	return []Pass{pointPass(f.CacheKey(), `
    return vec4<f32>(c.rgb + vec3<f32>(param(0u)), c.a);
`, float32(f.Brightness*255))}
}

// Contrast scales color channels around the midpoint 128.
type Contrast struct {
	Contrast float64 `json:"contrast"`
}

// NewContrast returns a Contrast filter.
func NewContrast(contrast float64) *Contrast {
	return &Contrast{Contrast: contrast}
}

func (f *Contrast) Type() Kind       { return KindContrast }
func (f *Contrast) IsNeutral() bool  { return f.Contrast == 0 }
func (f *Contrast) CacheKey() string { return string(KindContrast) }

// factor returns 259(c+255) / (255(259-c)) with c = Contrast*255.
func (f *Contrast) factor() float64 {
	c := f.Contrast * 255
	return 259 * (c + 255) / (255 * (259 - c))
}

func (f *Contrast) ApplyCPU(st *CPUState) {
	k := f.factor()
	pix := st.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = clamp8(k*(float64(pix[i])-128) + 128)
		pix[i+1] = clamp8(k*(float64(pix[i+1])-128) + 128)
		pix[i+2] = clamp8(k*(float64(pix[i+2])-128) + 128)
	}
}

func (f *Contrast) GPUPasses(_, _ int) []Pass {
	return []Pass{pointPass(f.CacheKey(), `
    return vec4<f32>(param(0u) * (c.rgb - vec3<f32>(128.0)) + vec3<f32>(128.0), c.a);
`, float32(f.factor()))}
}

// Saturation moves every channel that is not the pixel maximum toward (or
// away from) that maximum.
type Saturation struct {
	Saturation float64 `json:"saturation"`
}

// NewSaturation returns a Saturation filter.
func NewSaturation(saturation float64) *Saturation {
	return &Saturation{Saturation: saturation}
}

func (f *Saturation) Type() Kind       { return KindSaturation }
func (f *Saturation) IsNeutral() bool  { return f.Saturation == 0 }
func (f *Saturation) CacheKey() string { return string(KindSaturation) }

func (f *Saturation) ApplyCPU(st *CPUState) {
	saturate(st.Pix, func(_, _ float64) float64 { return -f.Saturation })
}

func (f *Saturation) GPUPasses(_, _ int) []Pass {
	return []Pass{pointPass(f.CacheKey(), saturateWGSL("param(0u)"), float32(-f.Saturation))}
}

// Vibrance is a saturation adjustment weighted toward muted pixels: the
// amount is scaled by 1 - (max-min)/255 of the pixel.
type Vibrance struct {
	Vibrance float64 `json:"vibrance"`
}

// NewVibrance returns a Vibrance filter.
func NewVibrance(vibrance float64) *Vibrance {
	return &Vibrance{Vibrance: vibrance}
}

func (f *Vibrance) Type() Kind       { return KindVibrance }
func (f *Vibrance) IsNeutral() bool  { return f.Vibrance == 0 }
func (f *Vibrance) CacheKey() string { return string(KindVibrance) }

func (f *Vibrance) ApplyCPU(st *CPUState) {
	saturate(st.Pix, func(hi, lo float64) float64 {
		return -f.Vibrance * (1 - (hi-lo)/255)
	})
}

func (f *Vibrance) GPUPasses(_, _ int) []Pass {
	return []Pass{pointPass(f.CacheKey(),
		saturateWGSL("param(0u) * (1.0 - (max(c.r, max(c.g, c.b)) - min(c.r, min(c.g, c.b))) / 255.0)"),
		float32(-f.Vibrance))}
}

// saturate applies ch + (max-ch)*amount to every channel that is not the
// pixel maximum. amount receives the pixel max and min.
func saturate(pix []uint8, amount func(hi, lo float64) float64) {
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b := float64(pix[i]), float64(pix[i+1]), float64(pix[i+2])
		hi := math.Max(r, math.Max(g, b))
		lo := math.Min(r, math.Min(g, b))
		adj := amount(hi, lo)
		if r != hi {
			pix[i] = clamp8(r + (hi-r)*adj)
		}
		if g != hi {
			pix[i+1] = clamp8(g + (hi-g)*adj)
		}
		if b != hi {
			pix[i+2] = clamp8(b + (hi-b)*adj)
		}
	}
}

func saturateWGSL(amount string) string {
	return `
    let hi = max(c.r, max(c.g, c.b));
    let adj = ` + amount + `;
    let moved = c.rgb + (vec3<f32>(hi) - c.rgb) * adj;
    return vec4<f32>(select(moved, c.rgb, c.rgb == vec3<f32>(hi)), c.a);
`
}

// Gamma applies a per-channel power curve. The 256-entry lookup tables are
// rebuilt whenever Gamma changes.
type Gamma struct {
	Gamma [3]float64 `json:"gamma"`

	lut    [3][256]uint8
	lutFor [3]float64
	lutOK  bool
}

// NewGamma returns a Gamma filter with the given red, green and blue gamma.
func NewGamma(r, g, b float64) *Gamma {
	return &Gamma{Gamma: [3]float64{r, g, b}}
}

func (f *Gamma) Type() Kind       { return KindGamma }
func (f *Gamma) IsNeutral() bool  { return f.Gamma == [3]float64{1, 1, 1} }
func (f *Gamma) CacheKey() string { return string(KindGamma) }

func (f *Gamma) tables() *[3][256]uint8 {
	if f.lutOK && f.lutFor == f.Gamma {
		return &f.lut
	}
	for ch := range 3 {
		inv := 1 / f.Gamma[ch]
		for i := range 256 {
			f.lut[ch][i] = clamp8(255 * math.Pow(float64(i)/255, inv))
		}
	}
	f.lutFor = f.Gamma
	f.lutOK = true
	return &f.lut
}

func (f *Gamma) ApplyCPU(st *CPUState) {
	lut := f.tables()
	pix := st.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = lut[0][pix[i]]
		pix[i+1] = lut[1][pix[i+1]]
		pix[i+2] = lut[2][pix[i+2]]
	}
}

func (f *Gamma) GPUPasses(_, _ int) []Pass {
	return []Pass{pointPass(f.CacheKey(), `
    let inv = vec3<f32>(param(0u), param(1u), param(2u));
    return vec4<f32>(255.0 * pow(c.rgb / 255.0, inv), c.a);
`, f32s(1/f.Gamma[0], 1/f.Gamma[1], 1/f.Gamma[2])...)}
}
