// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"math"
)

// RemoveColor makes pixels close to Color fully transparent. A pixel is
// removed when every channel is within Distance*255 of the target,
// inclusive.
type RemoveColor struct {
	Color    string  `json:"color"`
	Distance float64 `json:"distance"`
}

// NewRemoveColor returns a RemoveColor filter.
func NewRemoveColor(color string, distance float64) *RemoveColor {
	return &RemoveColor{Color: color, Distance: distance}
}

func (f *RemoveColor) Type() Kind       { return KindRemoveColor }
func (f *RemoveColor) IsNeutral() bool  { return false }
func (f *RemoveColor) CacheKey() string { return string(KindRemoveColor) }

func (f *RemoveColor) ApplyCPU(st *CPUState) {
	t := parseColor(f.Color)
	d := f.Distance * 255
	pix := st.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		if math.Abs(float64(pix[i])-t.r) <= d &&
			math.Abs(float64(pix[i+1])-t.g) <= d &&
			math.Abs(float64(pix[i+2])-t.b) <= d {
			pix[i+3] = 0
		}
	}
}

func (f *RemoveColor) GPUPasses(_, _ int) []Pass {
	t := parseColor(f.Color)
	return []Pass{pointPass(f.CacheKey(), `
    let d = abs(c.rgb - vec3<f32>(param(0u), param(1u), param(2u)));
    let k = param(3u);
    if (d.x <= k && d.y <= k && d.z <= k) {
        return vec4<f32>(c.rgb, 0.0);
    }
    return c;
`, f32s(t.r, t.g, t.b, f.Distance*255)...)}
}

// Blend modes of BlendColor.
const (
	BlendMultiply   = "multiply"
	BlendAdd        = "add"
	BlendDiff       = "diff"
	BlendScreen     = "screen"
	BlendSubtract   = "subtract"
	BlendDarken     = "darken"
	BlendLighten    = "lighten"
	BlendOverlay    = "overlay"
	BlendExclusion  = "exclusion"
	BlendTint       = "tint"
	blendDifference = "difference"
)

// BlendColor blends a solid color over r, g and b with Mode, then mixes the
// blended result with the input by Alpha.
type BlendColor struct {
	Color string  `json:"color"`
	Mode  string  `json:"mode"`
	Alpha float64 `json:"alpha"`
}

// NewBlendColor returns a BlendColor filter.
func NewBlendColor(color, mode string, alpha float64) *BlendColor {
	return &BlendColor{Color: color, Mode: mode, Alpha: alpha}
}

func (f *BlendColor) Type() Kind      { return KindBlendColor }
func (f *BlendColor) IsNeutral() bool { return false }

func (f *BlendColor) CacheKey() string {
	return string(KindBlendColor) + ":" + f.mode()
}

func (f *BlendColor) mode() string {
	switch f.Mode {
	case BlendAdd, BlendDiff, BlendScreen, BlendSubtract, BlendDarken,
		BlendLighten, BlendOverlay, BlendExclusion, BlendTint:
		return f.Mode
	case blendDifference:
		return BlendDiff
	default:
		return BlendMultiply
	}
}

// blendChannel returns the blend of channel v with color channel t.
func blendChannel(mode string, v, t float64) float64 {
	switch mode {
	case BlendAdd:
		return v + t
	case BlendDiff:
		return math.Abs(v - t)
	case BlendScreen:
		return 255 - (255-v)*(255-t)/255
	case BlendSubtract:
		return v - t
	case BlendDarken:
		return math.Min(v, t)
	case BlendLighten:
		return math.Max(v, t)
	case BlendOverlay:
		if t < 128 {
			return 2 * v * t / 255
		}
		return 255 - 2*(255-v)*(255-t)/255
	case BlendExclusion:
		return t + v - 2*t*v/255
	case BlendTint:
		return t
	default:
		return v * t / 255
	}
}

func (f *BlendColor) ApplyCPU(st *CPUState) {
	mode := f.mode()
	t := parseColor(f.Color)
	a := f.Alpha
	pix := st.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b := float64(pix[i]), float64(pix[i+1]), float64(pix[i+2])
		pix[i] = clamp8(r + (blendChannel(mode, r, t.r)-r)*a)
		pix[i+1] = clamp8(g + (blendChannel(mode, g, t.g)-g)*a)
		pix[i+2] = clamp8(b + (blendChannel(mode, b, t.b)-b)*a)
	}
}

var blendColorWGSL = map[string]string{
	BlendMultiply:  "v * t / 255.0",
	BlendAdd:       "v + t",
	BlendDiff:      "abs(v - t)",
	BlendScreen:    "vec3<f32>(255.0) - (vec3<f32>(255.0) - v) * (vec3<f32>(255.0) - t) / 255.0",
	BlendSubtract:  "v - t",
	BlendDarken:    "min(v, t)",
	BlendLighten:   "max(v, t)",
	BlendOverlay:   "select(vec3<f32>(255.0) - 2.0 * (vec3<f32>(255.0) - v) * (vec3<f32>(255.0) - t) / 255.0, 2.0 * v * t / 255.0, t < vec3<f32>(128.0))",
	BlendExclusion: "t + v - 2.0 * t * v / 255.0",
	BlendTint:      "t",
}

func (f *BlendColor) GPUPasses(_, _ int) []Pass {
	t := parseColor(f.Color)
	return []Pass{pointPass(f.CacheKey(), `
    let v = c.rgb;
    let t = vec3<f32>(param(0u), param(1u), param(2u));
    let blended = `+blendColorWGSL[f.mode()]+`;
    return vec4<f32>(mix(v, blended, vec3<f32>(param(3u))), c.a);
`, f32s(t.r, t.g, t.b, f.Alpha)...)}
}
