// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"github.com/gogpu/ggfx/resource"
)

// Kind is the stable type tag of a filter.
type Kind string

// Filter kinds.
const (
	KindBrightness  Kind = "Brightness"
	KindContrast    Kind = "Contrast"
	KindSaturation  Kind = "Saturation"
	KindGamma       Kind = "Gamma"
	KindColorMatrix Kind = "ColorMatrix"
	KindHueRotation Kind = "HueRotation"
	KindSepia       Kind = "Sepia"
	KindConvolute   Kind = "Convolute"
	KindGrayscale   Kind = "Grayscale"
	KindInvert      Kind = "Invert"
	KindNoise       Kind = "Noise"
	KindPixelate    Kind = "Pixelate"
	KindRemoveColor Kind = "RemoveColor"
	KindResize      Kind = "Resize"
	KindVibrance    Kind = "Vibrance"
	KindBlendColor  Kind = "BlendColor"
	KindBlendImage  Kind = "BlendImage"
	KindComposed    Kind = "Composed"
)

// Kinds returns every filter kind in catalog order.
func Kinds() []Kind {
	return []Kind{
		KindBrightness, KindContrast, KindSaturation, KindGamma,
		KindColorMatrix, KindHueRotation, KindSepia, KindConvolute,
		KindGrayscale, KindInvert, KindNoise, KindPixelate,
		KindRemoveColor, KindResize, KindVibrance, KindBlendColor,
		KindBlendImage, KindComposed,
	}
}

// Filter is an image filter that can run on the CPU and on the GPU.
//
// A filter's parameters must not change while a pipeline run is using it.
type Filter interface {
	// Type returns the filter's type tag.
	Type() Kind

	// IsNeutral reports whether applying the filter with its current
	// parameters would leave every pixel unchanged. It has no side effects.
	IsNeutral() bool

	// ApplyCPU runs the filter over the CPU pipeline state. Filters that
	// change dimensions replace st.Pix, st.Width and st.Height.
	ApplyCPU(st *CPUState)

	// CacheKey identifies the filter's GPU program: the type tag plus every
	// parameter that changes the generated shader source.
	CacheKey() string

	// GPUPasses returns the full-surface passes executing the filter on an
	// input of the given size.
	GPUPasses(width, height int) []Pass
}

// Sizer is implemented by filters that change the image dimensions.
type Sizer interface {
	// OutputSize returns the output dimensions for an input of the given size.
	OutputSize(width, height int) (int, int)
}

// CPUState is the pipeline state threaded through CPU filters.
type CPUState struct {
	// Pix holds straight-alpha RGBA pixels, 4 bytes per pixel, row by row
	// with no padding.
	Pix []uint8

	// Width and Height are the current image dimensions.
	Width, Height int

	// Resources is the backend's scratch pool. It may be nil, in which case
	// filters allocate their scratch surfaces per call.
	Resources *resource.Pool
}

// NewCPUState wraps a pixel buffer of the given size.
func NewCPUState(pix []uint8, width, height int, resources *resource.Pool) *CPUState {
	return &CPUState{Pix: pix, Width: width, Height: height, Resources: resources}
}

// Bounds returns the output size of applying filters in order to an image of
// the given size. Neutral filters are skipped.
func Bounds(filters []Filter, width, height int) (int, int) {
	for _, f := range filters {
		if f == nil || f.IsNeutral() {
			continue
		}
		if s, ok := f.(Sizer); ok {
			width, height = s.OutputSize(width, height)
		}
	}
	return width, height
}

// Active returns the filters that are not neutral, preserving order.
func Active(filters []Filter) []Filter {
	out := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if f == nil || f.IsNeutral() {
			continue
		}
		out = append(out, f)
	}
	return out
}

// AllNeutral reports whether every filter in the list is neutral.
func AllNeutral(filters []Filter) bool {
	for _, f := range filters {
		if f != nil && !f.IsNeutral() {
			return false
		}
	}
	return true
}
