// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package filter is the catalog of image filters applied by ggfx pipelines.
//
// Each filter is a self-contained value exposing:
//   - a stable type tag ([Kind]) used in serialization and cache keys
//   - a neutral-state predicate so pipelines can skip no-op filters
//   - the exact CPU algorithm over a straight-alpha RGBA byte buffer
//   - one or more GPU compute passes ([Pass]) with WGSL programs
//
// The catalog covers color adjustments (Brightness, Contrast, Saturation,
// Gamma, Vibrance, Grayscale, Invert, Noise), the color matrix family
// (ColorMatrix, HueRotation, Sepia), spatial filters (Convolute, Pixelate,
// Resize), keying and blending (RemoveColor, BlendColor, BlendImage) and
// composition (Composed).
//
// All channel values are clamped to [0, 255] after every filter. The alpha
// channel is left untouched unless a filter documents otherwise.
//
// Filters serialize to JSON objects of the form {"type": <tag>, ...fields}.
// [Decode] reconstructs them; it is asynchronous for BlendImage (which loads
// an external image) and for Composed filters containing one.
package filter
