// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	_ "embed"
	"image"
	"strings"

	"github.com/gogpu/ggfx/resource"
)

//go:embed shaders/point.wgsl
var pointShaderWGSL string

// MaxUniforms is the number of float parameters a pass can carry. The
// params buffer stays far below the default storage binding size limit.
const MaxUniforms = 1 << 16

// WorkgroupSize is the edge length of the square compute workgroup every
// pass is dispatched with.
const WorkgroupSize = 8

// transformMarker is replaced by the pass-specific transform function.
const transformMarker = "//@transform"

// Pass is one full-surface GPU compute pass.
//
// Every program shares the binding layout of shaders/point.wgsl:
// 0 parameters, 1 source pixels, 2 target pixels, 3 the unfiltered
// input of the run and 4 an auxiliary surface. Binding 3 holds the input
// only when a pass of the run sets UsesOriginal; otherwise it is a
// placeholder that programs must not read.
type Pass struct {
	// Key identifies the compiled program in the backend's program cache.
	Key string

	// Source is the WGSL compute program.
	Source string

	// Uniforms are the pass parameters, at most MaxUniforms values.
	Uniforms []float32

	// OutWidth and OutHeight are the output dimensions. Zero means the
	// output matches the input.
	OutWidth, OutHeight int

	// Aux is an optional secondary surface bound at binding 4. It has the
	// pass output dimensions. Backends may skip the upload when the same
	// surface was bound before, so it must not be modified once returned.
	Aux *image.NRGBA

	// UsesOriginal marks a program reading the unfiltered input at
	// binding 3.
	UsesOriginal bool
}

// PoolPasser is implemented by filters whose GPU passes reuse surfaces
// from the backend's resource pool.
type PoolPasser interface {
	PooledGPUPasses(pool *resource.Pool, width, height int) []Pass
}

// Passes returns the GPU passes of f for a width x height input. Filters
// implementing PoolPasser draw their surfaces from pool.
func Passes(f Filter, pool *resource.Pool, width, height int) []Pass {
	if pp, ok := f.(PoolPasser); ok && pool != nil {
		return pp.PooledGPUPasses(pool, width, height)
	}
	return f.GPUPasses(width, height)
}

// OutputSize returns the pass output size for an input of the given size.
func (p Pass) OutputSize(width, height int) (int, int) {
	if p.OutWidth > 0 && p.OutHeight > 0 {
		return p.OutWidth, p.OutHeight
	}
	return width, height
}

// program returns the base shader with transform spliced in. transform must
// define fn transform(pos: vec2<i32>, idx: u32) -> vec4<f32>.
func program(transform string) string {
	return strings.Replace(pointShaderWGSL, transformMarker, transform, 1)
}

// pointProgram wraps a per-pixel body operating on c, the unpacked source
// pixel. The body must return the output color.
func pointProgram(body string) string {
	var b strings.Builder
	b.WriteString("fn transform(pos: vec2<i32>, idx: u32) -> vec4<f32> {\n")
	b.WriteString("    let c = unpack_px(src[idx]);\n")
	b.WriteString(body)
	b.WriteString("}\n")
	return program(b.String())
}

// CopyPass returns a pass that copies its input unchanged.
func CopyPass() Pass {
	return pointPass("Copy", `
    return c;
`)
}

func pointPass(key, body string, uniforms ...float32) Pass {
	return Pass{Key: key, Source: pointProgram(body), Uniforms: uniforms}
}

func f32s(vs ...float64) []float32 {
	out := make([]float32, len(vs))
	for i, v := range vs {
		out[i] = float32(v)
	}
	return out
}
