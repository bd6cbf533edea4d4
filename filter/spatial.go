// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"fmt"
	"math"
	"strings"
)

// Convolute convolves the image with a square kernel of odd side.
// Samples outside the image contribute 0. With Opaque the output alpha is
// 255, otherwise alpha is convolved like the color channels.
type Convolute struct {
	Matrix []float64 `json:"matrix"`
	Opaque bool      `json:"opaque"`
}

// NewConvolute returns a Convolute filter.
func NewConvolute(matrix []float64, opaque bool) *Convolute {
	return &Convolute{Matrix: matrix, Opaque: opaque}
}

func (f *Convolute) Type() Kind      { return KindConvolute }
func (f *Convolute) IsNeutral() bool { return false }

func (f *Convolute) side() int {
	return int(math.Round(math.Sqrt(float64(len(f.Matrix)))))
}

func (f *Convolute) CacheKey() string {
	return fmt.Sprintf("%s:%d:%t", KindConvolute, f.side(), f.Opaque)
}

func (f *Convolute) weight(i int) float64 {
	if i < len(f.Matrix) {
		return f.Matrix[i]
	}
	return 0
}

func (f *Convolute) ApplyCPU(st *CPUState) {
	w, h := st.Width, st.Height
	side := f.side()
	half := side / 2
	src := st.Pix
	out := make([]uint8, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a float64
			for cy := 0; cy < side; cy++ {
				sy := y + cy - half
				if sy < 0 || sy >= h {
					continue
				}
				for cx := 0; cx < side; cx++ {
					sx := x + cx - half
					if sx < 0 || sx >= w {
						continue
					}
					o := (sy*w + sx) * 4
					k := f.weight(cy*side + cx)
					r += float64(src[o]) * k
					g += float64(src[o+1]) * k
					b += float64(src[o+2]) * k
					a += float64(src[o+3]) * k
				}
			}
			d := (y*w + x) * 4
			out[d] = clamp8(r)
			out[d+1] = clamp8(g)
			out[d+2] = clamp8(b)
			if f.Opaque {
				out[d+3] = 255
			} else {
				out[d+3] = clamp8(a)
			}
		}
	}
	copy(src, out)
}

// GPUPasses unrolls the kernel; naga-generated SPIR-V loops are not relied on.
func (f *Convolute) GPUPasses(_, _ int) []Pass {
	side := f.side()
	half := side / 2
	var b strings.Builder
	b.WriteString(`fn conv_tap(pos: vec2<i32>, dx: i32, dy: i32, k: f32) -> vec4<f32> {
    let x = pos.x + dx;
    let y = pos.y + dy;
    if (!in_bounds(x, y)) {
        return vec4<f32>(0.0);
    }
    return src_at(x, y) * k;
}

fn transform(pos: vec2<i32>, idx: u32) -> vec4<f32> {
    var acc = vec4<f32>(0.0);
`)
	uniforms := make([]float32, 0, side*side)
	for cy := 0; cy < side; cy++ {
		for cx := 0; cx < side; cx++ {
			i := cy*side + cx
			fmt.Fprintf(&b, "    acc += conv_tap(pos, %d, %d, param(%du));\n", cx-half, cy-half, i)
			uniforms = append(uniforms, float32(f.weight(i)))
		}
	}
	if f.Opaque {
		b.WriteString("    return vec4<f32>(acc.rgb, 255.0);\n}\n")
	} else {
		b.WriteString("    return acc;\n}\n")
	}
	return []Pass{{Key: f.CacheKey(), Source: program(b.String()), Uniforms: uniforms}}
}

// Pixelate replaces each Blocksize square with the color of its top-left
// pixel. Blocks at the right and bottom edges are clipped.
type Pixelate struct {
	Blocksize float64 `json:"blocksize"`
}

// NewPixelate returns a Pixelate filter.
func NewPixelate(blocksize float64) *Pixelate {
	return &Pixelate{Blocksize: blocksize}
}

func (f *Pixelate) Type() Kind       { return KindPixelate }
func (f *Pixelate) IsNeutral() bool  { return f.Blocksize == 1 }
func (f *Pixelate) CacheKey() string { return string(KindPixelate) }

func (f *Pixelate) block() int {
	return max(1, int(f.Blocksize))
}

func (f *Pixelate) ApplyCPU(st *CPUState) {
	bs := f.block()
	if bs == 1 {
		return
	}
	w, h := st.Width, st.Height
	pix := st.Pix
	for by := 0; by < h; by += bs {
		for bx := 0; bx < w; bx += bs {
			o := (by*w + bx) * 4
			r, g, b, a := pix[o], pix[o+1], pix[o+2], pix[o+3]
			for y := by; y < min(by+bs, h); y++ {
				for x := bx; x < min(bx+bs, w); x++ {
					d := (y*w + x) * 4
					pix[d], pix[d+1], pix[d+2], pix[d+3] = r, g, b, a
				}
			}
		}
	}
}

func (f *Pixelate) GPUPasses(_, _ int) []Pass {
	return []Pass{{
		Key: f.CacheKey(),
		Source: program(`fn transform(pos: vec2<i32>, idx: u32) -> vec4<f32> {
    let b = max(i32(param(0u)), 1);
    return src_at((pos.x / b) * b, (pos.y / b) * b);
}
`),
		Uniforms: []float32{float32(f.block())},
	}}
}
