// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/ggfx/resource"
)

// Resize strategies.
const (
	ResizeBilinear  = "bilinear"
	ResizeHermite   = "hermite"
	ResizeSliceHack = "sliceHack"
	ResizeLanczos   = "lanczos"
)

// DefaultLanczosLobes is the lanczos kernel half-width used when none is set.
const DefaultLanczosLobes = 3

// Resize scales the image by ScaleX and ScaleY using ResizeType on the CPU.
// The GPU always uses a separable two-pass lanczos kernel.
type Resize struct {
	ScaleX       float64 `json:"scaleX"`
	ScaleY       float64 `json:"scaleY"`
	ResizeType   string  `json:"resizeType"`
	LanczosLobes int     `json:"lanczosLobes"`
}

// NewResize returns a Resize filter using the hermite strategy.
func NewResize(scaleX, scaleY float64) *Resize {
	return &Resize{
		ScaleX:       scaleX,
		ScaleY:       scaleY,
		ResizeType:   ResizeHermite,
		LanczosLobes: DefaultLanczosLobes,
	}
}

func (f *Resize) Type() Kind      { return KindResize }
func (f *Resize) IsNeutral() bool { return f.ScaleX == 1 && f.ScaleY == 1 }

func (f *Resize) CacheKey() string {
	return string(KindResize) + ":" + f.ResizeType
}

// OutputSize returns round(w*ScaleX) x round(h*ScaleY), at least 1x1.
func (f *Resize) OutputSize(width, height int) (int, int) {
	return max(1, int(math.Round(float64(width)*f.ScaleX))),
		max(1, int(math.Round(float64(height)*f.ScaleY)))
}

func (f *Resize) lobes() int {
	if f.LanczosLobes < 1 {
		return DefaultLanczosLobes
	}
	return f.LanczosLobes
}

func (f *Resize) ApplyCPU(st *CPUState) {
	dw, dh := f.OutputSize(st.Width, st.Height)
	if dw == st.Width && dh == st.Height {
		return
	}
	var out []uint8
	switch f.ResizeType {
	case ResizeBilinear:
		out = bilinearResize(st.Pix, st.Width, st.Height, dw, dh)
	case ResizeSliceHack:
		out = sliceHackResize(st, dw, dh)
	case ResizeLanczos:
		out = lanczosResize(st, dw, dh, f.lobes())
	default:
		out = hermiteResize(st.Pix, st.Width, st.Height, dw, dh)
	}
	st.Pix, st.Width, st.Height = out, dw, dh
}

// bilinearResize samples the 2x2 neighborhood at (x*ratio, y*ratio).
// Neighbors past the last row or column clamp to the edge.
func bilinearResize(src []uint8, w, h, dw, dh int) []uint8 {
	out := make([]uint8, dw*dh*4)
	xr := float64(w) / float64(dw)
	yr := float64(h) / float64(dh)
	for i := 0; i < dh; i++ {
		fy := yr * float64(i)
		y := min(int(fy), h-1)
		yd := fy - float64(y)
		y1 := min(y+1, h-1)
		for j := 0; j < dw; j++ {
			fx := xr * float64(j)
			x := min(int(fx), w-1)
			xd := fx - float64(x)
			x1 := min(x+1, w-1)
			pa := (y*w + x) * 4
			pb := (y*w + x1) * 4
			pc := (y1*w + x) * 4
			pd := (y1*w + x1) * 4
			o := (i*dw + j) * 4
			for ch := range 4 {
				v := float64(src[pa+ch])*(1-xd)*(1-yd) +
					float64(src[pb+ch])*xd*(1-yd) +
					float64(src[pc+ch])*yd*(1-xd) +
					float64(src[pd+ch])*xd*yd
				out[o+ch] = clamp8(v)
			}
		}
	}
	return out
}

// hermiteResize computes a weighted area average with the hermite weight
// 2w^3 - 3w^2 + 1 over each destination pixel's source window. Colors are
// weighted by alpha.
func hermiteResize(src []uint8, w, h, dw, dh int) []uint8 {
	out := make([]uint8, dw*dh*4)
	rw := float64(w) / float64(dw)
	rh := float64(h) / float64(dh)
	rwHalf := math.Ceil(rw / 2)
	rhHalf := math.Ceil(rh / 2)
	for j := 0; j < dh; j++ {
		cy := (float64(j) + 0.5) * rh
		yEnd := min(int(math.Ceil(float64(j+1)*rh)), h)
		for i := 0; i < dw; i++ {
			cx := (float64(i) + 0.5) * rw
			xEnd := min(int(math.Ceil(float64(i+1)*rw)), w)
			var weights, weightsAlpha, gr, gg, gb, ga float64
			for yy := int(float64(j) * rh); yy < yEnd; yy++ {
				dy := math.Abs(cy-(float64(yy)+0.5)) / rhHalf
				w0 := dy * dy
				for xx := int(float64(i) * rw); xx < xEnd; xx++ {
					dx := math.Abs(cx-(float64(xx)+0.5)) / rwHalf
					d := math.Sqrt(w0 + dx*dx)
					if d >= 1 {
						continue
					}
					weight := 2*d*d*d - 3*d*d + 1
					if weight <= 0 {
						continue
					}
					p := (yy*w + xx) * 4
					alpha := float64(src[p+3])
					ga += weight * alpha
					weightsAlpha += weight
					if alpha < 255 {
						weight = weight * alpha / 250
					}
					gr += weight * float64(src[p])
					gg += weight * float64(src[p+1])
					gb += weight * float64(src[p+2])
					weights += weight
				}
			}
			o := (j*dw + i) * 4
			if weights > 0 {
				out[o] = clamp8(gr / weights)
				out[o+1] = clamp8(gg / weights)
				out[o+2] = clamp8(gb / weights)
			}
			if weightsAlpha > 0 {
				out[o+3] = clamp8(ga / weightsAlpha)
			}
		}
	}
	return out
}

// sliceHackResize halves each axis with a box average while the remaining
// scale on that axis is at most 1/2, then finishes with bilinear.
func sliceHackResize(st *CPUState, dw, dh int) []uint8 {
	pix, w, h := st.Pix, st.Width, st.Height
	for w/2 >= dw || h/2 >= dh {
		nw, nh := w, h
		if w/2 >= dw {
			nw = w / 2
		}
		if h/2 >= dh {
			nh = h / 2
		}
		next := scratch(st.Resources, "resize:slice", nw, nh)
		boxHalve(pix, w, h, next, nw, nh)
		pix, w, h = next, nw, nh
	}
	if w == dw && h == dh {
		out := make([]uint8, len(pix))
		copy(out, pix)
		return out
	}
	return bilinearResize(pix, w, h, dw, dh)
}

// boxHalve averages 2x2, 2x1 or 1x2 boxes depending on which axes halve.
func boxHalve(src []uint8, w, h int, dst []uint8, nw, nh int) {
	sx := w / nw
	sy := h / nh
	n := float64(sx * sy)
	for y := 0; y < nh; y++ {
		for x := 0; x < nw; x++ {
			var acc [4]float64
			for by := 0; by < sy; by++ {
				for bx := 0; bx < sx; bx++ {
					p := ((y*sy+by)*w + x*sx + bx) * 4
					for ch := range 4 {
						acc[ch] += float64(src[p+ch])
					}
				}
			}
			o := (y*nw + x) * 4
			for ch := range 4 {
				dst[o+ch] = clamp8(acc[ch] / n)
			}
		}
	}
}

// lanczos is the windowed sinc kernel with a lobes.
func lanczos(x float64, a float64) float64 {
	if math.Abs(x) < 1e-6 {
		return 1
	}
	if math.Abs(x) >= a {
		return 0
	}
	px := math.Pi * x
	return a * math.Sin(px) * math.Sin(px/a) / (px * px)
}

// lanczosAxis describes one separable lanczos pass along an axis of length
// n resized to dn.
type lanczosAxis struct {
	ratio, scale, lobes float64
	taps                int
}

func newLanczosAxis(n, dn, lobes int) lanczosAxis {
	ratio := float64(n) / float64(dn)
	scale := math.Max(ratio, 1)
	support := float64(lobes) * scale
	return lanczosAxis{
		ratio: ratio,
		scale: scale,
		lobes: float64(lobes),
		taps:  int(math.Ceil(2*support)) + 1,
	}
}

// weights returns the first source index and the normalized tap weights for
// destination index d. Out-of-range taps get weight 0.
func (a lanczosAxis) weights(d, n int, ws []float64) (int, []float64) {
	center := (float64(d) + 0.5) * a.ratio
	first := int(math.Floor(center - a.lobes*a.scale))
	ws = ws[:0]
	var sum float64
	for k := 0; k < a.taps; k++ {
		s := first + k
		var wt float64
		if s >= 0 && s < n {
			wt = lanczos((float64(s)+0.5-center)/a.scale, a.lobes)
		}
		ws = append(ws, wt)
		sum += wt
	}
	if sum == 0 {
		nearest := clampInt(int(center), 0, n-1)
		for k := range ws {
			ws[k] = 0
		}
		if k := nearest - first; k >= 0 && k < len(ws) {
			ws[k] = 1
		}
		return first, ws
	}
	for k := range ws {
		ws[k] /= sum
	}
	return first, ws
}

// lanczosResize runs a horizontal then a vertical pass. The intermediate
// image is rounded to bytes.
func lanczosResize(st *CPUState, dw, dh, lobes int) []uint8 {
	w, h := st.Width, st.Height
	src := st.Pix
	if dw != w {
		tmp := scratch(st.Resources, "resize:lanczos", dw, h)
		ax := newLanczosAxis(w, dw, lobes)
		ws := make([]float64, 0, ax.taps)
		for x := 0; x < dw; x++ {
			var first int
			first, ws = ax.weights(x, w, ws)
			for y := 0; y < h; y++ {
				var acc [4]float64
				for k, wt := range ws {
					if wt == 0 {
						continue
					}
					p := (y*w + first + k) * 4
					for ch := range 4 {
						acc[ch] += float64(src[p+ch]) * wt
					}
				}
				o := (y*dw + x) * 4
				for ch := range 4 {
					tmp[o+ch] = clamp8(acc[ch])
				}
			}
		}
		src, w = tmp, dw
	}
	out := make([]uint8, dw*dh*4)
	if dh == h {
		copy(out, src)
		return out
	}
	ay := newLanczosAxis(h, dh, lobes)
	ws := make([]float64, 0, ay.taps)
	for y := 0; y < dh; y++ {
		var first int
		first, ws = ay.weights(y, h, ws)
		for x := 0; x < w; x++ {
			var acc [4]float64
			for k, wt := range ws {
				if wt == 0 {
					continue
				}
				p := ((first+k)*w + x) * 4
				for ch := range 4 {
					acc[ch] += float64(src[p+ch]) * wt
				}
			}
			o := (y*dw + x) * 4
			for ch := range 4 {
				out[o+ch] = clamp8(acc[ch])
			}
		}
	}
	return out
}

// scratch returns a w x h RGBA buffer from the pool, or a fresh one when
// pool is nil.
func scratch(pool *resource.Pool, kind string, w, h int) []uint8 {
	if pool == nil {
		return make([]uint8, w*h*4)
	}
	return resource.Obtain(pool, resource.NewKey(kind, w, h), func() []uint8 {
		return make([]uint8, w*h*4)
	})
}

// GPUPasses returns a horizontal pass when the width changes and a vertical
// pass when the height changes. Taps are unrolled, so the tap count is part
// of the key.
func (f *Resize) GPUPasses(width, height int) []Pass {
	dw, dh := f.OutputSize(width, height)
	var passes []Pass
	if dw != width {
		passes = append(passes, lanczosPass(true, width, dw, height, f.lobes()))
		width = dw
	}
	if dh != height {
		passes = append(passes, lanczosPass(false, height, dh, width, f.lobes()))
	}
	return passes
}

func lanczosPass(horizontal bool, n, dn, other, lobes int) Pass {
	ax := newLanczosAxis(n, dn, lobes)
	dir, coord, limit := "v", "y", "in_height()"
	if horizontal {
		dir, coord, limit = "h", "x", "in_width()"
	}
	sample := "src_at(pos.x, clamp(s, 0, i32(in_height()) - 1))"
	if horizontal {
		sample = "src_at(clamp(s, 0, i32(in_width()) - 1), pos.y)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `fn lanczos(x: f32) -> f32 {
    let a = param(2u);
    if (abs(x) < 1e-6) {
        return 1.0;
    }
    if (abs(x) >= a) {
        return 0.0;
    }
    let px = 3.14159265358979 * x;
    return a * sin(px) * sin(px / a) / (px * px);
}

fn rs_weight(s: i32, center: f32) -> f32 {
    if (s < 0 || s >= i32(%s)) {
        return 0.0;
    }
    return lanczos((f32(s) + 0.5 - center) / param(1u));
}

fn rs_sample(pos: vec2<i32>, s: i32) -> vec4<f32> {
    return %s;
}

fn transform(pos: vec2<i32>, idx: u32) -> vec4<f32> {
    let center = (f32(pos.%s) + 0.5) * param(0u);
    let first = i32(floor(center - param(2u) * param(1u)));
    var acc = vec4<f32>(0.0);
    var sum = 0.0;
    var w = 0.0;
`, limit, sample, coord)
	for k := 0; k < ax.taps; k++ {
		fmt.Fprintf(&b, "    w = rs_weight(first + %d, center);\n", k)
		fmt.Fprintf(&b, "    acc += rs_sample(pos, first + %d) * w;\n", k)
		b.WriteString("    sum += w;\n")
	}
	b.WriteString(`    if (sum == 0.0) {
        return rs_sample(pos, i32(floor(center)));
    }
    return acc / sum;
}
`)

	p := Pass{
		Key:      fmt.Sprintf("%s:lanczos:%s:%d", KindResize, dir, ax.taps),
		Source:   program(b.String()),
		Uniforms: f32s(ax.ratio, ax.scale, ax.lobes),
	}
	if horizontal {
		p.OutWidth, p.OutHeight = dn, other
	} else {
		p.OutWidth, p.OutHeight = other, dn
	}
	return p
}
