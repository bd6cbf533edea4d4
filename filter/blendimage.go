// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"encoding/json"
	"fmt"
	"image"
	"reflect"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/ggfx/resource"
)

// BlendImage modes.
const (
	BlendImageMultiply = "multiply"
	BlendImageMask     = "mask"
)

// ImageSource describes where a BlendImage image comes from and how it is
// placed. The image is first stretched to the filtered surface, then scaled
// by ScaleX and ScaleY and offset by Left and Top.
type ImageSource struct {
	Src    string  `json:"src"`
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
}

// BlendImage blends a second image into the filtered one. multiply scales
// r, g and b by the image color; mask scales alpha by the image alpha. The
// result is mixed with the input by Alpha.
type BlendImage struct {
	Image ImageSource `json:"image"`
	Mode  string      `json:"mode"`
	Alpha float64     `json:"alpha"`

	// Pixels is the loaded image. Decode fills it through an ImageLoader.
	Pixels image.Image `json:"-"`
}

// NewBlendImage returns a BlendImage filter for an already loaded image.
func NewBlendImage(img image.Image, mode string, alpha float64) *BlendImage {
	return &BlendImage{
		Image:  ImageSource{ScaleX: 1, ScaleY: 1},
		Mode:   mode,
		Alpha:  alpha,
		Pixels: img,
	}
}

// MarshalJSON writes the filter fields. An image without Src is embedded
// as a PNG data URL.
func (f *BlendImage) MarshalJSON() ([]byte, error) {
	type plain BlendImage
	v := *f
	if v.Image.Src == "" && v.Pixels != nil {
		src, err := encodeDataURL(v.Pixels)
		if err != nil {
			return nil, err
		}
		v.Image.Src = src
	}
	return json.Marshal((*plain)(&v))
}

func (f *BlendImage) Type() Kind      { return KindBlendImage }
func (f *BlendImage) IsNeutral() bool { return false }

func (f *BlendImage) mode() string {
	if f.Mode == BlendImageMask {
		return BlendImageMask
	}
	return BlendImageMultiply
}

func (f *BlendImage) CacheKey() string {
	return string(KindBlendImage) + ":" + f.mode()
}

// blendSurface is the BlendImage image drawn at the filtered size.
type blendSurface struct {
	img    image.Image
	source ImageSource
	pix    *image.NRGBA
}

func (f *BlendImage) fresh(s *blendSurface) bool {
	if s == nil || s.source != f.Image {
		return false
	}
	if f.Pixels == nil || s.img == nil {
		return f.Pixels == s.img
	}
	t := reflect.TypeOf(f.Pixels)
	return t == reflect.TypeOf(s.img) && t.Comparable() && f.Pixels == s.img
}

// surface returns the blend image drawn onto a w x h surface. With a pool
// the surface is cached per filter and size.
func (f *BlendImage) surface(pool *resource.Pool, w, h int) *image.NRGBA {
	if pool == nil {
		return f.draw(w, h)
	}
	key := resource.NewKey(fmt.Sprintf("blendImage-%p", f), w, h)
	if v, ok := pool.Get(key); ok {
		if s, ok := v.(*blendSurface); ok && f.fresh(s) {
			return s.pix
		}
	}
	s := &blendSurface{img: f.Pixels, source: f.Image, pix: f.draw(w, h)}
	pool.Put(key, s)
	return s.pix
}

func (f *BlendImage) draw(w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if f.Pixels == nil {
		return dst
	}
	sr := f.Pixels.Bounds()
	if sr.Empty() {
		return dst
	}
	sx := f.Image.ScaleX * float64(w) / float64(sr.Dx())
	sy := f.Image.ScaleY * float64(h) / float64(sr.Dy())
	s2d := f64.Aff3{
		sx, 0, f.Image.Left - sx*float64(sr.Min.X),
		0, sy, f.Image.Top - sy*float64(sr.Min.Y),
	}
	draw.BiLinear.Transform(dst, s2d, f.Pixels, sr, draw.Src, nil)
	return dst
}

func (f *BlendImage) ApplyCPU(st *CPUState) {
	img := f.surface(st.Resources, st.Width, st.Height).Pix
	a := f.Alpha
	pix := st.Pix
	mask := f.mode() == BlendImageMask
	for i := 0; i+3 < len(pix) && i+3 < len(img); i += 4 {
		if mask {
			v := float64(pix[i+3])
			pix[i+3] = clamp8(v + (v*float64(img[i+3])/255-v)*a)
			continue
		}
		for ch := range 3 {
			v := float64(pix[i+ch])
			pix[i+ch] = clamp8(v + (v*float64(img[i+ch])/255-v)*a)
		}
	}
}

func (f *BlendImage) GPUPasses(width, height int) []Pass {
	return f.PooledGPUPasses(nil, width, height)
}

// PooledGPUPasses returns the blend pass with the image surface taken from
// the same pool entry ApplyCPU uses.
func (f *BlendImage) PooledGPUPasses(pool *resource.Pool, width, height int) []Pass {
	body := `
    let t = unpack_px(aux[idx]);
    return vec4<f32>(mix(c.rgb, c.rgb * t.rgb / 255.0, vec3<f32>(param(0u))), c.a);
`
	if f.mode() == BlendImageMask {
		body = `
    let t = unpack_px(aux[idx]);
    return vec4<f32>(c.rgb, mix(c.a, c.a * t.a / 255.0, param(0u)));
`
	}
	p := pointPass(f.CacheKey(), body, float32(f.Alpha))
	p.Aux = f.surface(pool, width, height)
	return []Pass{p}
}
