// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"fmt"
	"math"
	"strings"
)

// identityMatrix is the 4x5 color matrix that leaves pixels unchanged.
var identityMatrix = [20]float64{
	1, 0, 0, 0, 0,
	0, 1, 0, 0, 0,
	0, 0, 1, 0, 0,
	0, 0, 0, 1, 0,
}

var sepiaMatrix = [20]float64{
	0.393, 0.769, 0.189, 0, 0,
	0.349, 0.686, 0.168, 0, 0,
	0.272, 0.534, 0.131, 0, 0,
	0, 0, 0, 1, 0,
}

// ColorMatrix transforms pixels by a 4x5 matrix. Each row holds the
// r, g, b, a coefficients and an offset scaled by 255. With ColorsOnly the
// alpha row is ignored and alpha is preserved.
type ColorMatrix struct {
	Matrix     [20]float64 `json:"matrix"`
	ColorsOnly bool        `json:"colorsOnly"`
}

// NewColorMatrix returns a ColorMatrix filter with ColorsOnly set.
func NewColorMatrix(m [20]float64) *ColorMatrix {
	return &ColorMatrix{Matrix: m, ColorsOnly: true}
}

func (f *ColorMatrix) Type() Kind      { return KindColorMatrix }
func (f *ColorMatrix) IsNeutral() bool { return f.Matrix == identityMatrix }

func (f *ColorMatrix) CacheKey() string {
	return colorMatrixKey(KindColorMatrix, f.ColorsOnly)
}

func (f *ColorMatrix) ApplyCPU(st *CPUState) {
	applyColorMatrix(&f.Matrix, f.ColorsOnly, st.Pix)
}

func (f *ColorMatrix) GPUPasses(_, _ int) []Pass {
	return []Pass{colorMatrixPass(f.CacheKey(), &f.Matrix, f.ColorsOnly)}
}

// HueRotation rotates hues by Rotation*pi radians. The derived matrix is
// cached and rebuilt when Rotation changes.
type HueRotation struct {
	Rotation float64 `json:"rotation"`

	matrix    [20]float64
	matrixFor float64
	matrixOK  bool
}

// NewHueRotation returns a HueRotation filter.
func NewHueRotation(rotation float64) *HueRotation {
	return &HueRotation{Rotation: rotation}
}

func (f *HueRotation) Type() Kind       { return KindHueRotation }
func (f *HueRotation) IsNeutral() bool  { return f.Rotation == 0 }
func (f *HueRotation) CacheKey() string { return colorMatrixKey(KindHueRotation, true) }

// Matrix returns the color matrix for the current rotation.
func (f *HueRotation) Matrix() [20]float64 {
	return *f.computed()
}

func (f *HueRotation) computed() *[20]float64 {
	if f.matrixOK && f.matrixFor == f.Rotation {
		return &f.matrix
	}
	rad := f.Rotation * math.Pi
	sin, cos := math.Sincos(rad)
	third := 1.0 / 3
	thirdSqrtSin := math.Sqrt(third) * sin
	oneMinusCos := 1 - cos

	m := identityMatrix
	m[0] = cos + oneMinusCos/3
	m[1] = third*oneMinusCos - thirdSqrtSin
	m[2] = third*oneMinusCos + thirdSqrtSin
	m[5] = third*oneMinusCos + thirdSqrtSin
	m[6] = cos + third*oneMinusCos
	m[7] = third*oneMinusCos - thirdSqrtSin
	m[10] = third*oneMinusCos - thirdSqrtSin
	m[11] = third*oneMinusCos + thirdSqrtSin
	m[12] = cos + third*oneMinusCos

	f.matrix = m
	f.matrixFor = f.Rotation
	f.matrixOK = true
	return &f.matrix
}

func (f *HueRotation) ApplyCPU(st *CPUState) {
	applyColorMatrix(f.computed(), true, st.Pix)
}

func (f *HueRotation) GPUPasses(_, _ int) []Pass {
	return []Pass{colorMatrixPass(f.CacheKey(), f.computed(), true)}
}

// Sepia applies a fixed sepia tone matrix.
type Sepia struct{}

// NewSepia returns a Sepia filter.
func NewSepia() *Sepia { return &Sepia{} }

func (f *Sepia) Type() Kind       { return KindSepia }
func (f *Sepia) IsNeutral() bool  { return false }
func (f *Sepia) CacheKey() string { return colorMatrixKey(KindSepia, true) }

func (f *Sepia) ApplyCPU(st *CPUState) {
	m := sepiaMatrix
	applyColorMatrix(&m, true, st.Pix)
}

func (f *Sepia) GPUPasses(_, _ int) []Pass {
	m := sepiaMatrix
	return []Pass{colorMatrixPass(f.CacheKey(), &m, true)}
}

// applyColorMatrix is shared by the ColorMatrix family.
func applyColorMatrix(m *[20]float64, colorsOnly bool, pix []uint8) {
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b, a := float64(pix[i]), float64(pix[i+1]), float64(pix[i+2]), float64(pix[i+3])
		if colorsOnly {
			pix[i] = clamp8(r*m[0] + g*m[1] + b*m[2] + m[4]*255)
			pix[i+1] = clamp8(r*m[5] + g*m[6] + b*m[7] + m[9]*255)
			pix[i+2] = clamp8(r*m[10] + g*m[11] + b*m[12] + m[14]*255)
			continue
		}
		pix[i] = clamp8(r*m[0] + g*m[1] + b*m[2] + a*m[3] + m[4]*255)
		pix[i+1] = clamp8(r*m[5] + g*m[6] + b*m[7] + a*m[8] + m[9]*255)
		pix[i+2] = clamp8(r*m[10] + g*m[11] + b*m[12] + a*m[13] + m[14]*255)
		pix[i+3] = clamp8(r*m[15] + g*m[16] + b*m[17] + a*m[18] + m[19]*255)
	}
}

func colorMatrixKey(kind Kind, colorsOnly bool) string {
	if colorsOnly {
		return string(kind) + ":colors"
	}
	return string(kind)
}

func colorMatrixPass(key string, m *[20]float64, colorsOnly bool) Pass {
	var b strings.Builder
	b.WriteString("\n")
	for row := range 4 {
		o := row * 5
		fmt.Fprintf(&b, "    let m%d = vec4<f32>(param(%du), param(%du), param(%du), param(%du));\n",
			row, o, o+1, o+2, o+3)
	}
	b.WriteString("    let off = vec4<f32>(param(4u), param(9u), param(14u), param(19u)) * 255.0;\n")
	if colorsOnly {
		b.WriteString("    let k = vec4<f32>(c.rgb, 0.0);\n")
		b.WriteString("    return vec4<f32>(dot(m0, k) + off.x, dot(m1, k) + off.y, dot(m2, k) + off.z, c.a);\n")
	} else {
		b.WriteString("    return vec4<f32>(dot(m0, c), dot(m1, c), dot(m2, c), dot(m3, c)) + off;\n")
	}
	return pointPass(key, b.String(), f32s(m[:]...)...)
}
