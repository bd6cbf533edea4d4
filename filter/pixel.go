// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"math"
	"strconv"
	"strings"
)

// clamp8 converts a channel value to a byte with Uint8-clamped semantics:
// NaN maps to 0, values are clamped to [0, 255] and rounded half to even.
func clamp8(v float64) uint8 {
	if v != v || v <= 0 { //nolint:gocritic // NaN check
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rgb is a straight color with channels in [0, 255].
type rgb struct {
	r, g, b float64
}

// parseColor parses "#rgb", "#rgba", "#rrggbb" and "#rrggbbaa" hex colors.
// Malformed input yields black.
func parseColor(s string) rgb {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3, 4:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6, 8:
		s = s[:6]
	default:
		return rgb{}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}
	}
	return rgb{
		r: float64((v >> 16) & 0xff),
		g: float64((v >> 8) & 0xff),
		b: float64(v & 0xff),
	}
}
