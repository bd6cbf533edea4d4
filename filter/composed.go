// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"encoding/json"
	"strings"

	"github.com/gogpu/ggfx/resource"
)

// Composed applies its sub-filters in order against the same state.
type Composed struct {
	SubFilters []Filter `json:"subFilters"`
}

// NewComposed returns a Composed filter.
func NewComposed(filters ...Filter) *Composed {
	return &Composed{SubFilters: filters}
}

func (f *Composed) Type() Kind { return KindComposed }

// IsNeutral reports whether every sub-filter is neutral.
func (f *Composed) IsNeutral() bool { return AllNeutral(f.SubFilters) }

func (f *Composed) CacheKey() string {
	keys := make([]string, 0, len(f.SubFilters))
	for _, s := range f.SubFilters {
		if s != nil {
			keys = append(keys, s.CacheKey())
		}
	}
	return string(KindComposed) + "(" + strings.Join(keys, ",") + ")"
}

// OutputSize folds the sub-filters' sizes.
func (f *Composed) OutputSize(width, height int) (int, int) {
	return Bounds(f.SubFilters, width, height)
}

func (f *Composed) ApplyCPU(st *CPUState) {
	for _, s := range Active(f.SubFilters) {
		s.ApplyCPU(st)
	}
}

func (f *Composed) GPUPasses(width, height int) []Pass {
	return f.PooledGPUPasses(nil, width, height)
}

// PooledGPUPasses concatenates the sub-filters' passes, threading the size
// through them.
func (f *Composed) PooledGPUPasses(pool *resource.Pool, width, height int) []Pass {
	var passes []Pass
	for _, s := range Active(f.SubFilters) {
		for _, p := range Passes(s, pool, width, height) {
			width, height = p.OutputSize(width, height)
			passes = append(passes, p)
		}
	}
	return passes
}

// MarshalJSON writes sub-filters with their type tags.
func (f *Composed) MarshalJSON() ([]byte, error) {
	subs := make([]json.RawMessage, 0, len(f.SubFilters))
	for _, s := range f.SubFilters {
		b, err := Marshal(s)
		if err != nil {
			return nil, err
		}
		subs = append(subs, b)
	}
	return json.Marshal(struct {
		SubFilters []json.RawMessage `json:"subFilters"`
	}{subs})
}
