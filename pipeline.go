// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ggfx

import (
	"errors"
	"image"
	"image/draw"

	"github.com/gogpu/ggfx/backend"
	"github.com/gogpu/ggfx/filter"
)

// Pipeline runs filter chains on the backend of a Selector.
type Pipeline struct {
	sel *Selector
}

// NewPipeline creates a pipeline on sel. A nil sel creates a new Selector;
// release it with p.Selector().Close().
func NewPipeline(sel *Selector) *Pipeline {
	if sel == nil {
		sel = NewSelector()
	}
	return &Pipeline{sel: sel}
}

// Selector returns the pipeline's selector.
func (p *Pipeline) Selector() *Selector { return p.sel }

// ApplyFilters draws src into a width x height surface, runs filters in
// order and writes the result into dst at dst.Bounds().Min.
//
// If the GPU backend fails, the selector is demoted to the CPU and the
// chain is run again there. A chain the GPU backend reports as
// unsupported runs on the CPU for this call only. Invalid input is
// returned without demotion.
func (p *Pipeline) ApplyFilters(filters []filter.Filter, src image.Image, width, height int, dst draw.Image) error {
	if p.sel.isClosed() {
		return ErrClosed
	}
	b := p.sel.Backend()
	err := b.ApplyFilters(filters, src, width, height, dst)
	if err == nil || errors.Is(err, backend.ErrInvalidInput) || b.Name() == backend.NameCPU {
		return err
	}

	if errors.Is(err, backend.ErrUnsupported) {
		slogger().Debug("ggfx: chain unsupported, running on CPU", "backend", b.Name(), "reason", err)
		cb, cerr := p.sel.cpuBackend()
		if cerr != nil {
			return cerr
		}
		return cb.ApplyFilters(filters, src, width, height, dst)
	}

	// Another caller may have demoted the selector while this run failed.
	if cur := p.sel.Backend(); cur == b {
		p.sel.Demote(err)
	}
	if p.sel.isClosed() {
		return ErrClosed
	}
	return p.sel.Backend().ApplyFilters(filters, src, width, height, dst)
}

// Apply runs filters over src and returns a new image sized by the chain.
func (p *Pipeline) Apply(filters []filter.Filter, src image.Image) (*image.NRGBA, error) {
	if src == nil {
		return nil, errors.Join(backend.ErrInvalidInput, errors.New("nil source"))
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	ow, oh := filter.Bounds(filters, w, h)
	dst := image.NewNRGBA(image.Rect(0, 0, ow, oh))
	if err := p.ApplyFilters(filters, src, w, h, dst); err != nil {
		return nil, err
	}
	return dst, nil
}
