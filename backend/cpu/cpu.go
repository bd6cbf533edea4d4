// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cpu

import (
	"image"
	"image/draw"
	"log/slog"
	"sync"

	"github.com/gogpu/ggfx/backend"
	"github.com/gogpu/ggfx/filter"
	"github.com/gogpu/ggfx/resource"
)

func init() {
	backend.Register(backend.NameCPU, func() (backend.Backend, error) {
		return New(), nil
	})
}

// rasterKind is the pool kind of the input raster.
const rasterKind = "cpu:raster"

// Option configures a Backend.
type Option func(*options)

type options struct {
	capacity int
}

// WithPoolCapacity bounds the number of pooled surfaces.
func WithPoolCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// Backend runs filter chains on the CPU.
type Backend struct {
	mu        sync.Mutex
	resources *resource.Pool
	closed    bool
}

// New creates a CPU backend.
func New(opts ...Option) *Backend {
	o := options{capacity: resource.DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	return &Backend{resources: resource.NewPool(o.capacity)}
}

// Name returns "cpu".
func (b *Backend) Name() string { return backend.NameCPU }

// Resources returns the pool holding the backend's scratch surfaces.
func (b *Backend) Resources() *resource.Pool { return b.resources }

// SetLogger sets the package logger.
func (b *Backend) SetLogger(l *slog.Logger) { SetLogger(l) }

// ApplyFilters runs filters over src and writes the result into dst.
func (b *Backend) ApplyFilters(filters []filter.Filter, src image.Image, width, height int, dst draw.Image) error {
	if err := backend.ValidateInput(src, width, height, dst); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return backend.ErrClosed
	}

	raster := backend.Raster(b.resources, rasterKind, src, width, height)
	st := filter.NewCPUState(raster.Pix, width, height, b.resources)

	active := filter.Active(filters)
	for _, f := range active {
		f.ApplyCPU(st)
	}
	slogger().Debug("cpu: filters applied",
		"filters", len(active), "skipped", len(filters)-len(active),
		"in", [2]int{width, height}, "out", [2]int{st.Width, st.Height})

	backend.WriteResult(dst, st.Pix, st.Width, st.Height)
	return nil
}

// Close releases pooled surfaces. The backend must not be used afterwards.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.resources.Clear()
}
