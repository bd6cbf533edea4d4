// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggfx/backend"
	"github.com/gogpu/ggfx/filter"
	"github.com/gogpu/ggfx/resource"
)

func init() {
	backend.Register(backend.NameWGPU, func() (backend.Backend, error) {
		b, err := New()
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}

// Run errors.
var (
	// ErrDeviceLost wraps failures of a submitted run. The backend should
	// not be used again.
	ErrDeviceLost = errors.New("wgpu: device lost")

	// ErrTooManyUniforms is returned for a pass carrying more than
	// filter.MaxUniforms parameters.
	ErrTooManyUniforms = fmt.Errorf("wgpu: too many pass uniforms: %w", backend.ErrUnsupported)
)

// runBuffers is the number of pooled buffers every run holds: two
// ping-pong buffers, the original, the empty aux placeholder and staging.
const runBuffers = 5

// minPoolCapacity keeps every buffer of one run resident in the pool.
const minPoolCapacity = 8

// Backend runs filter chains as WebGPU compute passes.
type Backend struct {
	mu sync.Mutex

	dev       *gpuDevice
	layout    *bindingLayout
	programs  *ProgramCache
	resources *resource.Pool
	timeout   time.Duration
	closed    bool
}

// New acquires a device and prepares the shared program layout. It fails
// when no device is available or the base program cannot be compiled.
func New(opts ...Option) (*Backend, error) {
	o := options{capacity: resource.DefaultCapacity, fenceTimeout: DefaultFenceTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	dev, err := acquireDevice(&o)
	if err != nil {
		return nil, err
	}
	layout, err := newBindingLayout(dev.device)
	if err != nil {
		dev.destroy()
		return nil, fmt.Errorf("wgpu: %w", err)
	}
	programs, err := newProgramCache(dev.device, layout)
	if err != nil {
		layout.destroy(dev.device)
		dev.destroy()
		return nil, err
	}
	copyPass := filter.CopyPass()
	if _, err := programs.GetOrCreate(copyPass.Key, copyPass.Source); err != nil {
		layout.destroy(dev.device)
		dev.destroy()
		return nil, err
	}

	return &Backend{
		dev:       dev,
		layout:    layout,
		programs:  programs,
		resources: resource.NewPool(max(o.capacity, minPoolCapacity)),
		timeout:   o.fenceTimeout,
	}, nil
}

// Name returns "wgpu".
func (b *Backend) Name() string { return backend.NameWGPU }

// Adapter returns the adapter name, or "shared"/"external" for devices the
// backend does not own.
func (b *Backend) Adapter() string { return b.dev.adapter }

// Programs returns the program cache.
func (b *Backend) Programs() *ProgramCache { return b.programs }

// Resources returns the pool holding the backend's buffers.
func (b *Backend) Resources() *resource.Pool { return b.resources }

// SetLogger sets the package logger.
func (b *Backend) SetLogger(l *slog.Logger) { SetLogger(l) }

// plannedPass is a pass with its input and output sizes resolved.
type plannedPass struct {
	filter.Pass
	program    *Program
	inW, inH   int
	outW, outH int
	filterType filter.Kind
}

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

	raster := backend.Raster(b.resources, kindRaster, src, width, height)
	plan, maxW, maxH, err := b.plan(filter.Active(filters), width, height)
	if err != nil {
		return err
	}
	if len(plan) == 0 {
		backend.WriteResult(dst, raster.Pix, width, height)
		return nil
	}

	last := plan[len(plan)-1]
	out, err := b.run(plan, raster, maxW, maxH)
	if err != nil {
		return err
	}
	backend.WriteResult(dst, out, last.outW, last.outH)
	return nil
}

// plan expands filters into passes, resolves their sizes and compiles
// their programs. It also returns the largest width and height any pass
// reads or writes.
func (b *Backend) plan(filters []filter.Filter, width, height int) ([]plannedPass, int, int, error) {
	var plan []plannedPass
	maxW, maxH := width, height
	w, h := width, height
	for _, f := range filters {
		for _, p := range filter.Passes(f, b.resources, w, h) {
			if len(p.Uniforms) > filter.MaxUniforms {
				return nil, 0, 0, fmt.Errorf("%w: %s has %d", ErrTooManyUniforms, p.Key, len(p.Uniforms))
			}
			prog, err := b.programs.GetOrCreate(p.Key, p.Source)
			if err != nil {
				return nil, 0, 0, err
			}
			outW, outH := p.OutputSize(w, h)
			plan = append(plan, plannedPass{
				Pass: p, program: prog,
				inW: w, inH: h, outW: outW, outH: outH,
				filterType: f.Type(),
			})
			w, h = outW, outH
			maxW, maxH = max(maxW, w), max(maxH, h)
		}
	}
	return plan, maxW, maxH, nil
}

// runResources tracks per-run GPU objects for cleanup.
type runResources struct {
	device     hal.Device
	buffers    []*gpuBuffer
	bindGroups []hal.BindGroup
	cmdBuf     hal.CommandBuffer
	fence      hal.Fence
}

func (r *runResources) cleanup() {
	if r.fence != nil {
		r.device.DestroyFence(r.fence)
	}
	if r.cmdBuf != nil {
		r.device.FreeCommandBuffer(r.cmdBuf)
	}
	for _, g := range r.bindGroups {
		r.device.DestroyBindGroup(g)
	}
	for _, buf := range r.buffers {
		buf.Release()
	}
}

// run encodes every pass into one command buffer, submits it and reads the
// final pixels back.
func (b *Backend) run(plan []plannedPass, raster *image.NRGBA, maxW, maxH int) ([]byte, error) {
	device, queue := b.dev.device, b.dev.queue
	first, last := plan[0], plan[len(plan)-1]

	pingA, err := pooledBuffer(b.resources, device, kindPingPongA, maxW, maxH, usagePixels)
	if err != nil {
		return nil, err
	}
	pingB, err := pooledBuffer(b.resources, device, kindPingPongB, maxW, maxH, usagePixels)
	if err != nil {
		return nil, err
	}
	noAux, err := pooledBuffer(b.resources, device, kindNoAux, 1, 1, usageInput)
	if err != nil {
		return nil, err
	}
	staging, err := pooledBuffer(b.resources, device, kindStaging, last.outW, last.outH, usageStaging)
	if err != nil {
		return nil, err
	}

	pixels := packedPixels(raster)
	queue.WriteBuffer(pingA.buf, 0, pixels)

	original := noAux
	if usesOriginal(plan) {
		original, err = pooledBuffer(b.resources, device, kindOriginal, first.inW, first.inH, usageInput)
		if err != nil {
			return nil, err
		}
		queue.WriteBuffer(original.buf, 0, pixels)
	}

	st := &PipelineState{
		Device:          device,
		Queue:           queue,
		Source:          pingA.buf,
		Target:          pingB.buf,
		Original:        original.buf,
		Programs:        b.programs,
		Resources:       b.resources,
		Width:           first.inW,
		Height:          first.inH,
		PassesRemaining: len(plan),
	}

	res := &runResources{device: device}
	defer res.cleanup()

	if err := b.encode(st, res, plan, noAux.buf, staging.buf); err != nil {
		return nil, err
	}
	if err := b.submitAndWait(res); err != nil {
		return nil, err
	}

	readback := make([]byte, pixelBytes(st.Width, st.Height))
	if err := queue.ReadBuffer(staging.buf, 0, readback); err != nil {
		return nil, fmt.Errorf("%w: readback: %w", ErrDeviceLost, err)
	}
	return readback, nil
}

// encode records one compute pass per planned pass followed by the copy of
// the result into staging.
func (b *Backend) encode(st *PipelineState, res *runResources, plan []plannedPass, noAux, staging hal.Buffer) error {
	device := st.Device
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ggfx_filters"})
	if err != nil {
		return fmt.Errorf("%w: create command encoder: %w", ErrDeviceLost, err)
	}
	if err := encoder.BeginEncoding("ggfx_filters"); err != nil {
		return fmt.Errorf("%w: begin encoding: %w", ErrDeviceLost, err)
	}

	auxSlot := 0
	for _, p := range plan {
		aux := noAux
		if p.Aux != nil {
			buf, err := b.auxBuffer(st, res, auxSlot, p.Aux)
			if err != nil {
				encoder.DiscardEncoding()
				return err
			}
			aux = buf
			auxSlot++
		}
		bg, err := b.bindPass(st, res, p, aux)
		if err != nil {
			encoder.DiscardEncoding()
			return err
		}

		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: p.Key})
		pass.SetPipeline(p.program.pipeline)
		pass.SetBindGroup(0, bg, nil)
		pass.Dispatch(workgroups(p.outW), workgroups(p.outH), 1)
		pass.End()

		st.advance(p.outW, p.outH)
		slogger().Debug("wgpu: pass encoded",
			"filter", string(p.filterType),
			"key", p.Key,
			"in", [2]int{p.inW, p.inH},
			"out", [2]int{p.outW, p.outH},
			"remaining", st.PassesRemaining)
	}

	encoder.CopyBufferToBuffer(st.Source, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: pixelBytes(st.Width, st.Height)},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("%w: end encoding: %w", ErrDeviceLost, err)
	}
	res.cmdBuf = cmdBuf
	return nil
}

// usesOriginal reports whether any pass of plan reads the unfiltered input.
func usesOriginal(plan []plannedPass) bool {
	for _, p := range plan {
		if p.UsesOriginal {
			return true
		}
	}
	return false
}

// auxBuffer returns a buffer holding surface. The first surfaces of a run
// use pooled buffers, uploaded only when the surface changes; once the
// pool cannot hold more buffers of the run, the rest live for this run
// only.
func (b *Backend) auxBuffer(st *PipelineState, res *runResources, slot int, surface *image.NRGBA) (hal.Buffer, error) {
	w, h := surface.Rect.Dx(), surface.Rect.Dy()
	if slot < b.resources.Capacity()-runBuffers {
		kind := fmt.Sprintf("%s-%d", kindAux, slot)
		pb, err := pooledBuffer(b.resources, st.Device, kind, w, h, usageInput)
		if err != nil {
			return nil, err
		}
		if pb.content != surface {
			st.Queue.WriteBuffer(pb.buf, 0, packedPixels(surface))
			pb.content = surface
		}
		return pb.buf, nil
	}

	tb, err := createBuffer(st.Device, fmt.Sprintf("%s-%d", kindAux, slot), pixelBytes(w, h), usageInput)
	if err != nil {
		return nil, err
	}
	res.buffers = append(res.buffers, tb)
	st.Queue.WriteBuffer(tb.buf, 0, packedPixels(surface))
	return tb.buf, nil
}

// bindPass uploads the pass parameters and creates its bind group.
func (b *Backend) bindPass(st *PipelineState, res *runResources, p plannedPass, aux hal.Buffer) (hal.BindGroup, error) {
	device := st.Device
	data := paramBytes(p.inW, p.inH, p.outW, p.outH, p.Uniforms)
	params, err := createBuffer(device, p.Key+"_params", uint64(len(data)), usageInput)
	if err != nil {
		return nil, err
	}
	res.buffers = append(res.buffers, params)
	st.Queue.WriteBuffer(params.buf, 0, data)

	bind := func(binding uint32, buf hal.Buffer) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding:  binding,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: 0},
		}
	}
	bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  p.Key + "_bg",
		Layout: b.layout.group,
		Entries: []gputypes.BindGroupEntry{
			bind(bindingParams, params.buf),
			bind(bindingSource, st.Source),
			bind(bindingTarget, st.Target),
			bind(bindingOriginal, st.Original),
			bind(bindingAux, aux),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group for %s: %w", p.Key, err)
	}
	res.bindGroups = append(res.bindGroups, bg)
	return bg, nil
}

// submitAndWait submits the command buffer and waits for GPU completion.
func (b *Backend) submitAndWait(res *runResources) error {
	fence, err := b.dev.device.CreateFence()
	if err != nil {
		return fmt.Errorf("%w: create fence: %w", ErrDeviceLost, err)
	}
	res.fence = fence

	if err := b.dev.queue.Submit([]hal.CommandBuffer{res.cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("%w: submit: %w", ErrDeviceLost, err)
	}
	ok, err := b.dev.device.Wait(fence, 1, b.timeout)
	if err != nil {
		return fmt.Errorf("%w: wait for GPU: %w", ErrDeviceLost, err)
	}
	if !ok {
		return fmt.Errorf("%w: GPU timeout after %v", ErrDeviceLost, b.timeout)
	}
	return nil
}

// workgroups returns the dispatch count covering n pixels.
func workgroups(n int) uint32 {
	return uint32((n + filter.WorkgroupSize - 1) / filter.WorkgroupSize) //nolint:gosec // n is positive
}

// Close releases programs, pooled buffers and the device when owned.
// The backend must not be used after Close is called.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true

	b.resources.Clear()
	b.programs.DestroyAll()
	b.layout.destroy(b.dev.device)
	b.dev.destroy()
}
