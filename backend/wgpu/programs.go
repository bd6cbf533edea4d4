// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Program cache errors.
var (
	// ErrNilDevice is returned when creating a cache without a device.
	ErrNilDevice = errors.New("wgpu: device is nil")

	// ErrEmptyProgram is returned for a pass without key or source.
	ErrEmptyProgram = errors.New("wgpu: program key or source is empty")
)

// Binding slots shared by every filter program.
const (
	bindingParams = iota
	bindingSource
	bindingTarget
	bindingOriginal
	bindingAux
	bindingCount
)

// bindingLayout is the bind group and pipeline layout shared by all
// programs.
type bindingLayout struct {
	group    hal.BindGroupLayout
	pipeline hal.PipelineLayout
}

func newBindingLayout(device hal.Device) (*bindingLayout, error) {
	storage := func(binding uint32, t gputypes.BufferBindingType) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: t},
		}
	}
	group, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "ggfx_filter_bgl",
		Entries: []gputypes.BindGroupLayoutEntry{
			storage(bindingParams, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(bindingSource, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(bindingTarget, gputypes.BufferBindingTypeStorage),
			storage(bindingOriginal, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(bindingAux, gputypes.BufferBindingTypeReadOnlyStorage),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}
	pipeline, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "ggfx_filter_pl",
		BindGroupLayouts: []hal.BindGroupLayout{group},
	})
	if err != nil {
		device.DestroyBindGroupLayout(group)
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	return &bindingLayout{group: group, pipeline: pipeline}, nil
}

func (l *bindingLayout) destroy(device hal.Device) {
	if l.pipeline != nil {
		device.DestroyPipelineLayout(l.pipeline)
		l.pipeline = nil
	}
	if l.group != nil {
		device.DestroyBindGroupLayout(l.group)
		l.group = nil
	}
}

// Program is a compiled filter program.
type Program struct {
	// Key is the cache key the program was compiled under.
	Key string

	module   hal.ShaderModule
	pipeline hal.ComputePipeline
}

// CacheStats reports program cache activity.
type CacheStats struct {
	Programs int
	Hits     uint64
	Misses   uint64
}

// ProgramCache compiles filter programs on first use and keeps them for the
// lifetime of the backend. Programs are never evicted.
//
// ProgramCache is safe for concurrent use. It uses RWMutex with
// double-check locking for efficient reads and safe writes.
type ProgramCache struct {
	mu       sync.RWMutex
	device   hal.Device
	layout   *bindingLayout
	programs map[string]*Program

	// hits and misses are read without the lock.
	hits   uint64
	misses uint64
}

// newProgramCache creates an empty cache sharing layout.
func newProgramCache(device hal.Device, layout *bindingLayout) (*ProgramCache, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	return &ProgramCache{
		device:   device,
		layout:   layout,
		programs: make(map[string]*Program),
	}, nil
}

// GetOrCreate returns the program cached under key, compiling source when
// the key is new. A failed compilation is not cached.
func (c *ProgramCache) GetOrCreate(key, source string) (*Program, error) {
	if key == "" || source == "" {
		return nil, ErrEmptyProgram
	}

	// Fast path: read lock
	c.mu.RLock()
	if p, ok := c.programs[key]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if p, ok := c.programs[key]; ok {
		atomic.AddUint64(&c.hits, 1)
		return p, nil
	}

	p, err := c.compile(key, source)
	if err != nil {
		return nil, fmt.Errorf("wgpu: program %q: %w", key, err)
	}
	c.programs[key] = p
	atomic.AddUint64(&c.misses, 1)

	slogger().Debug("wgpu: program compiled", "key", key, "shader_bytes", len(source))
	return p, nil
}

func (c *ProgramCache) compile(key, source string) (*Program, error) {
	code, err := compileWGSL(source)
	if err != nil {
		return nil, err
	}
	module, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  key,
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module: %w", err)
	}
	pipeline, err := c.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  key,
		Layout: c.layout.pipeline,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		c.device.DestroyShaderModule(module)
		return nil, fmt.Errorf("create compute pipeline: %w", err)
	}
	return &Program{Key: key, module: module, pipeline: pipeline}, nil
}

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

// Stats returns cache statistics.
func (c *ProgramCache) Stats() CacheStats {
	return CacheStats{
		Programs: c.Len(),
		Hits:     atomic.LoadUint64(&c.hits),
		Misses:   atomic.LoadUint64(&c.misses),
	}
}

// HitRate returns the fraction of lookups served from the cache.
//
// Returns 0.0 if no lookups have been made.
func (c *ProgramCache) HitRate() float64 {
	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// DestroyAll destroys every cached program and empties the cache.
func (c *ProgramCache) DestroyAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.programs {
		c.device.DestroyComputePipeline(p.pipeline)
		c.device.DestroyShaderModule(p.module)
	}
	c.programs = make(map[string]*Program)
	atomic.StoreUint64(&c.hits, 0)
	atomic.StoreUint64(&c.misses, 0)
}
