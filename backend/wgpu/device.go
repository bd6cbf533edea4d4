// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device errors.
var (
	// ErrNoAdapter is returned when no GPU adapter can be opened.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter")

	// ErrProviderNotHAL is returned when a device provider does not expose
	// HAL device and queue handles.
	ErrProviderNotHAL = errors.New("wgpu: provider does not expose HAL types")
)

// DefaultFenceTimeout bounds the wait for one filter run.
const DefaultFenceTimeout = 5 * time.Second

// Option configures a Backend.
type Option func(*options)

type options struct {
	provider     gpucontext.DeviceProvider
	device       hal.Device
	queue        hal.Queue
	capacity     int
	fenceTimeout time.Duration
}

// WithProvider shares the device of a host provider. The provider must
// implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue.
func WithProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithDevice uses an explicit HAL device and queue. The backend does not
// destroy them.
func WithDevice(device hal.Device, queue hal.Queue) Option {
	return func(o *options) {
		o.device = device
		o.queue = queue
	}
}

// WithPoolCapacity bounds the number of pooled GPU buffers.
func WithPoolCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithFenceTimeout sets how long a run waits for the GPU.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fenceTimeout = d
		}
	}
}

// gpuDevice is an acquired device. instance is nil for shared devices.
type gpuDevice struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	adapter  string
	external bool
}

func (d *gpuDevice) destroy() {
	if d.external {
		d.device = nil
		d.queue = nil
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
}

// acquireDevice picks the device source in order: explicit device,
// provider, own Vulkan device.
func acquireDevice(o *options) (*gpuDevice, error) {
	switch {
	case o.device != nil:
		if o.queue == nil {
			return nil, fmt.Errorf("wgpu: device given without queue")
		}
		return &gpuDevice{device: o.device, queue: o.queue, adapter: "external", external: true}, nil
	case o.provider != nil:
		return providerDevice(o.provider)
	default:
		return openVulkan()
	}
}

func providerDevice(provider gpucontext.DeviceProvider) (*gpuDevice, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProviderNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProviderNotHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProviderNotHAL)
	}
	return &gpuDevice{device: device, queue: queue, adapter: "shared", external: true}, nil
}

// openVulkan creates a standalone Vulkan device for compute-only use.
func openVulkan() (*gpuDevice, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoAdapter)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrNoAdapter, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", ErrNoAdapter, err)
	}
	slogger().Info("wgpu: GPU initialized (standalone)", "adapter", selected.Info.Name)
	return &gpuDevice{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		adapter:  selected.Info.Name,
	}, nil
}
