package ggfx

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/ggfx/backend"
	"github.com/gogpu/ggfx/backend/wgpu"
)

// BackendAuto lets the Selector pick the backend.
const BackendAuto = "auto"

// Option configures a Selector.
//
// Example:
//
//	sel := ggfx.NewSelector(ggfx.WithCPUOnly())
type Option func(*options)

type options struct {
	cpuOnly   bool
	preferred string
	gpu       backend.Factory
}

// WithCPUOnly skips the GPU backend entirely.
func WithCPUOnly() Option {
	return func(o *options) {
		o.cpuOnly = true
	}
}

// WithBackend prefers the registered backend with the given name. "auto"
// or "" restores the default order. The CPU backend remains the fallback.
func WithBackend(name string) Option {
	return func(o *options) {
		if name == BackendAuto {
			name = ""
		}
		o.preferred = name
		o.cpuOnly = name == backend.NameCPU
	}
}

// WithDeviceProvider runs the GPU backend on the device of a host
// provider. The provider must expose HalDevice() and HalQueue().
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return WithGPUFactory(func() (backend.Backend, error) {
		b, err := wgpu.New(wgpu.WithProvider(p))
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}

// WithGPUFactory replaces the factory used for the GPU backend.
func WithGPUFactory(f backend.Factory) Option {
	return func(o *options) {
		o.gpu = f
	}
}
