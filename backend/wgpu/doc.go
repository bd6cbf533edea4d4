// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu provides the WebGPU compute filter backend.
//
// Every filter contributes one or more full-surface compute passes. Pixels
// live in storage buffers, one packed RGBA8 value per u32, and successive
// passes ping-pong between two buffers inside a single command buffer. The
// result is copied to a staging buffer and read back after one fence wait.
//
// # Device Acquisition
//
// By default the backend opens its own Vulkan device. A host that already
// owns a device shares it through WithProvider (any value exposing
// HalDevice() and HalQueue(), such as a gogpu DeviceProvider) or passes it
// explicitly through WithDevice. Shared devices are never destroyed by the
// backend.
//
// # Programs
//
// WGSL programs are compiled to SPIR-V with naga and turned into compute
// pipelines on first use. Pipelines are cached for the lifetime of the
// backend under the pass key; see ProgramCache.
//
// # Failures
//
// New fails when no device can be acquired or the base program does not
// compile. Errors raised while a command buffer is submitted, awaited or
// read back wrap ErrDeviceLost; callers are expected to stop using the
// backend and rerun the chain on the CPU.
package wgpu
