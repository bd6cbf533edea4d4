// Package backend defines the execution backend abstraction for ggfx filter
// pipelines.
//
// A backend runs an ordered filter chain over a source image and writes the
// result into a destination. Two implementations exist:
//
//   - backend/cpu runs every filter's CPU algorithm over an RGBA byte buffer
//   - backend/wgpu runs every filter's compute passes on a WebGPU device
//
// # Backend Registration
//
// Backends register a factory from their init() functions:
//
//	import _ "github.com/gogpu/ggfx/backend/cpu"
//
// # Backend Selection
//
// Factories are tried in priority order (wgpu, then cpu). The root ggfx
// Selector performs the selection once and records whether it fell back:
//
//	b, err := backend.Get("cpu")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
// Registering factories is global; backend instances are not. Each call to
// a factory creates an independent backend owning its own resources.
package backend
