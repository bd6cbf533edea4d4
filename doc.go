// Package ggfx applies chains of visual-effect filters to raster images on
// a CPU or WebGPU compute backend with numerically consistent results.
//
// # Overview
//
// Filters live in package filter: eighteen kinds covering color
// adjustment, color matrices, convolution, resizing and blending, each with
// a CPU algorithm and a GPU compute description. A Pipeline runs a chain
// of filters on the backend chosen by a Selector.
//
// # Quick Start
//
//	sel := ggfx.NewSelector()
//	defer sel.Close()
//	p := ggfx.NewPipeline(sel)
//
//	out, err := p.Apply([]filter.Filter{
//		filter.NewBrightness(0.1),
//		filter.NewSepia(),
//	}, img)
//
// # Backend Selection
//
// The Selector tries the GPU backend first and falls back to the CPU
// backend when no device is available or the shaders do not compile. The
// choice is made once, on first use, and is observable through
// Selector.Selection. When a GPU run fails after submission the Pipeline
// demotes the Selector to the CPU permanently and reruns the chain there.
//
//	sel := ggfx.NewSelector(ggfx.WithCPUOnly())
//
// A host that already owns a GPU device shares it:
//
//	sel := ggfx.NewSelector(ggfx.WithDeviceProvider(app))
//
// # Logging
//
// ggfx is silent by default. SetLogger enables structured logging through
// log/slog for the package and its backends.
package ggfx
