// Package cpu provides the CPU filter backend.
//
// The backend draws the source image into a straight-alpha RGBA raster and
// runs every filter's CPU algorithm over it in order. It has no external
// requirements and is always available, which makes it the fallback for
// the GPU backend. Results of the same chain are bit-for-bit reproducible.
//
// Importing the package registers it under the name "cpu":
//
//	import _ "github.com/gogpu/ggfx/backend/cpu"
package cpu
