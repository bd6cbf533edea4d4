package wgpu

import (
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/ggfx/backend"
)

// compileWGSL compiles WGSL source to SPIR-V words. Compile failures wrap
// backend.ErrUnsupported.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: compile shader: %w", backend.ErrUnsupported, err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V size %d is not a multiple of 4", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
