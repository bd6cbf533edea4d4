package wgpu

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggfx/resource"
)

// PipelineState is the state threaded through the passes of one run.
//
// Source holds the input of the next pass and Target receives its output;
// they swap after every pass. Original holds the unfiltered input when a
// pass of the run reads it, and a placeholder otherwise. It is never
// written after upload.
type PipelineState struct {
	Device hal.Device
	Queue  hal.Queue

	Source   hal.Buffer
	Target   hal.Buffer
	Original hal.Buffer

	Programs  *ProgramCache
	Resources *resource.Pool

	// Width and Height are the dimensions of the pixels in Source.
	Width, Height int

	// PassesRemaining counts passes not yet encoded.
	PassesRemaining int
}

// advance records that a pass producing width x height pixels was encoded.
func (s *PipelineState) advance(width, height int) {
	s.Source, s.Target = s.Target, s.Source
	s.Width, s.Height = width, height
	s.PassesRemaining--
}
