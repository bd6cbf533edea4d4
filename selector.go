// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ggfx

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/ggfx/backend"
	"github.com/gogpu/ggfx/backend/cpu"
)

// Backend executes filter chains. See package backend.
type Backend = backend.Backend

// ErrClosed is returned by a closed Selector or Pipeline.
var ErrClosed = errors.New("ggfx: closed")

// Selection records which backend a Selector chose.
type Selection struct {
	// Backend is the active backend.
	Backend Backend

	// Fallback is true when a preferred backend was unavailable or has
	// been demoted.
	Fallback bool

	// Reason is the failure that caused the fallback, nil otherwise.
	Reason error
}

// Selector picks the backend once, on first use, and owns it. A host
// creates one Selector and shares it between pipelines.
//
// Selector is safe for concurrent use.
type Selector struct {
	opts options
	once sync.Once

	mu     sync.Mutex
	sel    Selection
	spare  Backend // CPU backend for chains the active backend cannot run
	closed bool
}

// NewSelector creates a selector. No backend is created until the first
// call to Backend.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// Backend returns the active backend, selecting it on the first call.
func (s *Selector) Backend() Backend {
	s.once.Do(s.selectBackend)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Backend
}

// Selection returns the selection made by the selector, selecting first if
// needed.
func (s *Selector) Selection() Selection {
	s.once.Do(s.selectBackend)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// cpuBackend returns the CPU backend used for single calls the active
// backend cannot run, creating it on first use.
func (s *Selector) cpuBackend() (Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.sel.Backend != nil && s.sel.Backend.Name() == backend.NameCPU {
		return s.sel.Backend, nil
	}
	if s.spare == nil {
		s.spare = cpu.New()
		propagateLogger(s.spare, Logger())
	}
	return s.spare, nil
}

// candidate is one backend the selector may try.
type candidate struct {
	name    string
	factory backend.Factory
}

func (s *Selector) candidates() []candidate {
	if s.opts.cpuOnly {
		return nil
	}
	var out []candidate
	if s.opts.gpu != nil {
		out = append(out, candidate{backend.NameWGPU, s.opts.gpu})
	}
	names := backend.Available()
	if s.opts.preferred != "" {
		names = []string{s.opts.preferred}
	}
	for _, name := range names {
		if name == backend.NameCPU || (s.opts.gpu != nil && name == backend.NameWGPU) {
			continue
		}
		out = append(out, candidate{name, func() (backend.Backend, error) { return backend.Get(name) }})
	}
	return out
}

func (s *Selector) selectBackend() {
	var reasons []error
	var chosen Backend
	for _, c := range s.candidates() {
		b, err := c.factory()
		if err == nil && b == nil {
			err = fmt.Errorf("%w: %s returned no backend", backend.ErrBackendNotAvailable, c.name)
		}
		if err != nil {
			reasons = append(reasons, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		chosen = b
		break
	}

	sel := Selection{Backend: chosen, Fallback: len(reasons) > 0, Reason: errors.Join(reasons...)}
	if chosen == nil {
		sel.Backend = cpu.New()
	}
	propagateLogger(sel.Backend, Logger())

	s.mu.Lock()
	s.sel = sel
	s.mu.Unlock()

	if sel.Fallback {
		slogger().Warn("ggfx: preferred backend unavailable", "using", sel.Backend.Name(), "reason", sel.Reason)
	}
	slogger().Info("ggfx: backend selected", "backend", sel.Backend.Name(), "fallback", sel.Fallback)
}

// Demote permanently switches the selector to the CPU backend after a
// GPU failure. The failed backend is closed. Demoting a selector already
// on the CPU does nothing.
func (s *Selector) Demote(reason error) {
	s.once.Do(s.selectBackend)

	s.mu.Lock()
	old := s.sel.Backend
	if s.closed || old == nil || old.Name() == backend.NameCPU {
		s.mu.Unlock()
		return
	}
	next := s.spare
	if next == nil {
		next = cpu.New()
		propagateLogger(next, Logger())
	}
	s.spare = nil
	s.sel = Selection{Backend: next, Fallback: true, Reason: reason}
	s.mu.Unlock()

	old.Close()
	slogger().Warn("ggfx: backend demoted to CPU", "from", old.Name(), "reason", reason)
}

// Close releases the active backend. The selector must not be used after
// Close is called.
func (s *Selector) Close() {
	// Prevent a later selection from creating a backend.
	s.once.Do(func() {})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.sel.Backend != nil {
		s.sel.Backend.Close()
	}
	if s.spare != nil {
		s.spare.Close()
		s.spare = nil
	}
}

// isClosed reports whether Close has been called.
func (s *Selector) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
