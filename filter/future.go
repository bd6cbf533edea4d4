// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"context"
	"sync"
)

// Future is the pending result of Decode.
type Future struct {
	done   chan struct{}
	once   sync.Once
	cancel context.CancelFunc

	filter Filter
	err    error
}

func newFuture(cancel context.CancelFunc) *Future {
	return &Future{done: make(chan struct{}), cancel: cancel}
}

func (fu *Future) resolve(f Filter, err error) {
	fu.once.Do(func() {
		fu.filter, fu.err = f, err
		close(fu.done)
	})
}

// Done returns a channel closed once the result is available.
func (fu *Future) Done() <-chan struct{} { return fu.done }

// Cancel aborts a pending decode. The future then resolves with an error
// wrapping context.Canceled. Cancel has no effect on a resolved future.
func (fu *Future) Cancel() { fu.cancel() }

// Wait blocks until the decode finishes.
func (fu *Future) Wait() (Filter, error) {
	<-fu.done
	return fu.filter, fu.err
}
