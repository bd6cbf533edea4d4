// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package resource provides the scratch-surface pool owned by a filter backend.
//
// Filters and backends store reusable scratch surfaces (CPU rasters, GPU
// buffers, resized blend images) under typed keys. A key always carries the
// surface dimensions, so a surface cached for one image size is never handed
// out for another:
//
//	buf := resource.Obtain(pool, resource.NewKey("cpu:raster", w, h), func() *image.NRGBA {
//	    return image.NewNRGBA(image.Rect(0, 0, w, h))
//	})
//
// # Invalidation
//
// The pool is bounded: when more than Capacity entries are stored, the least
// recently used entries are evicted. Evicted, deleted, invalidated and cleared
// values that implement [Releaser] are released. Owners call [Pool.Clear] when
// they shut down. Entries of one kind can be dropped explicitly with
// [Pool.Invalidate].
package resource

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultCapacity is the default maximum number of pooled entries.
const DefaultCapacity = 64

// Key identifies a pooled scratch surface.
type Key struct {
	// Kind is the consumer-chosen surface kind, e.g. "cpu:raster" or "blendImage".
	Kind string

	// Width and Height are the surface dimensions in pixels.
	Width, Height int
}

// NewKey creates a key for a surface of the given kind and size.
func NewKey(kind string, width, height int) Key {
	return Key{Kind: kind, Width: width, Height: height}
}

// String returns the canonical "kind:WxH" form of the key.
func (k Key) String() string {
	return fmt.Sprintf("%s:%dx%d", k.Kind, k.Width, k.Height)
}

// Releaser is implemented by pooled values holding resources outside the Go
// heap (GPU buffers). Release is called exactly once when the value leaves
// the pool.
type Releaser interface {
	Release()
}

// Stats contains pool statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the maximum number of entries.
	Capacity int
	// Hits is the number of successful lookups.
	Hits uint64
	// Misses is the number of failed lookups.
	Misses uint64
	// Evictions is the number of entries evicted by the LRU bound.
	Evictions uint64
}

// Pool is an LRU-bounded store of reusable scratch surfaces.
//
// A Pool belongs to one backend instance. It is safe for concurrent use,
// although filter pipelines only touch it from the goroutine running the
// pipeline.
type Pool struct {
	mu       sync.Mutex
	entries  map[Key]*poolEntry
	lru      lruList
	capacity int

	hits      uint64
	misses    uint64
	evictions uint64
}

type poolEntry struct {
	value any
	node  *lruNode
}

// NewPool creates a pool holding at most capacity entries.
// If capacity <= 0, DefaultCapacity is used.
func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Pool{
		entries:  make(map[Key]*poolEntry),
		capacity: capacity,
	}
}

// Get returns the value stored under key.
func (p *Pool) Get(key Key) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[key]
	if !ok {
		p.misses++
		return nil, false
	}
	p.hits++
	p.lru.moveToFront(e.node)
	return e.value, true
}

// Put stores value under key, releasing any value it replaces. A value must
// not be stored twice under the same key.
func (p *Pool) Put(key Key, value any) {
	var released []any

	p.mu.Lock()
	if e, ok := p.entries[key]; ok {
		released = append(released, e.value)
		e.value = value
		p.lru.moveToFront(e.node)
	} else {
		p.entries[key] = &poolEntry{value: value, node: p.lru.pushFront(key)}
		released = p.evictLocked(released)
	}
	p.mu.Unlock()

	release(released)
}

// Delete removes and releases the value stored under key.
// Returns true if an entry was removed.
func (p *Pool) Delete(key Key) bool {
	p.mu.Lock()
	e, ok := p.entries[key]
	if ok {
		p.lru.remove(e.node)
		delete(p.entries, key)
	}
	p.mu.Unlock()

	if ok {
		release([]any{e.value})
	}
	return ok
}

// Invalidate removes every entry whose kind equals kind, or starts with
// kind followed by ':'. It returns the number of removed entries.
func (p *Pool) Invalidate(kind string) int {
	var released []any

	p.mu.Lock()
	for key, e := range p.entries {
		if key.Kind == kind || strings.HasPrefix(key.Kind, kind+":") {
			p.lru.remove(e.node)
			delete(p.entries, key)
			released = append(released, e.value)
		}
	}
	p.mu.Unlock()

	release(released)
	return len(released)
}

// Clear removes and releases all entries.
func (p *Pool) Clear() {
	p.mu.Lock()
	released := make([]any, 0, len(p.entries))
	for _, e := range p.entries {
		released = append(released, e.value)
	}
	p.entries = make(map[Key]*poolEntry)
	p.lru.clear()
	p.mu.Unlock()

	release(released)
}

// Len returns the number of pooled entries.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Capacity returns the maximum number of pooled entries.
func (p *Pool) Capacity() int {
	return p.capacity
}

// Stats returns pool statistics.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Len:       len(p.entries),
		Capacity:  p.capacity,
		Hits:      p.hits,
		Misses:    p.misses,
		Evictions: p.evictions,
	}
}

// evictLocked drops least recently used entries until the pool fits its
// capacity. Caller must hold p.mu.
func (p *Pool) evictLocked(released []any) []any {
	for len(p.entries) > p.capacity {
		node := p.lru.oldest()
		if node == nil {
			break
		}
		e := p.entries[node.key]
		p.lru.remove(node)
		delete(p.entries, node.key)
		p.evictions++
		released = append(released, e.value)
	}
	return released
}

func release(values []any) {
	for _, v := range values {
		if r, ok := v.(Releaser); ok {
			r.Release()
		}
	}
}

// Obtain returns the value of type T stored under key, creating and storing
// it with create when absent or when the stored value has another type.
func Obtain[T any](p *Pool, key Key, create func() T) T {
	if v, ok := p.Get(key); ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	t := create()
	p.Put(key, t)
	return t
}
