// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Serialization errors.
var (
	// ErrUnknownType is returned when decoding an object whose type tag is
	// not in the catalog.
	ErrUnknownType = errors.New("filter: unknown type")

	// ErrNilFilter is returned when marshaling a nil filter.
	ErrNilFilter = errors.New("filter: nil filter")
)

// defaults returns a filter of the given kind with default parameters.
// Decoded fields override them.
var defaults = map[Kind]func() Filter{
	KindBrightness:  func() Filter { return NewBrightness(0) },
	KindContrast:    func() Filter { return NewContrast(0) },
	KindSaturation:  func() Filter { return NewSaturation(0) },
	KindGamma:       func() Filter { return NewGamma(1, 1, 1) },
	KindColorMatrix: func() Filter { return NewColorMatrix(identityMatrix) },
	KindHueRotation: func() Filter { return NewHueRotation(0) },
	KindSepia:       func() Filter { return NewSepia() },
	KindConvolute: func() Filter {
		return NewConvolute([]float64{0, 0, 0, 0, 1, 0, 0, 0, 0}, false)
	},
	KindGrayscale:   func() Filter { return NewGrayscale(GrayscaleAverage) },
	KindInvert:      func() Filter { return NewInvert() },
	KindNoise:       func() Filter { return NewNoise(0) },
	KindPixelate:    func() Filter { return NewPixelate(1) },
	KindRemoveColor: func() Filter { return NewRemoveColor("#FFFFFF", 0.02) },
	KindResize:      func() Filter { return NewResize(1, 1) },
	KindVibrance:    func() Filter { return NewVibrance(0) },
	KindBlendColor: func() Filter {
		return NewBlendColor("#F95C63", BlendMultiply, 1)
	},
	KindBlendImage: func() Filter { return NewBlendImage(nil, BlendImageMultiply, 1) },
	KindComposed:   func() Filter { return NewComposed() },
}

// New returns a filter of the given kind with default parameters.
func New(kind Kind) (Filter, error) {
	mk, ok := defaults[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
	return mk(), nil
}

// Marshal encodes f as {"type": <tag>, ...fields}.
func Marshal(f Filter) ([]byte, error) {
	if f == nil {
		return nil, ErrNilFilter
	}
	body, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("filter: marshal %s: %w", f.Type(), err)
	}
	tag, err := json.Marshal(f.Type())
	if err != nil {
		return nil, fmt.Errorf("filter: marshal %s: %w", f.Type(), err)
	}
	var b bytes.Buffer
	b.WriteString(`{"type":`)
	b.Write(tag)
	if body = bytes.TrimSpace(body); len(body) > 2 {
		b.WriteByte(',')
		b.Write(body[1:])
	} else {
		b.WriteByte('}')
	}
	return b.Bytes(), nil
}

// MarshalList encodes filters as a JSON array.
func MarshalList(filters []Filter) ([]byte, error) {
	items := make([]json.RawMessage, 0, len(filters))
	for _, f := range filters {
		b, err := Marshal(f)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return json.Marshal(items)
}

// header is the part of a serialized filter shared by every kind.
type header struct {
	Type       Kind              `json:"type"`
	SubFilters []json.RawMessage `json:"subFilters"`
}

// needsLoad reports whether decoding data loads an external image.
func needsLoad(data []byte) (bool, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return false, fmt.Errorf("filter: decode: %w", err)
	}
	switch h.Type {
	case KindBlendImage:
		return true, nil
	case KindComposed:
		for _, sub := range h.SubFilters {
			load, err := needsLoad(sub)
			if err != nil || load {
				return load, err
			}
		}
	}
	return false, nil
}

// Decode reconstructs a filter from its serialized form. Filters that do
// not load images resolve immediately; BlendImage, and Composed filters
// containing one, decode on a separate goroutine. Cancelling ctx or the
// returned Future aborts the load.
func Decode(ctx context.Context, data []byte, opts ...DecodeOption) *Future {
	o := decodeOptions{loader: FileLoader{}}
	for _, opt := range opts {
		opt(&o)
	}

	load, err := needsLoad(data)
	if err != nil || !load {
		fu := newFuture(func() {})
		if err == nil {
			var f Filter
			f, err = decode(ctx, data, &o)
			fu.resolve(f, err)
		} else {
			fu.resolve(nil, err)
		}
		return fu
	}

	ctx, cancel := context.WithCancel(ctx)
	fu := newFuture(cancel)
	go func() {
		defer cancel()
		f, err := decode(ctx, data, &o)
		fu.resolve(f, err)
	}()
	return fu
}

// Unmarshal decodes data and waits for the result.
func Unmarshal(ctx context.Context, data []byte, opts ...DecodeOption) (Filter, error) {
	return Decode(ctx, data, opts...).Wait()
}

// UnmarshalList decodes a JSON array of filters, preserving order.
func UnmarshalList(ctx context.Context, data []byte, opts ...DecodeOption) ([]Filter, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("filter: decode list: %w", err)
	}
	futures := make([]*Future, len(items))
	for i, item := range items {
		futures[i] = Decode(ctx, item, opts...)
	}
	out := make([]Filter, len(items))
	for i, fu := range futures {
		f, err := fu.Wait()
		if err != nil {
			for _, rest := range futures[i+1:] {
				rest.Cancel()
			}
			return nil, fmt.Errorf("filter: decode list[%d]: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// decode blocks until the filter in data is fully reconstructed.
func decode(ctx context.Context, data []byte, o *decodeOptions) (Filter, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("filter: decode: %w", err)
	}
	f, err := New(h.Type)
	if err != nil {
		return nil, err
	}

	switch f := f.(type) {
	case *Composed:
		return decodeComposed(ctx, f, h.SubFilters, o)
	case *BlendImage:
		if err := json.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("filter: decode %s: %w", h.Type, err)
		}
		img, err := loadImage(ctx, o.loader, f.Image.Src)
		if err != nil {
			return nil, fmt.Errorf("filter: load %q: %w", f.Image.Src, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f.Pixels = img
		return f, nil
	}

	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("filter: decode %s: %w", h.Type, err)
	}
	return f, nil
}

// decodeComposed decodes sub-filters concurrently and assembles them in
// their serialized order.
func decodeComposed(ctx context.Context, f *Composed, raw []json.RawMessage, o *decodeOptions) (Filter, error) {
	subs := make([]Filter, len(raw))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range raw {
		g.Go(func() error {
			s, err := decode(gctx, r, o)
			if err != nil {
				return fmt.Errorf("subFilters[%d]: %w", i, err)
			}
			subs[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("filter: decode %s: %w", KindComposed, err)
	}
	f.SubFilters = subs
	return f, nil
}
