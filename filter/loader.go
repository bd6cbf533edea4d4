// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/url"
	"path/filepath"
	"strings"

	// Decoders registered for FileLoader beyond PNG and JPEG.
	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/anthonynsimon/bild/imgio"
)

// Image source errors.
var (
	// ErrEmptySource is returned when a BlendImage has no image source.
	ErrEmptySource = errors.New("filter: empty image source")

	// ErrDataURL is returned for a malformed data URL source.
	ErrDataURL = errors.New("filter: malformed data URL")
)

const dataURLPrefix = "data:"

// ImageLoader loads the image referenced by a serialized BlendImage.
// Implementations must return promptly once ctx is done.
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// LoaderFunc adapts a function to ImageLoader.
type LoaderFunc func(ctx context.Context, src string) (image.Image, error)

// Load calls fn.
func (fn LoaderFunc) Load(ctx context.Context, src string) (image.Image, error) {
	return fn(ctx, src)
}

// FileLoader loads images from the local file system and from data URLs.
// It decodes PNG, JPEG, GIF, BMP, TIFF and WebP.
type FileLoader struct {
	// Dir resolves relative sources. Empty means the working directory.
	Dir string
}

// Load decodes the file at src.
func (l FileLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if src == "" {
		return nil, ErrEmptySource
	}
	if isDataURL(src) {
		return decodeDataURL(src)
	}
	if l.Dir != "" && !filepath.IsAbs(src) {
		src = filepath.Join(l.Dir, src)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type result struct {
		img image.Image
		err error
	}
	ch := make(chan result, 1)
	go func() {
		img, err := imgio.Open(src)
		ch <- result{img, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("filter: open image: %w", r.err)
		}
		return r.img, nil
	}
}

// loadImage resolves src. Data URLs are decoded in place; anything else
// goes through loader.
func loadImage(ctx context.Context, loader ImageLoader, src string) (image.Image, error) {
	if isDataURL(src) {
		return decodeDataURL(src)
	}
	return loader.Load(ctx, src)
}

func isDataURL(src string) bool {
	return len(src) >= len(dataURLPrefix) && strings.EqualFold(src[:len(dataURLPrefix)], dataURLPrefix)
}

// encodeDataURL embeds img as a base64 PNG data URL.
func encodeDataURL(img image.Image) (string, error) {
	var b bytes.Buffer
	if err := imgio.PNGEncoder()(&b, img); err != nil {
		return "", fmt.Errorf("filter: encode image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b.Bytes()), nil
}

// decodeDataURL decodes a data:[<mediatype>][;base64],<data> image.
func decodeDataURL(src string) (image.Image, error) {
	meta, payload, ok := strings.Cut(src[len(dataURLPrefix):], ",")
	if !ok {
		return nil, ErrDataURL
	}
	var data []byte
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataURL, err)
		}
		data = b
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataURL, err)
		}
		data = []byte(s)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("filter: decode data URL image: %w", err)
	}
	return img, nil
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	loader ImageLoader
}

// WithLoader sets the loader used for BlendImage sources. The default is
// FileLoader.
func WithLoader(l ImageLoader) DecodeOption {
	return func(o *decodeOptions) {
		if l != nil {
			o.loader = l
		}
	}
}
