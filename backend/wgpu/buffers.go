package wgpu

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggfx/resource"
)

// Pool kinds of the buffers a run reuses.
const (
	kindPingPongA = "gpu:pingpong-a"
	kindPingPongB = "gpu:pingpong-b"
	kindOriginal  = "gpu:original"
	kindStaging   = "gpu:staging"
	kindNoAux     = "gpu:aux-empty"
	kindAux       = "gpu:aux"
	kindRaster    = "gpu:raster"
)

// minBufSize is the smallest buffer ever created.
const minBufSize = 4

// Buffer usage sets.
const (
	usagePixels  = gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst
	usageInput   = gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	usageStaging = gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst
)

// gpuBuffer is a HAL buffer that can live in the resource pool. It is
// destroyed when the pool evicts or clears it.
type gpuBuffer struct {
	device hal.Device
	buf    hal.Buffer
	size   uint64

	// content is the auxiliary surface last uploaded into buf.
	content *image.NRGBA
}

// Release destroys the buffer.
func (b *gpuBuffer) Release() {
	if b.buf != nil {
		b.device.DestroyBuffer(b.buf)
		b.buf = nil
	}
}

func createBuffer(device hal.Device, label string, size uint64, usage gputypes.BufferUsage) (*gpuBuffer, error) {
	if size < minBufSize {
		size = minBufSize
	}
	size = (size + 3) &^ 3
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	return &gpuBuffer{device: device, buf: buf, size: size}, nil
}

// pooledBuffer returns the buffer stored under kind:WxH, creating it when
// absent.
func pooledBuffer(pool *resource.Pool, device hal.Device, kind string, width, height int, usage gputypes.BufferUsage) (*gpuBuffer, error) {
	key := resource.NewKey(kind, width, height)
	if v, ok := pool.Get(key); ok {
		if b, ok := v.(*gpuBuffer); ok && b.buf != nil {
			return b, nil
		}
	}
	b, err := createBuffer(device, key.String(), pixelBytes(width, height), usage)
	if err != nil {
		return nil, err
	}
	pool.Put(key, b)
	return b, nil
}

func pixelBytes(width, height int) uint64 {
	return uint64(width) * uint64(height) * 4 //nolint:gosec // dimensions are positive
}

// paramBytes encodes the params buffer: the size header followed by the
// pass uniforms, all little-endian f32.
func paramBytes(inW, inH, outW, outH int, uniforms []float32) []byte {
	out := make([]byte, 16+4*len(uniforms))
	header := [4]float32{float32(inW), float32(inH), float32(outW), float32(outH)}
	for i, v := range header {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	for i, v := range uniforms {
		binary.LittleEndian.PutUint32(out[16+i*4:], math.Float32bits(v))
	}
	return out
}

// packedPixels returns the pixels of img as tightly packed RGBA bytes, the
// layout of one u32 per pixel with red in the low byte.
func packedPixels(img *image.NRGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == w*4 && img.Rect.Min == (image.Point{}) {
		return img.Pix[:w*h*4]
	}
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(out[y*w*4:(y+1)*w*4], img.Pix[off:off+w*4])
	}
	return out
}
