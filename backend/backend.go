package backend

import (
	"errors"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/ggfx/filter"
	"github.com/gogpu/ggfx/resource"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot be created.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrClosed is returned when a closed backend is used.
	ErrClosed = errors.New("backend: closed")

	// ErrInvalidInput is returned for a nil source or destination or a
	// non-positive size. It never triggers a backend fallback.
	ErrInvalidInput = errors.New("backend: invalid input")

	// ErrUnsupported is returned before any work is submitted when a
	// backend cannot run a particular chain. The backend stays usable.
	ErrUnsupported = errors.New("backend: unsupported chain")
)

// Backend name constants.
const (
	// NameCPU is the name of the CPU backend.
	NameCPU = "cpu"
	// NameWGPU is the name of the WebGPU compute backend.
	NameWGPU = "wgpu"
)

// Backend executes filter chains.
//
// ApplyFilters draws src into a width x height surface, runs every
// non-neutral filter in order and writes the result into dst at
// dst.Bounds().Min. Filters that resize change the size of what is
// written. A backend runs one chain at a time.
type Backend interface {
	// Name returns the backend identifier (e.g., "cpu", "wgpu").
	Name() string

	// ApplyFilters runs filters over src and writes the result into dst.
	ApplyFilters(filters []filter.Filter, src image.Image, width, height int, dst draw.Image) error

	// Close releases all backend resources.
	// The backend must not be used after Close is called.
	Close()
}

// ValidateInput checks the arguments of ApplyFilters.
func ValidateInput(src image.Image, width, height int, dst draw.Image) error {
	switch {
	case src == nil:
		return errors.Join(ErrInvalidInput, errors.New("nil source"))
	case dst == nil:
		return errors.Join(ErrInvalidInput, errors.New("nil destination"))
	case width <= 0 || height <= 0:
		return errors.Join(ErrInvalidInput, errors.New("non-positive size"))
	}
	return nil
}

// Raster draws src into a width x height straight-alpha raster taken from
// pool under "kind:WxH". A source of a different size is scaled with
// Catmull-Rom. The raster is fully overwritten.
func Raster(pool *resource.Pool, kind string, src image.Image, width, height int) *image.NRGBA {
	var dst *image.NRGBA
	if pool != nil {
		dst = resource.Obtain(pool, resource.NewKey(kind, width, height), func() *image.NRGBA {
			return image.NewNRGBA(image.Rect(0, 0, width, height))
		})
	} else {
		dst = image.NewNRGBA(image.Rect(0, 0, width, height))
	}
	sr := src.Bounds()
	if sr.Dx() == width && sr.Dy() == height {
		if n, ok := src.(*image.NRGBA); ok {
			copyRows(dst.Pix, dst.Stride, n.Pix[n.PixOffset(sr.Min.X, sr.Min.Y):], n.Stride, width, height)
			return dst
		}
		xdraw.Draw(dst, dst.Bounds(), src, sr.Min, xdraw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, sr, xdraw.Src, nil)
	return dst
}

// WriteResult copies width x height straight-alpha pixels into dst at
// dst.Bounds().Min.
func WriteResult(dst draw.Image, pix []uint8, width, height int) {
	db := dst.Bounds()
	r := image.Rect(db.Min.X, db.Min.Y, db.Min.X+width, db.Min.Y+height).Intersect(db)
	if r.Empty() {
		return
	}
	if d, ok := dst.(*image.NRGBA); ok {
		copyRows(d.Pix[d.PixOffset(r.Min.X, r.Min.Y):], d.Stride, pix, width*4, r.Dx(), r.Dy())
		return
	}
	src := &image.NRGBA{Pix: pix, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	xdraw.Draw(dst, r, src, image.Point{}, xdraw.Src)
}

// copyRows copies a width x height block of 4-byte pixels between strided
// buffers.
func copyRows(dst []uint8, dstStride int, src []uint8, srcStride int, width, height int) {
	n := width * 4
	for y := 0; y < height; y++ {
		copy(dst[y*dstStride:y*dstStride+n], src[y*srcStride:y*srcStride+n])
	}
}
