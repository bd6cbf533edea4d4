package resource

import (
	"image"
	"testing"
)

type releaseCounter struct {
	released int
}

func (r *releaseCounter) Release() { r.released++ }

func TestKeyString(t *testing.T) {
	k := NewKey("blendImage", 640, 480)
	if got, want := k.String(), "blendImage:640x480"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPoolGetPut(t *testing.T) {
	p := NewPool(4)
	k := NewKey("cpu:raster", 2, 2)

	if _, ok := p.Get(k); ok {
		t.Fatal("Get on empty pool returned ok")
	}

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	p.Put(k, img)

	v, ok := p.Get(k)
	if !ok {
		t.Fatal("Get after Put returned !ok")
	}
	if v.(*image.NRGBA) != img {
		t.Error("Get returned a different value")
	}

	st := p.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Len != 1 {
		t.Errorf("Stats = %+v, want 1 hit, 1 miss, len 1", st)
	}
}

func TestPoolDimensionsAreDistinct(t *testing.T) {
	p := NewPool(0)
	p.Put(NewKey("scratch", 10, 10), 1)

	if _, ok := p.Get(NewKey("scratch", 20, 10)); ok {
		t.Error("entry for 10x10 returned for 20x10")
	}
	if p.Capacity() != DefaultCapacity {
		t.Errorf("Capacity() = %d, want %d", p.Capacity(), DefaultCapacity)
	}
}

func TestPoolEvictsLeastRecentlyUsed(t *testing.T) {
	p := NewPool(2)
	a, b, c := &releaseCounter{}, &releaseCounter{}, &releaseCounter{}

	p.Put(NewKey("a", 1, 1), a)
	p.Put(NewKey("b", 1, 1), b)
	p.Get(NewKey("a", 1, 1)) // a is now most recently used
	p.Put(NewKey("c", 1, 1), c)

	if _, ok := p.Get(NewKey("b", 1, 1)); ok {
		t.Error("b should have been evicted")
	}
	if b.released != 1 {
		t.Errorf("b released %d times, want 1", b.released)
	}
	if a.released != 0 || c.released != 0 {
		t.Error("a or c released unexpectedly")
	}
	if got := p.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestPoolPutReplacesAndReleases(t *testing.T) {
	p := NewPool(4)
	k := NewKey("gpu:pingpong-a", 8, 8)
	old, repl := &releaseCounter{}, &releaseCounter{}

	p.Put(k, old)
	p.Put(k, repl)

	if old.released != 1 {
		t.Errorf("replaced value released %d times, want 1", old.released)
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
}

func TestPoolInvalidate(t *testing.T) {
	p := NewPool(8)
	r1, r2, r3 := &releaseCounter{}, &releaseCounter{}, &releaseCounter{}
	p.Put(NewKey("gpu", 4, 4), r1)
	p.Put(NewKey("gpu:pingpong-a", 4, 4), r2)
	p.Put(NewKey("gpuish", 4, 4), r3)

	if n := p.Invalidate("gpu"); n != 2 {
		t.Errorf("Invalidate removed %d entries, want 2", n)
	}
	if r1.released != 1 || r2.released != 1 {
		t.Error("invalidated entries were not released")
	}
	if r3.released != 0 {
		t.Error("entry with a different kind was released")
	}
}

func TestPoolDeleteAndClear(t *testing.T) {
	p := NewPool(8)
	r1, r2 := &releaseCounter{}, &releaseCounter{}
	p.Put(NewKey("x", 1, 1), r1)
	p.Put(NewKey("y", 1, 1), r2)

	if !p.Delete(NewKey("x", 1, 1)) {
		t.Error("Delete returned false for existing key")
	}
	if p.Delete(NewKey("x", 1, 1)) {
		t.Error("Delete returned true for missing key")
	}

	p.Clear()
	if p.Len() != 0 {
		t.Errorf("Len() after Clear = %d", p.Len())
	}
	if r1.released != 1 || r2.released != 1 {
		t.Errorf("released counts = %d, %d; want 1, 1", r1.released, r2.released)
	}
}

func TestObtain(t *testing.T) {
	p := NewPool(4)
	k := NewKey("lut", 256, 1)
	calls := 0
	create := func() []uint8 {
		calls++
		return make([]uint8, 256)
	}

	first := Obtain(p, k, create)
	second := Obtain(p, k, create)
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	if &first[0] != &second[0] {
		t.Error("Obtain returned a different slice on the second call")
	}

	// A value of another type under the same key is replaced.
	p.Put(NewKey("lut", 1, 1), "not a slice")
	if got := Obtain(p, NewKey("lut", 1, 1), create); len(got) != 256 {
		t.Errorf("Obtain with mismatched type returned len %d", len(got))
	}
}
