package grid

import "sync/atomic"

// Bounds reports the current playable area. The search engine queries it on
// every expansion, so implementations backed by a live viewport may change
// size between calls.
type Bounds interface {
	Size() (width, height int)
}

// Contains reports whether p lies inside b.
func Contains(b Bounds, p Position) bool {
	w, h := b.Size()
	return p.X >= 0 && p.X < w && p.Y >= 0 && p.Y < h
}

// FixedBounds is a constant-size playable area.
type FixedBounds struct {
	Width  int
	Height int
}

func (b FixedBounds) Size() (int, int) {
	return b.Width, b.Height
}

// Viewport is a Bounds whose size can be updated concurrently, e.g. on a
// terminal resize.
type Viewport struct {
	size atomic.Uint64
}

func NewViewport(width, height int) *Viewport {
	v := &Viewport{}
	v.Resize(width, height)
	return v
}

func (v *Viewport) Resize(width, height int) {
	v.size.Store(uint64(uint32(width))<<32 | uint64(uint32(height)))
}

func (v *Viewport) Size() (int, int) {
	packed := v.size.Load()
	return int(int32(packed >> 32)), int(int32(packed))
}
