package systems

import (
	"image"

	"github.com/gogpu/stage/system"
)

// StencilSystem keeps a stack of nested coverage masks in target pixels.
// Each pushed mask is combined with the one below it.
type StencilSystem struct {
	h     Host
	stack []*image.Alpha
}

var _ system.Resetter = (*StencilSystem)(nil)

// NewStencilSystem creates the stencil system.
func NewStencilSystem(h Host) *StencilSystem {
	return &StencilSystem{h: h}
}

// Push multiplies m with the current mask and makes the result current.
func (s *StencilSystem) Push(m *image.Alpha) {
	if n := len(s.stack); n > 0 {
		m = intersectAlpha(s.stack[n-1], m)
	}
	s.stack = append(s.stack, m)
}

// Pop restores the previous mask.
func (s *StencilSystem) Pop() {
	if n := len(s.stack); n > 0 {
		s.stack[n-1] = nil
		s.stack = s.stack[:n-1]
	}
}

// Current returns the active mask or nil.
func (s *StencilSystem) Current() *image.Alpha {
	if n := len(s.stack); n > 0 {
		return s.stack[n-1]
	}
	return nil
}

// Depth returns the stack depth.
func (s *StencilSystem) Depth() int { return len(s.stack) }

// Reset empties the stack.
func (s *StencilSystem) Reset() {
	clear(s.stack)
	s.stack = s.stack[:0]
}

func intersectAlpha(a, b *image.Alpha) *image.Alpha {
	r := a.Rect.Intersect(b.Rect)
	out := image.NewAlpha(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			av := uint32(a.AlphaAt(x, y).A)
			bv := uint32(b.AlphaAt(x, y).A)
			out.Pix[out.PixOffset(x, y)] = uint8((av*bv + 127) / 255)
		}
	}
	return out
}
