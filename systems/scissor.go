package systems

import (
	"image"

	"github.com/gogpu/stage/system"
)

// ScissorSystem keeps a stack of nested rectangular clips in target pixels.
type ScissorSystem struct {
	h     Host
	stack []image.Rectangle
}

var _ system.Resetter = (*ScissorSystem)(nil)

// NewScissorSystem creates the scissor system.
func NewScissorSystem(h Host) *ScissorSystem {
	return &ScissorSystem{h: h}
}

// Push intersects r with the current clip and makes it current.
func (s *ScissorSystem) Push(r image.Rectangle) {
	if n := len(s.stack); n > 0 {
		r = r.Intersect(s.stack[n-1])
	}
	s.stack = append(s.stack, r)
}

// Pop restores the previous clip.
func (s *ScissorSystem) Pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
}

// Current returns the active clip.
func (s *ScissorSystem) Current() (image.Rectangle, bool) {
	if n := len(s.stack); n > 0 {
		return s.stack[n-1], true
	}
	return image.Rectangle{}, false
}

// Depth returns the stack depth.
func (s *ScissorSystem) Depth() int { return len(s.stack) }

// Reset empties the stack.
func (s *ScissorSystem) Reset() { s.stack = s.stack[:0] }
