package systems

import (
	"image"

	"golang.org/x/image/vector"

	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/system"
)

// Mask clips drawing to a shape in world space.
type Mask struct {
	// Polygon is the mask outline in local space. When empty, Bounds is used.
	Polygon []geom.Point
	Bounds  geom.Rect

	// Transform maps local space to world space. The zero matrix is treated
	// as the identity.
	Transform geom.Matrix
}

// MaskKind records how a mask was applied.
type MaskKind int

// Mask kinds.
const (
	MaskScissor MaskKind = iota
	MaskStencil
)

// MaskSystem applies masks through the scissor or stencil system.
type MaskSystem struct {
	h     Host
	kinds []MaskKind
}

var _ system.Resetter = (*MaskSystem)(nil)

// NewMaskSystem creates the mask system.
func NewMaskSystem(h Host) *MaskSystem {
	return &MaskSystem{h: h}
}

// Push applies m. Rectangles that stay axis-aligned on the target become
// scissor rectangles; anything else is rasterized into a stencil mask.
func (s *MaskSystem) Push(m Mask) MaskKind {
	set := s.h.Systems()
	world := m.Transform
	if world == (geom.Matrix{}) {
		world = geom.Identity()
	}
	pixel := set.Projection.Pixel().Multiply(world)
	if len(m.Polygon) == 0 && pixel.IsAxisAligned() {
		set.Scissor.Push(m.Bounds.Transform(pixel).Image())
		s.kinds = append(s.kinds, MaskScissor)
		return MaskScissor
	}

	poly := m.Polygon
	if len(poly) == 0 {
		b := m.Bounds
		poly = []geom.Point{{X: b.X, Y: b.Y}, {X: b.Right(), Y: b.Y}, {X: b.Right(), Y: b.Bottom()}, {X: b.X, Y: b.Bottom()}}
	}
	var bounds image.Rectangle
	if t := set.Framebuffer.Target(); t != nil {
		bounds = t.Bounds()
	}
	set.Stencil.Push(rasterizePolygon(poly, pixel, bounds))
	s.kinds = append(s.kinds, MaskStencil)
	return MaskStencil
}

// Pop removes the most recent mask.
func (s *MaskSystem) Pop() {
	n := len(s.kinds)
	if n == 0 {
		return
	}
	set := s.h.Systems()
	switch s.kinds[n-1] {
	case MaskScissor:
		set.Scissor.Pop()
	case MaskStencil:
		set.Stencil.Pop()
	}
	s.kinds = s.kinds[:n-1]
}

// Depth returns the number of active masks.
func (s *MaskSystem) Depth() int { return len(s.kinds) }

// Clip returns the rectangle drawing is limited to: the viewport intersected
// with the active scissor rectangle.
func (s *MaskSystem) Clip() image.Rectangle {
	set := s.h.Systems()
	clip := set.Framebuffer.Viewport()
	if r, ok := set.Scissor.Current(); ok {
		clip = clip.Intersect(r)
	}
	return clip
}

// Reset forgets every mask.
func (s *MaskSystem) Reset() { s.kinds = s.kinds[:0] }

func rasterizePolygon(poly []geom.Point, m geom.Matrix, bounds image.Rectangle) *image.Alpha {
	mask := image.NewAlpha(bounds)
	if bounds.Empty() || len(poly) < 3 {
		return mask
	}
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	off := geom.Pt(float64(bounds.Min.X), float64(bounds.Min.Y))
	for i, p := range poly {
		q := m.Apply(p)
		x, y := float32(q.X-off.X), float32(q.Y-off.Y)
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, bounds.Min)
	return mask
}
