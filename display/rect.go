package display

import (
	"image/color"

	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/systems"
)

// Rect is a solid rectangle.
type Rect struct {
	Node

	Width, Height float64
	Fill          color.RGBA
	BlendMode     systems.BlendMode
}

var _ systems.DisplayObject = (*Rect)(nil)

// NewRect creates a rectangle covering r in its parent's space.
func NewRect(r geom.Rect, fill color.RGBA) *Rect {
	rect := &Rect{Node: newNode(), Width: r.Width, Height: r.Height, Fill: fill}
	rect.Position = geom.Pt(r.X, r.Y)
	return rect
}

// LocalBounds implements systems.DisplayObject.
func (r *Rect) LocalBounds() geom.Rect {
	return geom.RectOf(0, 0, r.Width, r.Height).Transform(r.Local())
}

// Render batches a white quad tinted with Fill.
func (r *Rect) Render(h systems.Host) {
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	q := h.Systems().Batch.Quads()
	q.Render(systems.Quad{
		Texture:   q.White(),
		Transform: r.world.Multiply(geom.Scale(r.Width, r.Height)),
		Tint:      r.Fill,
		Alpha:     r.worldAlpha,
		BlendMode: r.BlendMode,
	})
}
