package display

import (
	"image"
	"image/color"

	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/systems"
)

// Sprite draws a texture region.
type Sprite struct {
	Node

	Texture *systems.BaseTexture

	// Frame selects the texture region in pixels. The zero rectangle draws
	// the whole texture.
	Frame image.Rectangle

	Tint      color.RGBA
	BlendMode systems.BlendMode
}

var (
	_ systems.DisplayObject = (*Sprite)(nil)
	_ systems.Textured      = (*Sprite)(nil)
)

// NewSprite creates a sprite showing tex.
func NewSprite(tex *systems.BaseTexture) *Sprite {
	return &Sprite{Node: newNode(), Texture: tex}
}

// NewSpriteFromRenderTexture creates a sprite showing a generated texture.
func NewSpriteFromRenderTexture(rt *systems.RenderTexture) *Sprite {
	s := NewSprite(rt.Base())
	s.Frame = rt.Frame.Scale(rt.Resolution()).Image()
	return s
}

// BaseTexture implements systems.Textured.
func (s *Sprite) BaseTexture() *systems.BaseTexture { return s.Texture }

// Size returns the displayed size in unscaled pixels.
func (s *Sprite) Size() (float64, float64) {
	if s.Texture == nil {
		return 0, 0
	}
	if s.Frame.Empty() {
		return s.Texture.Width(), s.Texture.Height()
	}
	res := s.Texture.Resolution
	if res <= 0 {
		res = 1
	}
	return float64(s.Frame.Dx()) / res, float64(s.Frame.Dy()) / res
}

// LocalBounds implements systems.DisplayObject.
func (s *Sprite) LocalBounds() geom.Rect {
	w, h := s.Size()
	return geom.RectOf(0, 0, w, h).Transform(s.Local())
}

// Render batches the sprite quad.
func (s *Sprite) Render(h systems.Host) {
	if s.Texture == nil {
		return
	}
	h.Systems().Batch.Quads().Render(systems.Quad{
		Texture:   s.Texture,
		Frame:     s.Frame,
		Transform: s.world,
		Tint:      s.Tint,
		Alpha:     s.worldAlpha,
		BlendMode: s.BlendMode,
	})
}
