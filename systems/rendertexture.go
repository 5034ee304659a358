package systems

import (
	"image"
	"image/color"

	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/system"
)

// RenderTexture is a texture that can be rendered into.
type RenderTexture struct {
	Framebuffer *Framebuffer

	// Frame is the region of the texture drawn into, in resolution
	// independent units.
	Frame      geom.Rect
	ClearColor color.RGBA
}

// NewRenderTexture creates a w x h render texture at resolution res.
func NewRenderTexture(w, h, res float64, mode ScaleMode, multisample MSAAQuality) *RenderTexture {
	if res <= 0 {
		res = 1
	}
	w, h = max(w, 1), max(h, 1)
	fb := NewFramebuffer(scaleBy(w, res), scaleBy(h, res))
	fb.Multisample = multisample
	fb.Texture.Resolution = res
	fb.Texture.ScaleMode = mode
	return &RenderTexture{Framebuffer: fb, Frame: geom.RectOf(0, 0, w, h)}
}

// Base returns the texture holding the rendered pixels.
func (rt *RenderTexture) Base() *BaseTexture { return rt.Framebuffer.Texture }

// Resolution returns the pixel density.
func (rt *RenderTexture) Resolution() float64 { return rt.Base().res() }

// Width returns the frame width.
func (rt *RenderTexture) Width() float64 { return rt.Frame.Width }

// Height returns the frame height.
func (rt *RenderTexture) Height() float64 { return rt.Frame.Height }

// Resize changes the frame size and reallocates the pixels.
func (rt *RenderTexture) Resize(w, h float64) {
	w, h = max(w, 1), max(h, 1)
	rt.Frame.Width, rt.Frame.Height = w, h
	res := rt.Resolution()
	rt.Framebuffer.Resize(scaleBy(w, res), scaleBy(h, res))
}

// Image returns the rendered pixels inside the frame.
func (rt *RenderTexture) Image() *image.RGBA {
	px := rt.Base().Pixels
	r := rt.Frame.Scale(rt.Resolution()).Image().Intersect(px.Bounds())
	return px.SubImage(r).(*image.RGBA)
}

// RenderTextureSystem binds render textures or the screen as the target.
type RenderTextureSystem struct {
	h Host

	current     *RenderTexture
	source      geom.Rect
	destination geom.Rect
}

var (
	_ system.Resetter = (*RenderTextureSystem)(nil)
	_ system.Resizer  = (*RenderTextureSystem)(nil)
)

// NewRenderTextureSystem creates the render texture system.
func NewRenderTextureSystem(h Host) *RenderTextureSystem {
	return &RenderTextureSystem{h: h}
}

// Bind makes rt the target, or the screen when rt is nil. source is the
// world region projected onto destination; both default to the texture
// frame or the screen.
func (s *RenderTextureSystem) Bind(rt *RenderTexture, source, destination *geom.Rect) {
	set := s.h.Systems()
	s.current = rt

	var res float64
	var src, dst geom.Rect
	var fb *Framebuffer
	if rt != nil {
		res = rt.Resolution()
		fb = rt.Framebuffer
		src = geom.RectOf(0, 0, rt.Frame.Width, rt.Frame.Height)
		if source != nil {
			src = *source
		}
		dst = rt.Frame
		if destination != nil {
			dst = *destination
		}
	} else {
		res = 1
		if set.View != nil {
			res = set.View.Resolution()
			src = set.View.Screen()
		}
		if source != nil {
			src = *source
		}
		dst = src
		if destination != nil {
			dst = *destination
		}
	}

	viewport := dst.Scale(res).Image()
	set.Framebuffer.Bind(fb, &viewport)
	set.Projection.Update(dst, src, res, fb == nil)
	s.source, s.destination = src, dst
}

// Current returns the bound render texture, nil for the screen.
func (s *RenderTextureSystem) Current() *RenderTexture { return s.current }

// Source returns the bound source frame.
func (s *RenderTextureSystem) Source() geom.Rect { return s.source }

// Destination returns the bound destination frame.
func (s *RenderTextureSystem) Destination() geom.Rect { return s.destination }

// Clear clears the bound target. A nil c uses the render texture clear
// color, or the background color for the screen.
func (s *RenderTextureSystem) Clear(c *color.RGBA) {
	var clr color.RGBA
	switch {
	case c != nil:
		clr = *c
	case s.current != nil:
		clr = s.current.ClearColor
	default:
		if bg := s.h.Systems().Background; bg != nil {
			clr = bg.ClearColor()
		}
	}
	s.h.Systems().Framebuffer.Clear(clr)
}

// Resize rebinds the screen.
func (s *RenderTextureSystem) Resize(int, int) { s.Bind(nil, nil, nil) }

// Reset rebinds the screen.
func (s *RenderTextureSystem) Reset() { s.Bind(nil, nil, nil) }
