package systems

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/render"
	"github.com/gogpu/stage/system"
)

// Framebuffer is an offscreen color target backed by a texture.
type Framebuffer struct {
	Texture     *BaseTexture
	Multisample MSAAQuality

	msaa map[uint64]*render.TextureTarget
}

// NewFramebuffer creates a w x h framebuffer.
func NewFramebuffer(w, h int) *Framebuffer {
	t := NewBaseTexture(w, h)
	t.framebuffer = true
	return &Framebuffer{Texture: t}
}

// Width returns the width in pixels.
func (f *Framebuffer) Width() int { return f.Texture.RealWidth() }

// Height returns the height in pixels.
func (f *Framebuffer) Height() int { return f.Texture.RealHeight() }

// Resize reallocates the color texture.
func (f *Framebuffer) Resize(w, h int) { f.Texture.Resize(w, h) }

// FramebufferSystem tracks the bound color target and viewport.
type FramebufferSystem struct {
	h Host

	uid      uint64
	current  *Framebuffer
	viewport image.Rectangle
	managed  map[*Framebuffer]struct{}
}

var (
	_ system.ContextChanger = (*FramebufferSystem)(nil)
	_ system.Resetter       = (*FramebufferSystem)(nil)
	_ system.Destroyer      = (*FramebufferSystem)(nil)
)

// NewFramebufferSystem creates the framebuffer system.
func NewFramebufferSystem(h Host) *FramebufferSystem {
	return &FramebufferSystem{h: h, managed: make(map[*Framebuffer]struct{})}
}

// ContextChange binds the screen and forgets multisample targets of older
// contexts.
func (s *FramebufferSystem) ContextChange(ctx *device.Context) {
	if ctx != nil {
		s.uid = ctx.UID
	}
	for fb := range s.managed {
		for uid := range fb.msaa {
			if uid != s.uid {
				delete(fb.msaa, uid)
			}
		}
	}
	s.Bind(nil, nil)
}

// Bind binds fb, or the screen when fb is nil, with the given viewport in
// target pixels. A nil viewport covers the whole target.
func (s *FramebufferSystem) Bind(fb *Framebuffer, viewport *image.Rectangle) {
	s.current = fb
	if fb != nil {
		s.managed[fb] = struct{}{}
	}
	target := s.Target()
	if viewport != nil {
		s.viewport = *viewport
	} else if target != nil {
		s.viewport = target.Bounds()
	} else {
		s.viewport = image.Rectangle{}
	}
}

// Current returns the bound framebuffer, nil for the screen.
func (s *FramebufferSystem) Current() *Framebuffer { return s.current }

// Viewport returns the viewport in target pixels.
func (s *FramebufferSystem) Viewport() image.Rectangle { return s.viewport }

// Target returns the pixels of the bound target, or nil when the screen is
// bound and the view has no surface.
func (s *FramebufferSystem) Target() *image.RGBA {
	if s.current != nil {
		return s.current.Texture.Pixels
	}
	if v := s.h.Systems().View; v != nil && v.Surface() != nil {
		return v.Surface().Image()
	}
	return nil
}

// Clear replaces the viewport of the bound target with c.
func (s *FramebufferSystem) Clear(c color.RGBA) {
	dst := s.Target()
	if dst == nil {
		return
	}
	xdraw.Draw(dst, s.viewport.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, xdraw.Src)
	s.MarkDirty()
}

// MarkDirty flags the bound framebuffer texture for upload.
func (s *FramebufferSystem) MarkDirty() {
	if s.current != nil {
		s.current.Texture.Update()
	}
}

// Blit copies the source rectangle of the bound target into the destination
// rectangle of dst, resampling bilinearly. Nil rectangles cover the whole
// target.
func (s *FramebufferSystem) Blit(dst *Framebuffer, srcRect, dstRect *image.Rectangle) {
	src := s.Target()
	if src == nil || dst == nil {
		return
	}
	sr := src.Bounds()
	if srcRect != nil {
		sr = srcRect.Intersect(sr)
	}
	dr := dst.Texture.Pixels.Bounds()
	if dstRect != nil {
		dr = *dstRect
	}
	xdraw.BiLinear.Scale(dst.Texture.Pixels, dr, src, sr, xdraw.Src, nil)
	dst.Texture.Update()
}

// Sync uploads the bound framebuffer and makes sure its multisample target
// exists on the active context.
func (s *FramebufferSystem) Sync() error {
	fb := s.current
	if fb == nil {
		return nil
	}
	if tex := s.h.Systems().Texture; tex != nil {
		if err := tex.Upload(fb.Texture); err != nil {
			return err
		}
	}
	if fb.Multisample <= 1 {
		return nil
	}
	ctx := s.h.GPU()
	dev, ok := ctx.HalDevice()
	if !ok {
		return nil
	}
	if fb.msaa == nil {
		fb.msaa = make(map[uint64]*render.TextureTarget)
	}
	t := fb.msaa[s.uid]
	if t != nil && t.Width() == fb.Width() && t.Height() == fb.Height() {
		return nil
	}
	if t != nil {
		t.Destroy()
	}
	t, err := render.NewTextureTarget(dev, fb.Width(), fb.Height(), ctx.Format(), uint32(fb.Multisample))
	if err != nil {
		return err
	}
	fb.msaa[s.uid] = t
	return nil
}

// Resize rebinds the screen so the viewport follows the surface.
func (s *FramebufferSystem) Resize(int, int) {
	if s.current == nil {
		s.Bind(nil, nil)
	}
}

// Reset binds the screen.
func (s *FramebufferSystem) Reset() { s.Bind(nil, nil) }

// DestroyFramebuffer releases fb's GPU resources.
func (s *FramebufferSystem) DestroyFramebuffer(fb *Framebuffer) {
	if fb == nil {
		return
	}
	if s.h.GPU() != nil {
		if t := fb.msaa[s.uid]; t != nil {
			t.Destroy()
		}
	}
	fb.msaa = nil
	if tex := s.h.Systems().Texture; tex != nil {
		tex.DestroyTexture(fb.Texture)
	}
	delete(s.managed, fb)
	if s.current == fb {
		s.current = nil
	}
}

// Destroy releases every framebuffer that was bound.
func (s *FramebufferSystem) Destroy(*system.DestroyOptions) {
	for fb := range s.managed {
		s.DestroyFramebuffer(fb)
	}
	s.current = nil
}
