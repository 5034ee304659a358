package systems

import (
	"image"
	"math"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/render"
	"github.com/gogpu/stage/system"
)

// MaxTextureSlots is the number of texture binding slots.
const MaxTextureSlots = 16

// ScaleMode selects texture filtering.
type ScaleMode int

// Scale modes.
const (
	ScaleLinear ScaleMode = iota
	ScaleNearest
)

// FilterMode returns the sampler filter for the mode.
func (m ScaleMode) FilterMode() gputypes.FilterMode {
	if m == ScaleNearest {
		return gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear
}

// Interpolator returns the CPU resampler for the mode.
func (m ScaleMode) Interpolator() xdraw.Interpolator {
	if m == ScaleNearest {
		return xdraw.NearestNeighbor
	}
	return xdraw.BiLinear
}

// BaseTexture is premultiplied RGBA pixel data with per-context GPU mirrors.
type BaseTexture struct {
	Pixels     *image.RGBA
	ScaleMode  ScaleMode
	Resolution float64

	dirtyID     int
	touched     int
	framebuffer bool
	gpu         map[uint64]*glTexture
}

type glTexture struct {
	target  *render.TextureTarget
	dirtyID int
}

// NewBaseTexture creates a transparent texture of w x h pixels.
func NewBaseTexture(w, h int) *BaseTexture {
	return &BaseTexture{
		Pixels:     image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1))),
		Resolution: 1,
		dirtyID:    1,
	}
}

// TextureFromImage copies img into a new texture.
func TextureFromImage(img image.Image, mode ScaleMode) *BaseTexture {
	b := img.Bounds()
	t := NewBaseTexture(b.Dx(), b.Dy())
	t.ScaleMode = mode
	xdraw.Copy(t.Pixels, image.Point{}, img, b, xdraw.Src, nil)
	return t
}

// RealWidth returns the width in pixels.
func (t *BaseTexture) RealWidth() int { return t.Pixels.Bounds().Dx() }

// RealHeight returns the height in pixels.
func (t *BaseTexture) RealHeight() int { return t.Pixels.Bounds().Dy() }

// Width returns the width in resolution-independent units.
func (t *BaseTexture) Width() float64 { return float64(t.RealWidth()) / t.res() }

// Height returns the height in resolution-independent units.
func (t *BaseTexture) Height() float64 { return float64(t.RealHeight()) / t.res() }

func (t *BaseTexture) res() float64 {
	if t.Resolution <= 0 {
		return 1
	}
	return t.Resolution
}

// Update marks the pixels as changed.
func (t *BaseTexture) Update() { t.dirtyID++ }

// DirtyID returns the pixel version.
func (t *BaseTexture) DirtyID() int { return t.dirtyID }

// Touched returns the texture GC count at the last bind.
func (t *BaseTexture) Touched() int { return t.touched }

// IsFramebuffer reports whether the texture backs a render texture. Such
// textures are never garbage collected.
func (t *BaseTexture) IsFramebuffer() bool { return t.framebuffer }

// HasGPU reports whether the texture has a mirror on any context.
func (t *BaseTexture) HasGPU() bool { return len(t.gpu) > 0 }

// Resize reallocates the pixels, dropping their contents.
func (t *BaseTexture) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if t.RealWidth() == w && t.RealHeight() == h {
		return
	}
	t.Pixels = image.NewRGBA(image.Rect(0, 0, w, h))
	t.dirtyID++
}

// TextureSystem binds textures to slots and uploads them.
type TextureSystem struct {
	h Host

	uid     uint64
	bound   [MaxTextureSlots]*BaseTexture
	managed map[*BaseTexture]struct{}
	uploads int
}

var (
	_ system.ContextChanger = (*TextureSystem)(nil)
	_ system.Resetter       = (*TextureSystem)(nil)
	_ system.Destroyer      = (*TextureSystem)(nil)
)

// NewTextureSystem creates the texture system.
func NewTextureSystem(h Host) *TextureSystem {
	return &TextureSystem{h: h, managed: make(map[*BaseTexture]struct{})}
}

// ContextChange forgets mirrors created on older contexts.
func (s *TextureSystem) ContextChange(ctx *device.Context) {
	s.bound = [MaxTextureSlots]*BaseTexture{}
	if ctx == nil {
		return
	}
	s.uid = ctx.UID
	for t := range s.managed {
		for uid := range t.gpu {
			if uid != s.uid {
				delete(t.gpu, uid)
			}
		}
	}
}

// Bind binds t to slot, uploading it when stale. A nil t unbinds the slot.
func (s *TextureSystem) Bind(t *BaseTexture, slot int) error {
	if slot < 0 || slot >= MaxTextureSlots {
		slot = 0
	}
	s.bound[slot] = t
	if t == nil {
		return nil
	}
	if gc := s.h.Systems().TextureGC; gc != nil {
		t.touched = gc.Count()
	}
	return s.Upload(t)
}

// Bound returns the texture bound to slot.
func (s *TextureSystem) Bound(slot int) *BaseTexture {
	if slot < 0 || slot >= MaxTextureSlots {
		return nil
	}
	return s.bound[slot]
}

// Unbind clears every slot holding t.
func (s *TextureSystem) Unbind(t *BaseTexture) {
	for i, b := range s.bound {
		if b == t {
			s.bound[i] = nil
		}
	}
}

// Upload mirrors t on the active context when its pixels changed. Without a
// HAL device only the bookkeeping is done.
func (s *TextureSystem) Upload(t *BaseTexture) error {
	s.managed[t] = struct{}{}
	if t.gpu == nil {
		t.gpu = make(map[uint64]*glTexture)
	}
	gt := t.gpu[s.uid]
	if gt == nil {
		gt = &glTexture{}
		t.gpu[s.uid] = gt
	}
	if gt.dirtyID == t.dirtyID {
		return nil
	}
	ctx := s.h.GPU()
	dev, ok := ctx.HalDevice()
	if !ok {
		gt.dirtyID = t.dirtyID
		return nil
	}
	w, h := t.RealWidth(), t.RealHeight()
	if gt.target != nil && (gt.target.Width() != w || gt.target.Height() != h) {
		gt.target.Destroy()
		gt.target = nil
	}
	if gt.target == nil {
		tt, err := render.NewTextureTarget(dev, w, h, gputypes.TextureFormatRGBA8Unorm, 1)
		if err != nil {
			return err
		}
		gt.target = tt
	}
	if q, ok := ctx.HalQueue(); ok {
		if err := gt.target.Upload(q, t.Pixels); err != nil {
			return err
		}
		s.uploads++
	}
	gt.dirtyID = t.dirtyID
	return nil
}

// Target returns the GPU mirror of t on the active context.
func (s *TextureSystem) Target(t *BaseTexture) *render.TextureTarget {
	if gt := t.gpu[s.uid]; gt != nil {
		return gt.target
	}
	return nil
}

// Uploads returns the number of queue writes performed.
func (s *TextureSystem) Uploads() int { return s.uploads }

// Managed returns the textures with GPU mirrors.
func (s *TextureSystem) Managed() []*BaseTexture {
	out := make([]*BaseTexture, 0, len(s.managed))
	for t := range s.managed {
		out = append(out, t)
	}
	return out
}

// DestroyTexture releases the mirror of t on the active context and forgets
// the others.
func (s *TextureSystem) DestroyTexture(t *BaseTexture) {
	if t == nil {
		return
	}
	if s.h.GPU() != nil {
		if gt := t.gpu[s.uid]; gt != nil && gt.target != nil {
			gt.target.Destroy()
		}
	}
	t.gpu = nil
	s.Unbind(t)
	delete(s.managed, t)
}

// Reset unbinds every slot.
func (s *TextureSystem) Reset() {
	s.bound = [MaxTextureSlots]*BaseTexture{}
}

// Destroy releases every managed texture.
func (s *TextureSystem) Destroy(*system.DestroyOptions) {
	for t := range s.managed {
		s.DestroyTexture(t)
	}
}

// scaleBy returns n scaled by res, rounded up.
func scaleBy(n, res float64) int {
	return int(math.Ceil(n*res - 1e-9))
}
