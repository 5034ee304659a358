package systems

import "github.com/gogpu/stage/system"

// GCMode selects when idle textures are collected.
type GCMode int

// GC modes.
const (
	GCAuto GCMode = iota
	GCManual
)

// Texture GC defaults.
const (
	DefaultGCMaxIdle       = 60 * 60
	DefaultGCCheckCountMax = 60 * 10
)

// TextureGCOptions configures the texture garbage collector. Zero fields
// keep the defaults.
type TextureGCOptions struct {
	Mode          GCMode
	MaxIdle       int
	CheckCountMax int
}

// Textured is implemented by display objects drawing a texture.
type Textured interface {
	BaseTexture() *BaseTexture
}

// Parent is implemented by display objects with children.
type Parent interface {
	Children() []DisplayObject
}

// TextureGCSystem frees GPU mirrors of textures that were not bound for a
// while. Time is counted in frames rendered to the screen.
type TextureGCSystem struct {
	h Host

	count      int
	checkCount int

	Mode          GCMode
	MaxIdle       int
	CheckCountMax int
}

var (
	_ system.Initializer  = (*TextureGCSystem)(nil)
	_ system.PostRenderer = (*TextureGCSystem)(nil)
)

// NewTextureGCSystem creates the texture GC system.
func NewTextureGCSystem(h Host) *TextureGCSystem {
	return &TextureGCSystem{
		h:             h,
		MaxIdle:       DefaultGCMaxIdle,
		CheckCountMax: DefaultGCCheckCountMax,
	}
}

// Init applies TextureGCOptions.
func (s *TextureGCSystem) Init(opts any) {
	o, ok := opts.(TextureGCOptions)
	if !ok {
		return
	}
	s.Mode = o.Mode
	if o.MaxIdle > 0 {
		s.MaxIdle = o.MaxIdle
	}
	if o.CheckCountMax > 0 {
		s.CheckCountMax = o.CheckCountMax
	}
}

// Count returns the number of frames rendered to the screen.
func (s *TextureGCSystem) Count() int { return s.count }

// Postrender advances the frame counter and collects periodically in
// automatic mode. Renders to offscreen targets do not count.
func (s *TextureGCSystem) Postrender() {
	or := s.h.Systems().ObjectRenderer
	if or == nil || !or.RenderingToScreen() {
		return
	}
	s.count++
	if s.Mode == GCManual {
		return
	}
	s.checkCount++
	if s.checkCount > s.CheckCountMax {
		s.checkCount = 0
		s.Run()
	}
}

// Run frees idle textures and returns how many were freed. Framebuffer
// textures are kept.
func (s *TextureGCSystem) Run() int {
	tm := s.h.Systems().Texture
	if tm == nil {
		return 0
	}
	freed := 0
	for _, t := range tm.Managed() {
		if !t.framebuffer && s.count-t.touched > s.MaxIdle {
			tm.DestroyTexture(t)
			freed++
		}
	}
	if freed > 0 {
		s.h.Logger().Debug("stage: texture gc", "freed", freed, "frame", s.count)
	}
	return freed
}

// Unload frees the GPU mirrors of every texture drawn by obj and its
// descendants.
func (s *TextureGCSystem) Unload(obj DisplayObject) {
	tm := s.h.Systems().Texture
	if tm == nil || obj == nil {
		return
	}
	if t, ok := obj.(Textured); ok {
		if bt := t.BaseTexture(); bt != nil && bt.HasGPU() {
			tm.DestroyTexture(bt)
		}
	}
	if p, ok := obj.(Parent); ok {
		for _, c := range p.Children() {
			s.Unload(c)
		}
	}
}
