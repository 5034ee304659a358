package systems

import (
	"github.com/gogpu/stage/geom"
)

// RenderOptions controls a single render call.
type RenderOptions struct {
	// RenderTexture is the target. Nil renders to the screen.
	RenderTexture *RenderTexture

	// Clear clears the target first. Nil falls back to the background
	// ClearBeforeRender setting.
	Clear *bool

	// Transform is applied to world coordinates for this call only.
	Transform *geom.Matrix

	// SkipUpdateTransform keeps the current world transforms.
	SkipUpdateTransform bool
}

// presenter is implemented by surfaces that show frames.
type presenter interface {
	Present() error
}

// ObjectRendererSystem drives a frame: it updates transforms, binds the
// target, draws the object and broadcasts the frame hooks.
type ObjectRendererSystem struct {
	h Host

	renderingToScreen  bool
	lastObjectRendered DisplayObject
	frames             int
}

// NewObjectRendererSystem creates the object renderer system.
func NewObjectRendererSystem(h Host) *ObjectRendererSystem {
	return &ObjectRendererSystem{h: h}
}

// RenderingToScreen reports whether the current or last render targeted the
// screen.
func (s *ObjectRendererSystem) RenderingToScreen() bool { return s.renderingToScreen }

// LastObjectRendered returns the last object rendered to the screen.
func (s *ObjectRendererSystem) LastObjectRendered() DisplayObject { return s.lastObjectRendered }

// Frames returns the number of completed render calls.
func (s *ObjectRendererSystem) Frames() int { return s.frames }

// Render draws obj. Nothing happens while the context is lost.
func (s *ObjectRendererSystem) Render(obj DisplayObject, opts RenderOptions) {
	set := s.h.Systems()
	if set.Context != nil && set.Context.IsLost() {
		return
	}
	runners := s.h.Runners()

	s.renderingToScreen = opts.RenderTexture == nil
	runners.Prerender.Emit(struct{}{})

	set.Projection.Transform = opts.Transform

	if s.renderingToScreen {
		s.lastObjectRendered = obj
	}

	if !opts.SkipUpdateTransform {
		obj.UpdateTransform(geom.Identity())
	}
	runners.Update.Emit(struct{}{})

	set.RenderTexture.Bind(opts.RenderTexture, nil, nil)
	set.Batch.current.Start()

	clearTarget := set.Background != nil && set.Background.ClearBeforeRender()
	if opts.Clear != nil {
		clearTarget = *opts.Clear
	}
	if clearTarget {
		set.RenderTexture.Clear(nil)
	}

	obj.Render(s.h)

	set.Batch.current.Flush()

	if rt := opts.RenderTexture; rt != nil {
		rt.Base().Update()
		if err := set.Framebuffer.Sync(); err != nil {
			s.h.Logger().Warn("stage: sync render texture", "err", err)
		}
	}

	runners.Postrender.Emit(struct{}{})

	set.Projection.Transform = nil
	s.frames++

	if s.renderingToScreen {
		s.present()
	}
}

func (s *ObjectRendererSystem) present() {
	v := s.h.Systems().View
	if v == nil || v.Surface() == nil {
		return
	}
	if p, ok := v.Surface().(presenter); ok {
		if err := p.Present(); err != nil {
			s.h.Logger().Warn("stage: present", "err", err)
		}
	}
}
