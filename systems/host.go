package systems

import (
	"log/slog"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/system"
)

// System names, in registration order.
const (
	NameView             = "view"
	NameTextureGenerator = "textureGenerator"
	NameBackground       = "background"
	NamePlugin           = "plugin"
	NameStartup          = "startup"
	NameContext          = "context"
	NameState            = "state"
	NameShader           = "shader"
	NameTexture          = "texture"
	NameBuffer           = "buffer"
	NameGeometry         = "geometry"
	NameFramebuffer      = "framebuffer"
	NameMask             = "mask"
	NameScissor          = "scissor"
	NameStencil          = "stencil"
	NameProjection       = "projection"
	NameTextureGC        = "textureGC"
	NameFilter           = "filter"
	NameRenderTexture    = "renderTexture"
	NameBatch            = "batch"
	NameObjectRenderer   = "objectRenderer"
)

// Host is the renderer as seen by its systems.
type Host interface {
	// Logger returns the renderer logger.
	Logger() *slog.Logger

	// GPU returns the active context, or nil before the context system
	// initialized or after it was destroyed.
	GPU() *device.Context

	// Uniforms returns the uniform group shared by every shader.
	Uniforms() *UniformGroup

	// Runners returns the lifecycle runners.
	Runners() *system.Runners

	// Systems returns the typed system set. It is populated once every
	// system is constructed and before init runs.
	Systems() *Set
}

// ContextSetter installs provider as the renderer's active context and
// returns it. Each call yields a new context identity. A nil provider clears
// the context. Only the context system holds a ContextSetter.
type ContextSetter func(provider gpucontext.DeviceProvider, attrs device.Attributes) *device.Context

// Set gives typed access to the standard systems.
type Set struct {
	View             *ViewSystem
	TextureGenerator *GenerateTextureSystem
	Background       *BackgroundSystem
	Startup          *StartupSystem
	Context          *ContextSystem
	State            *StateSystem
	Shader           *ShaderSystem
	Texture          *TextureSystem
	Buffer           *BufferSystem
	Geometry         *GeometrySystem
	Framebuffer      *FramebufferSystem
	Mask             *MaskSystem
	Scissor          *ScissorSystem
	Stencil          *StencilSystem
	Projection       *ProjectionSystem
	TextureGC        *TextureGCSystem
	Filter           *FilterSystem
	RenderTexture    *RenderTextureSystem
	Batch            *BatchSystem
	ObjectRenderer   *ObjectRendererSystem
}

// Fill looks every standard system up in m.
func (s *Set) Fill(m *system.Manager) {
	s.View, _ = system.Lookup[*ViewSystem](m, NameView)
	s.TextureGenerator, _ = system.Lookup[*GenerateTextureSystem](m, NameTextureGenerator)
	s.Background, _ = system.Lookup[*BackgroundSystem](m, NameBackground)
	s.Startup, _ = system.Lookup[*StartupSystem](m, NameStartup)
	s.Context, _ = system.Lookup[*ContextSystem](m, NameContext)
	s.State, _ = system.Lookup[*StateSystem](m, NameState)
	s.Shader, _ = system.Lookup[*ShaderSystem](m, NameShader)
	s.Texture, _ = system.Lookup[*TextureSystem](m, NameTexture)
	s.Buffer, _ = system.Lookup[*BufferSystem](m, NameBuffer)
	s.Geometry, _ = system.Lookup[*GeometrySystem](m, NameGeometry)
	s.Framebuffer, _ = system.Lookup[*FramebufferSystem](m, NameFramebuffer)
	s.Mask, _ = system.Lookup[*MaskSystem](m, NameMask)
	s.Scissor, _ = system.Lookup[*ScissorSystem](m, NameScissor)
	s.Stencil, _ = system.Lookup[*StencilSystem](m, NameStencil)
	s.Projection, _ = system.Lookup[*ProjectionSystem](m, NameProjection)
	s.TextureGC, _ = system.Lookup[*TextureGCSystem](m, NameTextureGC)
	s.Filter, _ = system.Lookup[*FilterSystem](m, NameFilter)
	s.RenderTexture, _ = system.Lookup[*RenderTextureSystem](m, NameRenderTexture)
	s.Batch, _ = system.Lookup[*BatchSystem](m, NameBatch)
	s.ObjectRenderer, _ = system.Lookup[*ObjectRendererSystem](m, NameObjectRenderer)
}

// DisplayObject is anything the object renderer can draw.
type DisplayObject interface {
	// UpdateTransform recomputes world transforms for the subtree, treating
	// parent as the world transform of the object's parent.
	UpdateTransform(parent geom.Matrix)

	// Render draws the object through the host's systems.
	Render(h Host)

	// LocalBounds returns the object's bounds in its parent's space.
	LocalBounds() geom.Rect

	// Attached reports whether the object has a parent.
	Attached() bool
}

// Entries returns the standard systems in registration order. The plugin
// system is supplied by the caller and is omitted when plugin is nil.
func Entries(h Host, setContext ContextSetter, plugin func() any) []system.Entry {
	entries := []system.Entry{
		{Name: NameView, New: func() any { return NewViewSystem(h) }},
		{Name: NameTextureGenerator, New: func() any { return NewGenerateTextureSystem(h) }},
		{Name: NameBackground, New: func() any { return NewBackgroundSystem(h) }},
		{Name: NamePlugin, New: plugin},
		{Name: NameStartup, New: func() any { return NewStartupSystem(h) }},
		{Name: NameContext, New: func() any { return NewContextSystem(h, setContext) }},
		{Name: NameState, New: func() any { return NewStateSystem(h) }},
		{Name: NameShader, New: func() any { return NewShaderSystem(h) }},
		{Name: NameTexture, New: func() any { return NewTextureSystem(h) }},
		{Name: NameBuffer, New: func() any { return NewBufferSystem(h) }},
		{Name: NameGeometry, New: func() any { return NewGeometrySystem(h) }},
		{Name: NameFramebuffer, New: func() any { return NewFramebufferSystem(h) }},
		{Name: NameMask, New: func() any { return NewMaskSystem(h) }},
		{Name: NameScissor, New: func() any { return NewScissorSystem(h) }},
		{Name: NameStencil, New: func() any { return NewStencilSystem(h) }},
		{Name: NameProjection, New: func() any { return NewProjectionSystem(h) }},
		{Name: NameTextureGC, New: func() any { return NewTextureGCSystem(h) }},
		{Name: NameFilter, New: func() any { return NewFilterSystem(h) }},
		{Name: NameRenderTexture, New: func() any { return NewRenderTextureSystem(h) }},
		{Name: NameBatch, New: func() any { return NewBatchSystem(h) }},
		{Name: NameObjectRenderer, New: func() any { return NewObjectRendererSystem(h) }},
	}
	if plugin == nil {
		entries = append(entries[:3], entries[4:]...)
	}
	return entries
}
