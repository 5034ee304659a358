package stage

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/oklog/ulid/v2"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/render"
	"github.com/gogpu/stage/system"
	"github.com/gogpu/stage/systems"
)

type (
	// DisplayObject is anything a Renderer can draw.
	DisplayObject = systems.DisplayObject

	// RenderOptions controls a single Render call.
	RenderOptions = systems.RenderOptions

	// TextureOptions controls GenerateTexture.
	TextureOptions = systems.TextureOptions

	// RenderTexture is a texture that can be rendered into.
	RenderTexture = systems.RenderTexture
)

// Renderer draws display objects through an ordered set of systems sharing
// one GPU context.
//
// A Renderer is not safe for concurrent use. After Destroy it must not be
// used again.
type Renderer struct {
	id  ulid.ULID
	log *slog.Logger

	opts     Options
	manager  *system.Manager
	runners  *system.Runners
	set      systems.Set
	uniforms *systems.UniformGroup

	gpu    *device.Context
	uidSeq uint64

	plugins   *PluginSystem
	destroyed bool
}

var _ systems.Host = (*Renderer)(nil)

// New creates a renderer.
//
// The GPU context is obtained before any system is constructed. When none
// can be obtained New returns an error wrapping ErrUnsupported.
func New(opts ...Option) (*Renderer, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	log := o.Logger
	if log == nil {
		log = Logger()
	}
	r := &Renderer{
		id:      ulid.Make(),
		opts:    o,
		runners: system.NewRunners(),
	}
	r.log = log.With("renderer", r.id.String())

	provider, owned, err := r.provider()
	if err != nil {
		r.log.Error("stage: no GPU context", "err", err)
		return nil, err
	}

	r.uniforms = systems.NewUniformGroup(map[string]any{
		"projectionMatrix": geom.Identity(),
	})
	r.manager = system.NewManager(r.log)

	registry := o.Plugins
	if registry == nil {
		registry = DefaultPlugins()
	}
	pluginSystem := func() any {
		r.plugins = newPluginSystem(r, registry)
		return r.plugins
	}
	if err := r.manager.Setup(system.Config{
		Runners: r.runners.Binders(),
		Systems: systems.Entries(r, r.setContext, pluginSystem),
	}); err != nil {
		releaseProvider(provider, owned)
		return nil, fmt.Errorf("stage: setup systems: %w", err)
	}
	r.set.Fill(r.manager)

	r.set.Startup.Run(system.Options{
		systems.NameView: systems.ViewOptions{
			Width:       o.Width,
			Height:      o.Height,
			Resolution:  o.Resolution,
			AutoDensity: o.AutoDensity,
			Surface:     o.View,
		},
		systems.NameBackground: systems.BackgroundOptions{
			Color:             o.BackgroundColor,
			Alpha:             o.BackgroundAlpha,
			ClearBeforeRender: o.ClearBeforeRender,
		},
		systems.NameContext: systems.ContextOptions{
			Provider:   provider,
			Acquirer:   o.Acquirer,
			Attributes: o.Attributes(),
			Owned:      owned,
		},
		systems.NameTextureGC: o.TextureGC(),
		systems.NameStartup:   systems.StartupOptions{Hello: o.Hello},
	})

	r.log.Debug("stage: renderer created",
		"width", o.Width,
		"height", o.Height,
		"resolution", o.Resolution,
		"systems", r.manager.Len())
	return r, nil
}

// provider returns the configured provider, or acquires one.
func (r *Renderer) provider() (gpucontext.DeviceProvider, bool, error) {
	if p := r.opts.Context; p != nil {
		if err := device.Validate(p); err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrUnsupported, err)
		}
		return p, false, nil
	}
	acq := r.opts.Acquirer
	if acq == nil {
		acq = device.DefaultAcquirer()
	}
	p, err := acq.Acquire(r.opts.Attributes())
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	if err := device.Validate(p); err != nil {
		releaseProvider(p, true)
		return nil, false, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return p, true, nil
}

func releaseProvider(p gpucontext.DeviceProvider, owned bool) {
	if !owned {
		return
	}
	if rel, ok := p.(device.Releaser); ok {
		rel.Release()
	}
}

func (r *Renderer) setContext(p gpucontext.DeviceProvider, attrs device.Attributes) *device.Context {
	if p == nil {
		r.gpu = nil
		return nil
	}
	r.uidSeq++
	r.gpu = &device.Context{Provider: p, UID: r.uidSeq, Attributes: attrs}
	return r.gpu
}

// Render draws obj to the screen, or to opts.RenderTexture when set.
func (r *Renderer) Render(obj DisplayObject, opts RenderOptions) {
	if r.destroyed {
		return
	}
	r.set.ObjectRenderer.Render(obj, opts)
}

// Resize sets the screen size in unscaled pixels and resizes the view.
func (r *Renderer) Resize(width, height int) {
	if r.destroyed {
		return
	}
	r.set.View.ResizeView(width, height)
}

// Reset broadcasts reset, returning every system to its default state.
func (r *Renderer) Reset() *Renderer {
	if !r.destroyed {
		r.runners.Reset.Emit(struct{}{})
	}
	return r
}

// Clear binds the current render target again and clears it to its clear
// color. The screen clears to the background color.
func (r *Renderer) Clear() {
	if r.destroyed {
		return
	}
	rts := r.set.RenderTexture
	if rt := rts.Current(); rt != nil {
		src, dst := rts.Source(), rts.Destination()
		rts.Bind(rt, &src, &dst)
	} else {
		rts.Bind(nil, nil, nil)
	}
	rts.Clear(nil)
}

// GenerateTexture renders obj into a new render texture.
func (r *Renderer) GenerateTexture(obj DisplayObject, opts TextureOptions) *RenderTexture {
	if r.destroyed {
		return nil
	}
	return r.set.TextureGenerator.GenerateTexture(obj, opts)
}

// Destroy tears every system down, in reverse registration order. When
// removeView is set the view detaches its surface. Destroy is terminal; a
// second call does nothing.
func (r *Renderer) Destroy(removeView bool) {
	if r.destroyed {
		return
	}
	r.destroyed = true

	r.runners.Destroy.Reverse()
	r.runners.Destroy.EmitWithCustomOptions(map[string]*system.DestroyOptions{
		systems.NameView: {RemoveView: removeView},
	})
	r.manager.Destroy()
	r.log.Debug("stage: renderer destroyed", "remove_view", removeView)
}

// Destroyed reports whether Destroy was called.
func (r *Renderer) Destroyed() bool { return r.destroyed }

// ID returns the renderer's unique identifier.
func (r *Renderer) ID() ulid.ULID { return r.id }

// Logger returns the renderer logger.
func (r *Renderer) Logger() *slog.Logger { return r.log }

// GPU returns the active context, or nil once destroyed.
func (r *Renderer) GPU() *device.Context { return r.gpu }

// Uniforms returns the uniform group shared by every shader.
func (r *Renderer) Uniforms() *systems.UniformGroup { return r.uniforms }

// Runners returns the lifecycle runners.
func (r *Renderer) Runners() *system.Runners { return r.runners }

// Systems returns typed access to the standard systems.
func (r *Renderer) Systems() *systems.Set { return &r.set }

// System returns the system registered under name.
func (r *Renderer) System(name string) (any, bool) {
	if r.manager == nil {
		return nil, false
	}
	return r.manager.System(name)
}

// Plugin returns the plugin instance registered under name.
func (r *Renderer) Plugin(name string) (any, bool) {
	if r.plugins == nil {
		return nil, false
	}
	return r.plugins.Plugin(name)
}

// Plugins returns the names of the installed plugins.
func (r *Renderer) Plugins() []string {
	if r.plugins == nil {
		return nil
	}
	return r.plugins.Names()
}

// Options returns the options the renderer was created with.
func (r *Renderer) Options() Options { return r.opts }

// Width returns the screen width in unscaled pixels.
func (r *Renderer) Width() int { return int(r.set.View.Screen().Width) }

// Height returns the screen height in unscaled pixels.
func (r *Renderer) Height() int { return int(r.set.View.Screen().Height) }

// Screen returns the screen rectangle.
func (r *Renderer) Screen() geom.Rect { return r.set.View.Screen() }

// Resolution returns the device pixel ratio.
func (r *Renderer) Resolution() float64 { return r.set.View.Resolution() }

// SetResolution changes the device pixel ratio.
func (r *Renderer) SetResolution(res float64) { r.set.View.SetResolution(res) }

// AutoDensity reports whether the view's presentation size follows the screen.
func (r *Renderer) AutoDensity() bool { return r.set.View.AutoDensity() }

// View returns the display surface, or nil after it was removed.
func (r *Renderer) View() render.Surface { return r.set.View.Surface() }

// LastObjectRendered returns the last object rendered to the screen.
func (r *Renderer) LastObjectRendered() DisplayObject {
	return r.set.ObjectRenderer.LastObjectRendered()
}

// RenderingToScreen reports whether the current render targets the screen.
func (r *Renderer) RenderingToScreen() bool {
	return r.set.ObjectRenderer.RenderingToScreen()
}

// Multisample returns the sample count used for antialiased targets.
func (r *Renderer) Multisample() systems.MSAAQuality {
	return r.set.Context.Multisample()
}

// ContextUID returns the identity of the active context, or zero.
func (r *Renderer) ContextUID() uint64 {
	if r.gpu == nil {
		return 0
	}
	return r.gpu.UID
}
