package systems

import (
	"errors"
	"image"
	"slices"
	"testing"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/render"
	"github.com/gogpu/stage/system"
)

func TestEntriesOrder(t *testing.T) {
	want := []string{
		NameView, NameTextureGenerator, NameBackground, NamePlugin, NameStartup,
		NameContext, NameState, NameShader, NameTexture, NameBuffer, NameGeometry,
		NameFramebuffer, NameMask, NameScissor, NameStencil, NameProjection,
		NameTextureGC, NameFilter, NameRenderTexture, NameBatch, NameObjectRenderer,
	}
	names := func(es []system.Entry) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.Name
		}
		return out
	}

	got := names(Entries(nil, nil, func() any { return struct{}{} }))
	if !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}

	without := slices.DeleteFunc(slices.Clone(want), func(n string) bool { return n == NamePlugin })
	if got := names(Entries(nil, nil, nil)); !slices.Equal(got, without) {
		t.Errorf("Entries(nil plugin) = %v, want %v", got, without)
	}
}

func TestStartupInstallsContext(t *testing.T) {
	h := newTestHost(t, nil)

	if h.ctx == nil || h.ctx.UID != 1 {
		t.Fatalf("context = %+v, want UID 1", h.ctx)
	}
	if h.set.Context.IsLost() {
		t.Error("IsLost() = true after startup")
	}
	if got := h.set.View.Surface().Width(); got != 8 {
		t.Errorf("surface width = %d, want 8", got)
	}
	if !h.set.Projection.Root() {
		t.Error("projection should target the screen after startup")
	}
	if got := h.set.Framebuffer.Viewport(); got != image.Rect(0, 0, 8, 8) {
		t.Errorf("Viewport() = %v, want 8x8", got)
	}
	if _, ok := h.uniforms.Get(UniformProjection); !ok {
		t.Error("projection uniform not published")
	}
}

func TestStartupResolution(t *testing.T) {
	h := newTestHost(t, system.Options{
		NameView: ViewOptions{Width: 16, Height: 10, Resolution: 2, AutoDensity: true},
	})

	s := h.set.View.Surface()
	if s.Width() != 32 || s.Height() != 20 {
		t.Errorf("surface = %dx%d, want 32x20", s.Width(), s.Height())
	}
	if w, hh := h.set.View.StyleSize(); w != 16 || hh != 10 {
		t.Errorf("StyleSize() = %dx%d, want 16x10", w, hh)
	}
	if got := h.set.Framebuffer.Viewport(); got != image.Rect(0, 0, 32, 20) {
		t.Errorf("Viewport() = %v", got)
	}
	if got := h.set.Projection.Pixel(); got != geom.Scale(2, 2) {
		t.Errorf("Pixel() = %+v, want scale 2", got)
	}

	h.set.View.ResizeView(4, 4)
	if s := h.set.View.Surface(); s.Width() != 8 || s.Height() != 8 {
		t.Errorf("after resize surface = %dx%d, want 8x8", s.Width(), s.Height())
	}
	if got := h.set.Projection.Source(); got != geom.RectOf(0, 0, 4, 4) {
		t.Errorf("Source() = %+v", got)
	}
}

func TestContextAcquireFailure(t *testing.T) {
	errNoGPU := errors.New("no gpu")
	h := newTestHost(t, system.Options{
		NameContext: ContextOptions{Acquirer: device.AcquirerFunc(func(device.Attributes) (gpucontext.DeviceProvider, error) {
			return nil, errNoGPU
		})},
	})

	if !h.set.Context.IsLost() {
		t.Error("IsLost() = false after failed acquisition")
	}
	if !errors.Is(h.set.Context.Err(), errNoGPU) {
		t.Errorf("Err() = %v, want %v", h.set.Context.Err(), errNoGPU)
	}
	if h.ctx != nil {
		t.Error("context installed despite failure")
	}

	b := &box{w: 2, h: 2}
	h.set.ObjectRenderer.Render(b, RenderOptions{})
	if b.renders != 0 {
		t.Error("rendered while context lost")
	}
}

func TestContextLostAndRestored(t *testing.T) {
	h := newTestHost(t, nil)
	tex := NewBaseTexture(2, 2)
	if err := h.set.Texture.Bind(tex, 0); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if h.set.Texture.Target(tex) == nil {
		t.Fatal("texture not mirrored on the noop device")
	}

	h.set.Context.HandleLost()
	if !h.set.Context.IsLost() {
		t.Fatal("IsLost() = false")
	}
	b := &box{w: 2, h: 2}
	h.set.ObjectRenderer.Render(b, RenderOptions{})
	if b.renders != 0 {
		t.Error("rendered while context lost")
	}

	if err := h.set.Context.HandleRestored(nil); err != nil {
		t.Fatalf("HandleRestored() error = %v", err)
	}
	if h.ctx.UID != 2 {
		t.Errorf("UID = %d, want 2", h.ctx.UID)
	}
	if tex.HasGPU() {
		t.Error("stale mirror survived the context change")
	}
	h.set.ObjectRenderer.Render(b, RenderOptions{})
	if b.renders != 1 {
		t.Errorf("renders = %d, want 1", b.renders)
	}
}

func TestContextMultisample(t *testing.T) {
	tests := []struct {
		name      string
		antialias bool
		want      MSAAQuality
	}{
		{"aliased", false, MSAANone},
		{"antialiased", true, MSAAMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHost(t, system.Options{
				NameContext: ContextOptions{
					Acquirer:   device.NoopAcquirer(),
					Attributes: device.Attributes{Antialias: tt.antialias},
				},
			})
			if got := h.set.Context.Multisample(); got != tt.want {
				t.Errorf("Multisample() = %d, want %d", got, tt.want)
			}
			if h.set.Context.MaxTextureSize() == 0 {
				t.Error("MaxTextureSize() = 0")
			}
		})
	}
}

func TestDestroyReleasesOwnedProvider(t *testing.T) {
	h := newTestHost(t, nil)
	hp, ok := h.ctx.Provider.(*device.HALProvider)
	if !ok {
		t.Fatalf("provider is %T", h.ctx.Provider)
	}
	h.runners.Destroy.Emit(&system.DestroyOptions{RemoveView: true})
	if !hp.Released() {
		t.Error("owned provider not released")
	}
	if h.ctx != nil {
		t.Error("context not cleared")
	}
	if h.set.View.Surface() != nil {
		t.Error("surface kept after destroy")
	}
}

func TestBackgroundClearColor(t *testing.T) {
	tests := []struct {
		name  string
		opts  BackgroundOptions
		wantR uint8
		wantA uint8
	}{
		{"opaque red", BackgroundOptions{Color: 0xFF0000, Alpha: 1}, 0xFF, 0xFF},
		{"half red", BackgroundOptions{Color: 0xFF0000, Alpha: 0.5}, 0x80, 0x80},
		{"transparent", BackgroundOptions{Color: 0xFF0000}, 0, 0},
		{"alpha clamped", BackgroundOptions{Color: 0xFF0000, Alpha: 3}, 0xFF, 0xFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackgroundSystem(nil)
			b.Init(tt.opts)
			c := b.ClearColor()
			if c.R != tt.wantR || c.A != tt.wantA {
				t.Errorf("ClearColor() = %+v, want R=%d A=%d", c, tt.wantR, tt.wantA)
			}
		})
	}
}

func TestViewPresentAndRemove(t *testing.T) {
	presented, removed := 0, false
	surface := render.NewSurfaceTarget(8, 8,
		func(*image.RGBA) error { presented++; return nil },
		func() { removed = true })
	h := newTestHost(t, system.Options{
		NameView: ViewOptions{Width: 8, Height: 8, Surface: surface},
	})

	h.set.ObjectRenderer.Render(&box{w: 1, h: 1}, RenderOptions{})
	h.set.ObjectRenderer.Render(&box{w: 1, h: 1}, RenderOptions{RenderTexture: NewRenderTexture(1, 1, 1, ScaleLinear, MSAANone)})
	if presented != 1 {
		t.Errorf("presented = %d, want 1", presented)
	}

	h.runners.Destroy.Emit(&system.DestroyOptions{RemoveView: true})
	if !removed {
		t.Error("surface not removed")
	}
}
