package systems

import (
	"image"
	"image/color"
	"log/slog"
	"testing"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/system"
)

type testHost struct {
	ctx      *device.Context
	uid      uint64
	uniforms *UniformGroup
	runners  *system.Runners
	set      Set
	mgr      *system.Manager
}

func (h *testHost) Logger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func (h *testHost) GPU() *device.Context { return h.ctx }

func (h *testHost) Uniforms() *UniformGroup { return h.uniforms }

func (h *testHost) Runners() *system.Runners { return h.runners }

func (h *testHost) Systems() *Set { return &h.set }

func (h *testHost) setContext(p gpucontext.DeviceProvider, attrs device.Attributes) *device.Context {
	if p == nil {
		h.ctx = nil
		return nil
	}
	h.uid++
	h.ctx = &device.Context{Provider: p, UID: h.uid, Attributes: attrs}
	return h.ctx
}

// newTestHost wires every standard system and runs startup with opts. A
// missing context option installs the noop device.
func newTestHost(t *testing.T, opts system.Options) *testHost {
	t.Helper()
	h := &testHost{
		uniforms: NewUniformGroup(nil),
		runners:  system.NewRunners(),
		mgr:      system.NewManager(nil),
	}
	if err := h.mgr.Setup(system.Config{
		Runners: h.runners.Binders(),
		Systems: Entries(h, h.setContext, nil),
	}); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	h.set.Fill(h.mgr)

	if opts == nil {
		opts = system.Options{}
	}
	if _, ok := opts[NameContext]; !ok {
		opts[NameContext] = ContextOptions{Acquirer: device.NoopAcquirer()}
	}
	if _, ok := opts[NameView]; !ok {
		opts[NameView] = ViewOptions{Width: 8, Height: 8, Resolution: 1}
	}
	h.set.Startup.Run(opts)
	t.Cleanup(func() {
		h.runners.Destroy.Emit(nil)
	})
	return h
}

// box is a solid rectangle display object.
type box struct {
	x, y, w, h float64
	fill       color.RGBA
	parent     bool
	world      geom.Matrix
	updates    int
	renders    int
}

func (b *box) UpdateTransform(parent geom.Matrix) {
	b.world = parent.Multiply(geom.Translate(b.x, b.y))
	b.updates++
}

func (b *box) Render(h Host) {
	b.renders++
	q := h.Systems().Batch.Quads()
	q.Render(Quad{
		Texture:   q.White(),
		Transform: b.world.Multiply(geom.Scale(b.w, b.h)),
		Tint:      b.fill,
		Alpha:     1,
	})
}

func (b *box) LocalBounds() geom.Rect { return geom.RectOf(b.x, b.y, b.w, b.h) }

func (b *box) Attached() bool { return b.parent }

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}
