package metrics

import (
	"image/color"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gogpu/stage"
	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/display"
	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/systems"
)

func newRenderer(t *testing.T, reg *prometheus.Registry) (*stage.Renderer, *Collector) {
	t.Helper()
	plugins := stage.NewPluginRegistry()
	Register(plugins, Options{Registerer: reg, Namespace: "test"})
	r, err := stage.New(
		stage.WithSize(8, 4),
		stage.WithAcquirer(device.NoopAcquirer()),
		stage.WithPlugins(plugins),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p, ok := r.Plugin(Name)
	if !ok {
		t.Fatalf("metrics plugin not installed")
	}
	return r, p.(*Collector)
}

func TestCollectorRecordsFrames(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, c := newRenderer(t, reg)
	defer r.Destroy(false)

	root := display.NewContainer()
	r.Render(root, stage.RenderOptions{})
	r.Render(root, stage.RenderOptions{})
	rt := systems.NewRenderTexture(2, 2, 1, systems.ScaleLinear, systems.MSAANone)
	r.Render(root, stage.RenderOptions{RenderTexture: rt})

	if got := testutil.ToFloat64(c.frames.WithLabelValues("screen")); got != 2 {
		t.Errorf("screen frames = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.frames.WithLabelValues("texture")); got != 1 {
		t.Errorf("texture frames = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.contextChanges); got != 1 {
		t.Errorf("context changes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.screenWidth); got != 8 {
		t.Errorf("width = %v, want 8", got)
	}
	if got := testutil.ToFloat64(c.screenHeight); got != 4 {
		t.Errorf("height = %v, want 4", got)
	}
}

func TestCollectorCountsQuads(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, c := newRenderer(t, reg)
	defer r.Destroy(false)

	root := display.NewContainer()
	root.AddChild(display.NewRect(geom.RectOf(0, 0, 4, 4), color.RGBA{R: 0xFF, A: 0xFF}))
	r.Render(root, stage.RenderOptions{})
	first := testutil.ToFloat64(c.draws)
	if first == 0 {
		t.Fatal("quads drawn = 0 after a render")
	}
	r.Render(root, stage.RenderOptions{})
	if got := testutil.ToFloat64(c.draws); got != 2*first {
		t.Errorf("quads drawn = %v, want %v", got, 2*first)
	}
	if n, err := testutil.GatherAndCount(reg, "test_batch_quads_drawn_total"); err != nil || n != 1 {
		t.Errorf("GatherAndCount(quads_drawn_total) = %d, %v, want 1", n, err)
	}
}

func TestCollectorReset(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, c := newRenderer(t, reg)
	defer r.Destroy(false)

	r.Reset().Reset()

	if got := testutil.ToFloat64(c.resets); got != 2 {
		t.Errorf("resets = %v, want 2", got)
	}
}

func TestDestroyUnregisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, _ := newRenderer(t, reg)

	if n, err := testutil.GatherAndCount(reg); err != nil || n == 0 {
		t.Fatalf("GatherAndCount() = %d, %v, want metrics", n, err)
	}
	r.Destroy(false)

	n, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if n != 0 {
		t.Errorf("metrics after Destroy = %d, want 0", n)
	}
}

func TestTwoRenderersShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, _ := newRenderer(t, reg)
	defer a.Destroy(false)
	b, _ := newRenderer(t, reg)
	defer b.Destroy(false)

	if len(b.Plugins()) != 1 {
		t.Errorf("second renderer plugins = %v, want [metrics]", b.Plugins())
	}
}
