package systems

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/stage/geom"
)

// filtered renders its child through filters.
type filtered struct {
	box
	child   *box
	filters []Filter
}

func (f *filtered) UpdateTransform(parent geom.Matrix) { f.child.UpdateTransform(parent) }

func (f *filtered) Render(h Host) {
	fs := h.Systems().Filter
	fs.Push(f.child.LocalBounds(), f.filters...)
	f.child.Render(h)
	fs.Pop()
}

func TestFilterAlpha(t *testing.T) {
	h := newTestHost(t, nil)
	obj := &filtered{
		child:   &box{x: 2, y: 2, w: 4, h: 4, fill: red},
		filters: []Filter{AlphaFilter{Alpha: 0.5}},
	}
	h.set.ObjectRenderer.Render(obj, RenderOptions{})

	img := h.set.View.Surface().Image()
	got := img.RGBAAt(3, 3)
	if got.R < 120 || got.R > 135 || got.A != 0xFF {
		t.Errorf("pixel(3,3) = %v, want half red over black", got)
	}
	if got := img.RGBAAt(0, 0); got != black {
		t.Errorf("pixel(0,0) = %v, want black", got)
	}
	if h.set.Filter.Depth() != 0 {
		t.Error("filter stack not popped")
	}
	if h.set.RenderTexture.Current() != nil {
		t.Error("screen not rebound after Pop")
	}
	if h.set.Filter.Pooled() == 0 {
		t.Error("render textures not returned to the pool")
	}

	h.set.View.ResizeView(8, 8)
	if h.set.Filter.Pooled() != 0 {
		t.Error("pool kept after resize")
	}
}

func TestFilterChainReusesPool(t *testing.T) {
	h := newTestHost(t, nil)
	obj := &filtered{
		child:   &box{w: 4, h: 4, fill: red},
		filters: []Filter{AlphaFilter{Alpha: 1}, AlphaFilter{Alpha: 1}},
	}
	h.set.ObjectRenderer.Render(obj, RenderOptions{})
	first := h.set.Filter.Pooled()
	h.set.ObjectRenderer.Render(obj, RenderOptions{})
	if got := h.set.Filter.Pooled(); got != first {
		t.Errorf("Pooled() = %d after second frame, want %d", got, first)
	}
	if got := h.set.View.Surface().Image().RGBAAt(1, 1); got != red {
		t.Errorf("pixel(1,1) = %v, want red", got)
	}
}

func TestAlphaFilterApply(t *testing.T) {
	tests := []struct {
		alpha float64
		want  uint8
	}{
		{1, 0xFF},
		{0, 0},
		{0.5, 0x7F},
		{2, 0xFF},
	}
	for _, tt := range tests {
		src := image.NewRGBA(image.Rect(0, 0, 1, 1))
		src.SetRGBA(0, 0, color.RGBA{R: 0xFF, A: 0xFF})
		dst := image.NewRGBA(src.Rect)
		AlphaFilter{Alpha: tt.alpha}.Apply(dst, src)
		if got := dst.RGBAAt(0, 0); got.R != tt.want || got.A != tt.want {
			t.Errorf("alpha %v: got %v, want %#x", tt.alpha, got, tt.want)
		}
	}
}
