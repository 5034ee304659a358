package extract

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/gogpu/stage"
	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/display"
	"github.com/gogpu/stage/geom"
)

var red = color.RGBA{R: 0xFF, A: 0xFF}

func newRenderer(t *testing.T) (*stage.Renderer, *Extract) {
	t.Helper()
	reg := stage.NewPluginRegistry()
	Register(reg)
	r, err := stage.New(
		stage.WithSize(8, 8),
		stage.WithAcquirer(device.NoopAcquirer()),
		stage.WithPlugins(reg),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { r.Destroy(false) })
	e, ok := From(r)
	if !ok {
		t.Fatal("extract plugin not installed")
	}
	return r, e
}

func TestImageOfObject(t *testing.T) {
	_, e := newRenderer(t)
	img, err := e.Image(display.NewRect(geom.RectOf(3, 3, 2, 4), red))
	if err != nil {
		t.Fatalf("Image() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 4 || b.Min.X != 0 {
		t.Errorf("bounds = %v, want 2x4 at origin", b)
	}
	if got := img.RGBAAt(1, 3); got != red {
		t.Errorf("pixel = %v, want %v", got, red)
	}
}

func TestImageOfScreen(t *testing.T) {
	r, e := newRenderer(t)
	root := display.NewContainer()
	root.AddChild(display.NewRect(geom.RectOf(0, 0, 4, 4), red))
	r.Render(root, stage.RenderOptions{})

	img, err := e.Image(nil)
	if err != nil {
		t.Fatalf("Image(nil) error = %v", err)
	}
	if got := img.RGBAAt(1, 1); got != red {
		t.Errorf("pixel = %v, want %v", got, red)
	}
	img.SetRGBA(1, 1, color.RGBA{})
	if r.View().Image().RGBAAt(1, 1) != red {
		t.Error("Image(nil) shares pixels with the view")
	}
}

func TestBase64(t *testing.T) {
	_, e := newRenderer(t)
	url, err := e.Base64(display.NewRect(geom.RectOf(0, 0, 3, 3), red))
	if err != nil {
		t.Fatalf("Base64() error = %v", err)
	}
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("missing data URL prefix: %q", url[:min(len(url), 32)])
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 3 {
		t.Errorf("bounds = %v, want 3x3", b)
	}
}

func TestUnpremultiply(t *testing.T) {
	tests := []struct {
		name string
		in   []uint8
		want []uint8
	}{
		{"opaque", []uint8{10, 20, 30, 255}, []uint8{10, 20, 30, 255}},
		{"half", []uint8{64, 0, 128, 128}, []uint8{128, 0, 255, 128}},
		{"transparent", []uint8{5, 5, 5, 0}, []uint8{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unpremultiply(tt.in)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Unpremultiply(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
