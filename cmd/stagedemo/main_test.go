package main

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/stage"
	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/plugins/extract"
)

func newRenderer(t *testing.T, plugins *stage.PluginRegistry) *stage.Renderer {
	t.Helper()
	r, err := stage.New(
		stage.WithSize(32, 24),
		stage.WithAcquirer(device.NoopAcquirer()),
		stage.WithPlugins(plugins),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { r.Destroy(false) })
	return r
}

func TestSavePNG(t *testing.T) {
	plugins := stage.NewPluginRegistry()
	extract.Register(plugins)
	r := newRenderer(t, plugins)
	r.Render(buildScene(r), stage.RenderOptions{})

	path := filepath.Join(t.TempDir(), "out.png")
	if err := savePNG(r, path); err != nil {
		t.Fatalf("savePNG() error = %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("image = %dx%d, want 32x24", b.Dx(), b.Dy())
	}
}

func TestSavePNGWithoutExtract(t *testing.T) {
	r := newRenderer(t, stage.NewPluginRegistry())

	path := filepath.Join(t.TempDir(), "out.png")
	if err := savePNG(r, path); !errors.Is(err, errNoExtract) {
		t.Fatalf("savePNG() error = %v, want errNoExtract", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("output created without the extract plugin")
	}
}
