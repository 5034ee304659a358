// Command stagedemo renders a small scene with the stage renderer and saves
// the screen as a PNG.
package main

import (
	"errors"
	"flag"
	"image/color"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/stage"
	"github.com/gogpu/stage/config"
	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/display"
	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/plugins/extract"
	"github.com/gogpu/stage/systems"
)

func main() {
	var (
		configPath = flag.String("config", "", "options file (.toml, .yaml or .json)")
		output     = flag.String("output", "stage.png", "output file")
		headless   = flag.Bool("headless", true, "use the noop GPU backend")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	stage.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	opts, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load options: %v", err)
	}
	if *headless {
		opts.Acquirer = device.NoopAcquirer()
	}
	plugins := stage.NewPluginRegistry()
	extract.Register(plugins)
	opts.Plugins = plugins

	r, err := stage.New(stage.WithOptions(opts))
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Destroy(false)

	root := buildScene(r)
	r.Render(root, stage.RenderOptions{})

	if err := savePNG(r, *output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Demo saved to %s (%dx%d)\n", *output, r.Width(), r.Height())
}

var errNoExtract = errors.New("stagedemo: extract plugin not installed")

// savePNG writes the screen of r to path.
func savePNG(r *stage.Renderer, path string) error {
	ex, ok := extract.From(r)
	if !ok {
		return errNoExtract
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ex.PNG(f, nil); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func buildScene(r *stage.Renderer) *display.Container {
	w, h := float64(r.Width()), float64(r.Height())
	root := display.NewContainer()

	// Stripes
	for i := range 8 {
		t := float64(i) / 8
		c := color.RGBA{R: uint8(40 + t*120), G: uint8(60 + t*80), B: 160, A: 255}
		root.AddChild(display.NewRect(geom.RectOf(0, h*t, w, h/8+1), c))
	}

	// Rotated square
	spin := display.NewRect(geom.RectOf(w*0.25, h*0.5, 120, 120), color.RGBA{R: 255, G: 200, A: 255})
	spin.Pivot = geom.Pt(60, 60)
	spin.Rotation = math.Pi / 6
	root.AddChild(spin)

	// Masked group
	masked := display.NewContainer()
	masked.Position = geom.Pt(w*0.55, h*0.2)
	masked.Mask = &systems.Mask{Polygon: []geom.Point{{X: 0, Y: 0}, {X: 160, Y: 0}, {X: 80, Y: 140}}}
	masked.AddChild(
		display.NewRect(geom.RectOf(0, 0, 160, 70), color.RGBA{R: 230, G: 60, B: 60, A: 255}),
		display.NewRect(geom.RectOf(0, 70, 160, 70), color.RGBA{G: 200, B: 120, A: 255}),
	)
	root.AddChild(masked)

	// Faded group
	faded := display.NewContainer()
	faded.Filters = []systems.Filter{systems.AlphaFilter{Alpha: 0.5}}
	faded.AddChild(display.NewRect(geom.RectOf(w*0.1, h*0.1, 140, 90), color.RGBA{R: 255, G: 255, B: 255, A: 255}))
	root.AddChild(faded)

	// Sprite made from a generated texture
	badge := display.NewContainer()
	badge.AddChild(
		display.NewRect(geom.RectOf(0, 0, 40, 40), color.RGBA{R: 20, G: 20, B: 20, A: 255}),
		display.NewRect(geom.RectOf(10, 10, 20, 20), color.RGBA{R: 255, G: 120, A: 255}),
	)
	sprite := display.NewSpriteFromRenderTexture(r.GenerateTexture(badge, stage.TextureOptions{}))
	sprite.Position = geom.Pt(w-60, h-60)
	root.AddChild(sprite)

	return root
}
