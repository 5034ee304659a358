package systems

import (
	"math"

	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/render"
	"github.com/gogpu/stage/system"
)

// ViewOptions configures the view system.
type ViewOptions struct {
	Width, Height int
	Resolution    float64
	AutoDensity   bool

	// Surface is the display surface. A PixmapTarget is created when nil.
	Surface render.Surface
}

// remover is implemented by surfaces that can detach from their host.
type remover interface {
	Remove()
}

// ViewSystem owns the display surface and the screen rectangle.
type ViewSystem struct {
	h Host

	screen      geom.Rect
	surface     render.Surface
	resolution  float64
	autoDensity bool
	styleWidth  int
	styleHeight int
}

var (
	_ system.Initializer = (*ViewSystem)(nil)
	_ system.Destroyer   = (*ViewSystem)(nil)
)

// NewViewSystem creates the view system.
func NewViewSystem(h Host) *ViewSystem {
	return &ViewSystem{h: h, resolution: 1}
}

// Init creates or adopts the display surface.
func (v *ViewSystem) Init(opts any) {
	var o ViewOptions
	switch t := opts.(type) {
	case ViewOptions:
		o = t
	case *ViewOptions:
		o = *t
	}
	if o.Resolution > 0 {
		v.resolution = o.Resolution
	}
	v.autoDensity = o.AutoDensity
	v.screen = geom.RectOf(0, 0, float64(o.Width), float64(o.Height))
	v.surface = o.Surface
	if v.surface == nil {
		v.surface = render.NewPixmapTarget(v.pixels(o.Width), v.pixels(o.Height))
	}
}

// Screen returns the screen rectangle in unscaled pixels.
func (v *ViewSystem) Screen() geom.Rect { return v.screen }

// Surface returns the display surface, or nil after it was removed.
func (v *ViewSystem) Surface() render.Surface { return v.surface }

// Resolution returns the device pixel ratio.
func (v *ViewSystem) Resolution() float64 { return v.resolution }

// SetResolution changes the device pixel ratio and resizes the surface.
func (v *ViewSystem) SetResolution(res float64) {
	if res <= 0 || res == v.resolution {
		return
	}
	v.resolution = res
	v.ResizeView(int(v.screen.Width), int(v.screen.Height))
}

// AutoDensity reports whether the surface style size tracks the screen size.
func (v *ViewSystem) AutoDensity() bool { return v.autoDensity }

// StyleSize returns the presentation size when AutoDensity is set, and the
// surface size in device pixels otherwise.
func (v *ViewSystem) StyleSize() (int, int) {
	if v.autoDensity {
		return v.styleWidth, v.styleHeight
	}
	if v.surface == nil {
		return 0, 0
	}
	return v.surface.Width(), v.surface.Height()
}

// ResizeView resizes the screen to width x height unscaled pixels, resizes
// the surface by the resolution, and broadcasts resize.
func (v *ViewSystem) ResizeView(width, height int) {
	v.screen.Width = float64(width)
	v.screen.Height = float64(height)
	if v.surface != nil {
		v.surface.Resize(v.pixels(width), v.pixels(height))
	}
	if v.autoDensity {
		v.styleWidth, v.styleHeight = width, height
	}
	v.h.Runners().Resize.Emit(system.Size{Width: width, Height: height})
}

// Destroy detaches the surface when asked to remove the view.
func (v *ViewSystem) Destroy(opts *system.DestroyOptions) {
	if opts != nil && opts.RemoveView {
		if r, ok := v.surface.(remover); ok {
			r.Remove()
		}
	}
	v.surface = nil
}

func (v *ViewSystem) pixels(n int) int {
	return int(math.Round(float64(n) * v.resolution))
}
