package systems

import (
	"image/color"

	"github.com/gogpu/stage/system"
)

// BackgroundOptions configures the background system.
type BackgroundOptions struct {
	// Color is a 0xRRGGBB value.
	Color             uint32
	Alpha             float64
	ClearBeforeRender bool
}

// BackgroundSystem holds the screen clear color.
type BackgroundSystem struct {
	h Host

	color             uint32
	alpha             float64
	clearBeforeRender bool
}

var _ system.Initializer = (*BackgroundSystem)(nil)

// NewBackgroundSystem creates the background system.
func NewBackgroundSystem(h Host) *BackgroundSystem {
	return &BackgroundSystem{h: h, alpha: 1, clearBeforeRender: true}
}

// Init applies BackgroundOptions.
func (b *BackgroundSystem) Init(opts any) {
	switch o := opts.(type) {
	case BackgroundOptions:
		b.apply(o)
	case *BackgroundOptions:
		b.apply(*o)
	}
}

func (b *BackgroundSystem) apply(o BackgroundOptions) {
	b.color = o.Color & 0xFFFFFF
	b.SetAlpha(o.Alpha)
	b.clearBeforeRender = o.ClearBeforeRender
}

// Color returns the background color as 0xRRGGBB.
func (b *BackgroundSystem) Color() uint32 { return b.color }

// SetColor sets the background color.
func (b *BackgroundSystem) SetColor(c uint32) { b.color = c & 0xFFFFFF }

// Alpha returns the background alpha.
func (b *BackgroundSystem) Alpha() float64 { return b.alpha }

// SetAlpha sets the background alpha, clamped to [0, 1].
func (b *BackgroundSystem) SetAlpha(a float64) {
	b.alpha = min(max(a, 0), 1)
}

// ClearBeforeRender reports whether the screen is cleared every frame.
func (b *BackgroundSystem) ClearBeforeRender() bool { return b.clearBeforeRender }

// SetClearBeforeRender toggles per-frame clearing.
func (b *BackgroundSystem) SetClearBeforeRender(v bool) { b.clearBeforeRender = v }

// ClearColor returns the clear color, premultiplied by alpha.
func (b *BackgroundSystem) ClearColor() color.RGBA {
	a := b.alpha
	return color.RGBA{
		R: uint8(float64(b.color>>16&0xFF)*a + 0.5),
		G: uint8(float64(b.color>>8&0xFF)*a + 0.5),
		B: uint8(float64(b.color&0xFF)*a + 0.5),
		A: uint8(a*255 + 0.5),
	}
}
