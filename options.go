package stage

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/render"
	"github.com/gogpu/stage/systems"
)

// DefaultResolution is the device pixel ratio used when none is given.
const DefaultResolution = 1.0

// Power preferences accepted by Options.PowerPreference.
const (
	PowerDefault         = ""
	PowerLowPower        = "low-power"
	PowerHighPerformance = "high-performance"
)

// Texture GC modes accepted by Options.TextureGCMode.
const (
	GCModeAuto   = "auto"
	GCModeManual = "manual"
)

// Options configures a Renderer. Package config loads the scalar fields
// from files and the environment.
type Options struct {
	Width                 int
	Height                int
	Resolution            float64
	AutoDensity           bool
	Antialias             bool
	UseContextAlpha       bool
	PremultipliedAlpha    bool
	ClearBeforeRender     bool
	PreserveDrawingBuffer bool
	BackgroundColor       uint32
	BackgroundAlpha       float64
	PowerPreference       string
	Hello                 bool

	// TextureGCMode is GCModeAuto or GCModeManual. Empty means auto.
	TextureGCMode string
	// TextureGCMaxIdle is the idle frame count after which a GPU texture is
	// freed. Zero keeps the default.
	TextureGCMaxIdle int
	// TextureGCCheckCountMax is the number of screen frames between
	// collections. Zero keeps the default.
	TextureGCCheckCountMax int

	// View is the display surface. A CPU surface is created when nil.
	View render.Surface

	// Context is an existing device provider. It bypasses acquisition and
	// is not released by the renderer.
	Context gpucontext.DeviceProvider

	// Acquirer acquires the device when Context is nil. The default acquirer
	// registry is used when both are nil.
	Acquirer device.Acquirer

	// Plugins is the registry snapshotted at init. DefaultPlugins is used
	// when nil.
	Plugins *PluginRegistry

	// Logger overrides the package logger for this renderer.
	Logger *slog.Logger
}

// DefaultOptions returns the default renderer options.
func DefaultOptions() Options {
	return Options{
		Width:              800,
		Height:             600,
		Resolution:         DefaultResolution,
		UseContextAlpha:    true,
		PremultipliedAlpha: true,
		ClearBeforeRender:  true,
		BackgroundAlpha:    1,
	}
}

// Validate reports the first invalid field.
func (o Options) Validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidOptions, o.Width, o.Height)
	case o.Resolution <= 0:
		return fmt.Errorf("%w: resolution %v", ErrInvalidOptions, o.Resolution)
	case o.BackgroundAlpha < 0 || o.BackgroundAlpha > 1:
		return fmt.Errorf("%w: background alpha %v", ErrInvalidOptions, o.BackgroundAlpha)
	}
	if _, err := powerPreference(o.PowerPreference); err != nil {
		return err
	}
	if _, err := gcMode(o.TextureGCMode); err != nil {
		return err
	}
	if o.TextureGCMaxIdle < 0 || o.TextureGCCheckCountMax < 0 {
		return fmt.Errorf("%w: texture gc limits %d/%d", ErrInvalidOptions, o.TextureGCMaxIdle, o.TextureGCCheckCountMax)
	}
	return nil
}

// TextureGC returns the texture garbage collector settings requested by o.
func (o Options) TextureGC() systems.TextureGCOptions {
	mode, _ := gcMode(o.TextureGCMode)
	return systems.TextureGCOptions{
		Mode:          mode,
		MaxIdle:       o.TextureGCMaxIdle,
		CheckCountMax: o.TextureGCCheckCountMax,
	}
}

func gcMode(s string) (systems.GCMode, error) {
	switch s {
	case "", GCModeAuto:
		return systems.GCAuto, nil
	case GCModeManual:
		return systems.GCManual, nil
	default:
		return systems.GCAuto, fmt.Errorf("%w: texture gc mode %q", ErrInvalidOptions, s)
	}
}

// Attributes returns the context attributes requested by o.
func (o Options) Attributes() device.Attributes {
	pref, _ := powerPreference(o.PowerPreference)
	return device.Attributes{
		Antialias:             o.Antialias,
		Alpha:                 o.UseContextAlpha,
		PremultipliedAlpha:    o.PremultipliedAlpha,
		PreserveDrawingBuffer: o.PreserveDrawingBuffer,
		PowerPreference:       pref,
	}
}

func powerPreference(s string) (gputypes.PowerPreference, error) {
	switch s {
	case PowerDefault:
		return gputypes.PowerPreferenceNone, nil
	case PowerLowPower:
		return gputypes.PowerPreferenceLowPower, nil
	case PowerHighPerformance:
		return gputypes.PowerPreferenceHighPerformance, nil
	default:
		return gputypes.PowerPreferenceNone, fmt.Errorf("%w: power preference %q", ErrInvalidOptions, s)
	}
}

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := stage.New(
//	    stage.WithSize(1280, 720),
//	    stage.WithResolution(2),
//	    stage.WithBackground(0x1099bb, 1),
//	)
type Option func(*Options)

// WithOptions replaces every option with o. Later options still apply.
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

// WithSize sets the screen size in unscaled pixels.
func WithSize(width, height int) Option {
	return func(o *Options) {
		o.Width, o.Height = width, height
	}
}

// WithResolution sets the device pixel ratio.
func WithResolution(res float64) Option {
	return func(o *Options) { o.Resolution = res }
}

// WithAutoDensity makes the surface presentation size follow the screen size.
func WithAutoDensity(enabled bool) Option {
	return func(o *Options) { o.AutoDensity = enabled }
}

// WithAntialias requests a multisampled context.
func WithAntialias(enabled bool) Option {
	return func(o *Options) { o.Antialias = enabled }
}

// WithBackground sets the 0xRRGGBB clear color and its alpha.
func WithBackground(color uint32, alpha float64) Option {
	return func(o *Options) {
		o.BackgroundColor, o.BackgroundAlpha = color, alpha
	}
}

// WithClearBeforeRender toggles clearing the screen every frame.
func WithClearBeforeRender(enabled bool) Option {
	return func(o *Options) { o.ClearBeforeRender = enabled }
}

// WithPreserveDrawingBuffer keeps the surface contents between frames.
func WithPreserveDrawingBuffer(enabled bool) Option {
	return func(o *Options) { o.PreserveDrawingBuffer = enabled }
}

// WithPowerPreference selects the adapter power class.
func WithPowerPreference(pref string) Option {
	return func(o *Options) { o.PowerPreference = pref }
}

// WithView renders into an existing surface.
func WithView(s render.Surface) Option {
	return func(o *Options) { o.View = s }
}

// WithContext uses an existing device provider.
func WithContext(p gpucontext.DeviceProvider) Option {
	return func(o *Options) { o.Context = p }
}

// WithAcquirer sets how the device is acquired.
func WithAcquirer(a device.Acquirer) Option {
	return func(o *Options) { o.Acquirer = a }
}

// WithPlugins sets the plugin registry.
func WithPlugins(reg *PluginRegistry) Option {
	return func(o *Options) { o.Plugins = reg }
}

// WithHello logs a banner naming the adapter after startup.
func WithHello(enabled bool) Option {
	return func(o *Options) { o.Hello = enabled }
}

// WithTextureGC configures texture garbage collection. Zero limits keep the
// defaults.
func WithTextureGC(mode string, maxIdle, checkCountMax int) Option {
	return func(o *Options) {
		o.TextureGCMode = mode
		o.TextureGCMaxIdle = maxIdle
		o.TextureGCCheckCountMax = checkCountMax
	}
}

// WithLogger sets the renderer logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
