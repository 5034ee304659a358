package system

import "github.com/gogpu/stage/device"

// Hook (runner) names.
const (
	HookInit          = "init"
	HookDestroy       = "destroy"
	HookContextChange = "contextChange"
	HookReset         = "reset"
	HookUpdate        = "update"
	HookPostrender    = "postrender"
	HookPrerender     = "prerender"
	HookResize        = "resize"
)

// HookNames lists the standard runners in wiring order.
var HookNames = []string{
	HookInit,
	HookDestroy,
	HookContextChange,
	HookReset,
	HookUpdate,
	HookPostrender,
	HookPrerender,
	HookResize,
}

// Initializer receives the init broadcast. opts is the option bag keyed by
// the system's registered name, or nil when none was supplied.
type Initializer interface {
	Init(opts any)
}

// DestroyOptions is passed to Destroyer systems that were given options.
type DestroyOptions struct {
	// RemoveView asks the view system to detach its display surface.
	RemoveView bool
}

// Destroyer releases resources. opts is nil for a plain destroy.
type Destroyer interface {
	Destroy(opts *DestroyOptions)
}

// ContextChanger is notified whenever a new GPU context becomes active.
type ContextChanger interface {
	ContextChange(ctx *device.Context)
}

// Resetter restores per-frame state.
type Resetter interface {
	Reset()
}

// Updater runs after display object transforms are updated.
type Updater interface {
	Update()
}

// PreRenderer runs before a frame is drawn.
type PreRenderer interface {
	Prerender()
}

// PostRenderer runs after a frame is drawn.
type PostRenderer interface {
	Postrender()
}

// Size is the resize runner argument, in CSS (unscaled) pixels.
type Size struct {
	Width, Height int
}

// Resizer is notified when the screen size changes.
type Resizer interface {
	Resize(width, height int)
}

// Runners is the standard set of lifecycle runners.
type Runners struct {
	Init          *Runner[Initializer, any]
	Destroy       *Runner[Destroyer, *DestroyOptions]
	ContextChange *Runner[ContextChanger, *device.Context]
	Reset         *Runner[Resetter, struct{}]
	Update        *Runner[Updater, struct{}]
	Postrender    *Runner[PostRenderer, struct{}]
	Prerender     *Runner[PreRenderer, struct{}]
	Resize        *Runner[Resizer, Size]
}

// NewRunners creates the standard runners, all empty.
func NewRunners() *Runners {
	return &Runners{
		Init:          NewRunner(HookInit, func(s Initializer, opts any) { s.Init(opts) }),
		Destroy:       NewRunner(HookDestroy, func(s Destroyer, opts *DestroyOptions) { s.Destroy(opts) }),
		ContextChange: NewRunner(HookContextChange, func(s ContextChanger, ctx *device.Context) { s.ContextChange(ctx) }),
		Reset:         NewRunner(HookReset, func(s Resetter, _ struct{}) { s.Reset() }),
		Update:        NewRunner(HookUpdate, func(s Updater, _ struct{}) { s.Update() }),
		Postrender:    NewRunner(HookPostrender, func(s PostRenderer, _ struct{}) { s.Postrender() }),
		Prerender:     NewRunner(HookPrerender, func(s PreRenderer, _ struct{}) { s.Prerender() }),
		Resize:        NewRunner(HookResize, func(s Resizer, sz Size) { s.Resize(sz.Width, sz.Height) }),
	}
}

// Binders returns the runners in HookNames order, ready for Config.Runners.
func (r *Runners) Binders() []Binder {
	return []Binder{
		r.Init,
		r.Destroy,
		r.ContextChange,
		r.Reset,
		r.Update,
		r.Postrender,
		r.Prerender,
		r.Resize,
	}
}

// Options maps system names to the option bag each receives from init.
// The framework transports the values without inspecting them.
type Options map[string]any
