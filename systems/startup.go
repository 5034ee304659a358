package systems

import "github.com/gogpu/stage/system"

// StartupOptions configures the startup system.
type StartupOptions struct {
	// Hello logs a banner naming the adapter once the context exists.
	Hello bool
}

// StartupSystem runs the first init broadcast.
type StartupSystem struct {
	h Host
}

// NewStartupSystem creates the startup system.
func NewStartupSystem(h Host) *StartupSystem {
	return &StartupSystem{h: h}
}

// Run broadcasts init with each system's option bag, then sizes the view to
// the screen, which broadcasts resize.
func (s *StartupSystem) Run(opts system.Options) {
	s.h.Runners().Init.EmitWithCustomOptions(opts)

	if o, ok := opts[NameStartup].(StartupOptions); ok && o.Hello {
		info := s.h.GPU().Info()
		s.h.Logger().Info("stage: renderer ready",
			"adapter", info.Name,
			"type", info.Type)
	}

	if view := s.h.Systems().View; view != nil {
		screen := view.Screen()
		view.ResizeView(int(screen.Width), int(screen.Height))
	}
}
