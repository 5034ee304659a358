package stage

import (
	"slices"
	"sync"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/system"
)

// PluginConstructor creates a plugin for r. Plugins may implement any of the
// lifecycle interfaces in package system (Destroyer, ContextChanger,
// Resetter, Updater, PreRenderer, PostRenderer, Resizer) to receive the
// matching broadcast.
type PluginConstructor func(r *Renderer) (any, error)

// PluginRegistry maps plugin names to constructors.
//
// A registry is safe for concurrent use. Renderers snapshot the registry
// when they initialize, so later registrations only affect new renderers.
type PluginRegistry struct {
	mu    sync.RWMutex
	ctors map[string]PluginConstructor
}

// NewPluginRegistry creates an empty registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{ctors: make(map[string]PluginConstructor)}
}

// Register adds or replaces the constructor for name.
func (p *PluginRegistry) Register(name string, ctor PluginConstructor) {
	if ctor == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctors[name] = ctor
}

// Unregister removes name.
func (p *PluginRegistry) Unregister(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.ctors, name)
}

// Lookup returns the constructor registered for name.
func (p *PluginRegistry) Lookup(name string) (PluginConstructor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.ctors[name]
	return c, ok
}

// Names returns the registered names in sorted order.
func (p *PluginRegistry) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.ctors))
	for name := range p.ctors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered plugins.
func (p *PluginRegistry) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.ctors)
}

func (p *PluginRegistry) snapshot() ([]string, map[string]PluginConstructor) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m := make(map[string]PluginConstructor, len(p.ctors))
	for k, v := range p.ctors {
		m[k] = v
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	return names, m
}

var defaultPlugins = NewPluginRegistry()

// DefaultPlugins returns the process-wide registry used by renderers created
// without WithPlugins.
func DefaultPlugins() *PluginRegistry { return defaultPlugins }

// RegisterPlugin adds ctor to the default registry under name. It is
// typically called from an init function.
func RegisterPlugin(name string, ctor PluginConstructor) {
	defaultPlugins.Register(name, ctor)
}

// PluginSystem instantiates the registered plugins and forwards lifecycle
// broadcasts to them.
type PluginSystem struct {
	r        *Renderer
	registry *PluginRegistry

	names   []string
	plugins map[string]any
}

var (
	_ system.Initializer    = (*PluginSystem)(nil)
	_ system.Destroyer      = (*PluginSystem)(nil)
	_ system.ContextChanger = (*PluginSystem)(nil)
	_ system.Resetter       = (*PluginSystem)(nil)
	_ system.Updater        = (*PluginSystem)(nil)
	_ system.PreRenderer    = (*PluginSystem)(nil)
	_ system.PostRenderer   = (*PluginSystem)(nil)
	_ system.Resizer        = (*PluginSystem)(nil)
)

func newPluginSystem(r *Renderer, registry *PluginRegistry) *PluginSystem {
	return &PluginSystem{
		r:        r,
		registry: registry,
		plugins:  make(map[string]any),
	}
}

// Init constructs every plugin in name order. A failing constructor is
// logged and skipped.
func (s *PluginSystem) Init(any) {
	names, ctors := s.registry.snapshot()
	for _, name := range names {
		p, err := ctors[name](s.r)
		if err != nil {
			s.r.log.Warn("stage: plugin failed", "plugin", name, "err", err)
			continue
		}
		if p == nil {
			continue
		}
		s.names = append(s.names, name)
		s.plugins[name] = p
	}
	if len(s.names) > 0 {
		s.r.log.Debug("stage: plugins installed", "plugins", s.names)
	}
}

// Plugin returns the instance constructed for name.
func (s *PluginSystem) Plugin(name string) (any, bool) {
	p, ok := s.plugins[name]
	return p, ok
}

// Names returns the installed plugin names in construction order.
func (s *PluginSystem) Names() []string { return slices.Clone(s.names) }

func (s *PluginSystem) each(fn func(p any)) {
	for _, name := range s.names {
		fn(s.plugins[name])
	}
}

// Destroy forwards destroy and forgets every plugin.
func (s *PluginSystem) Destroy(opts *system.DestroyOptions) {
	s.each(func(p any) {
		if d, ok := p.(system.Destroyer); ok {
			d.Destroy(opts)
		}
	})
	s.names = nil
	clear(s.plugins)
}

// ContextChange forwards contextChange.
func (s *PluginSystem) ContextChange(ctx *device.Context) {
	s.each(func(p any) {
		if c, ok := p.(system.ContextChanger); ok {
			c.ContextChange(ctx)
		}
	})
}

// Reset forwards reset.
func (s *PluginSystem) Reset() {
	s.each(func(p any) {
		if r, ok := p.(system.Resetter); ok {
			r.Reset()
		}
	})
}

// Update forwards update.
func (s *PluginSystem) Update() {
	s.each(func(p any) {
		if u, ok := p.(system.Updater); ok {
			u.Update()
		}
	})
}

// Prerender forwards prerender.
func (s *PluginSystem) Prerender() {
	s.each(func(p any) {
		if r, ok := p.(system.PreRenderer); ok {
			r.Prerender()
		}
	})
}

// Postrender forwards postrender.
func (s *PluginSystem) Postrender() {
	s.each(func(p any) {
		if r, ok := p.(system.PostRenderer); ok {
			r.Postrender()
		}
	})
}

// Resize forwards resize.
func (s *PluginSystem) Resize(width, height int) {
	s.each(func(p any) {
		if r, ok := p.(system.Resizer); ok {
			r.Resize(width, height)
		}
	})
}
