package device

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal/noop"
)

// Acquirer produces a device provider for a set of context attributes.
type Acquirer interface {
	Acquire(attrs Attributes) (gpucontext.DeviceProvider, error)
}

// AcquirerFunc adapts a function to Acquirer.
type AcquirerFunc func(attrs Attributes) (gpucontext.DeviceProvider, error)

// Acquire calls f(attrs).
func (f AcquirerFunc) Acquire(attrs Attributes) (gpucontext.DeviceProvider, error) {
	return f(attrs)
}

// Releaser is implemented by providers whose resources must be freed by the
// renderer that acquired them.
type Releaser interface {
	Release()
}

// Acquirer names in default priority order.
const (
	AcquirerVulkan = "vulkan"
	AcquirerMetal  = "metal"
	AcquirerDX12   = "dx12"
	AcquirerGLES   = "gles"
)

// Registry maps names to acquirer factories and tries them in priority order.
type Registry struct {
	reg      *gpucontext.Registry[Acquirer]
	priority []string
}

// NewRegistry creates an empty registry. Names listed in priority are tried
// first, in that order; other registered names follow in sorted order.
func NewRegistry(priority ...string) *Registry {
	return &Registry{
		reg:      gpucontext.NewRegistry[Acquirer](gpucontext.WithPriority(priority...)),
		priority: priority,
	}
}

// Register adds factory under name, replacing any previous registration.
func (r *Registry) Register(name string, factory func() Acquirer) {
	r.reg.Register(name, factory)
}

// Unregister removes name.
func (r *Registry) Unregister(name string) {
	r.reg.Unregister(name)
}

// Names returns the registered names in the order Acquire tries them.
func (r *Registry) Names() []string {
	var names []string
	for _, n := range r.priority {
		if r.reg.Has(n) {
			names = append(names, n)
		}
	}
	rest := r.reg.Available()
	slices.Sort(rest)
	for _, n := range rest {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	return names
}

// Acquire tries every registered acquirer and returns the first provider
// that validates. Every failure is reported wrapped in ErrUnsupported.
func (r *Registry) Acquire(attrs Attributes) (gpucontext.DeviceProvider, error) {
	var errs []error
	for _, name := range r.Names() {
		a := r.reg.Get(name)
		if a == nil {
			continue
		}
		p, err := a.Acquire(attrs)
		if err == nil {
			err = Validate(p)
		}
		if err == nil {
			return p, nil
		}
		logger().Debug("device: acquirer failed", "acquirer", name, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no acquirers registered", ErrUnsupported)
	}
	return nil, fmt.Errorf("%w: %w", ErrUnsupported, errors.Join(errs...))
}

var defaultRegistry = NewRegistry(AcquirerVulkan, AcquirerMetal, AcquirerDX12, AcquirerGLES)

// RegisterAcquirer registers an acquirer factory in the default registry.
// Typically called from init functions.
func RegisterAcquirer(name string, factory func() Acquirer) {
	defaultRegistry.Register(name, factory)
}

// Acquirers returns the names in the default registry.
func Acquirers() []string {
	return defaultRegistry.Names()
}

// DefaultAcquirer returns the default registry as an Acquirer.
func DefaultAcquirer() Acquirer {
	return defaultRegistry
}

// NoopAcquirer opens devices on the wgpu noop backend. The resulting devices
// accept every call and draw nothing, which suits headless runs and tests.
func NoopAcquirer() Acquirer {
	return HALAcquirer{Backend: noop.API{}}
}
