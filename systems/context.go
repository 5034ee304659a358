package systems

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/system"
)

// ErrContextLost is returned by operations that need a live context.
var ErrContextLost = errors.New("systems: context lost")

// MSAAQuality is a multisample count.
type MSAAQuality uint32

// Multisample counts.
const (
	MSAANone   MSAAQuality = 0
	MSAALow    MSAAQuality = 2
	MSAAMedium MSAAQuality = 4
	MSAAHigh   MSAAQuality = 8
)

// ContextOptions configures the context system.
type ContextOptions struct {
	// Provider is an existing device provider. When nil, Acquirer is used.
	Provider gpucontext.DeviceProvider

	// Acquirer acquires a provider when none was given.
	Acquirer device.Acquirer

	Attributes device.Attributes

	// Owned marks Provider as owned by the renderer, so it is released on
	// destroy. Acquired providers are always owned.
	Owned bool
}

// ContextSystem owns the GPU context lifecycle.
type ContextSystem struct {
	h   Host
	set ContextSetter

	acquirer device.Acquirer
	attrs    device.Attributes
	provider gpucontext.DeviceProvider
	owned    bool
	lost     bool
	err      error
}

var (
	_ system.Initializer = (*ContextSystem)(nil)
	_ system.Destroyer   = (*ContextSystem)(nil)
)

// NewContextSystem creates the context system. set installs contexts on the
// renderer.
func NewContextSystem(h Host, set ContextSetter) *ContextSystem {
	return &ContextSystem{h: h, set: set}
}

// Init installs the configured provider, acquiring one when needed, and
// broadcasts contextChange.
func (c *ContextSystem) Init(opts any) {
	var o ContextOptions
	switch t := opts.(type) {
	case ContextOptions:
		o = t
	case *ContextOptions:
		o = *t
	}
	c.acquirer = o.Acquirer
	c.attrs = o.Attributes

	provider, owned := o.Provider, o.Owned
	if provider == nil {
		p, err := c.acquire()
		if err != nil {
			c.err = err
			c.lost = true
			c.h.Logger().Error("stage: context acquisition failed", "err", err)
			return
		}
		provider, owned = p, true
	}
	c.install(provider, owned)
}

// Err returns the last acquisition error.
func (c *ContextSystem) Err() error { return c.err }

// IsLost reports whether there is no usable context.
func (c *ContextSystem) IsLost() bool { return c.lost }

// Attributes returns the requested context attributes.
func (c *ContextSystem) Attributes() device.Attributes { return c.attrs }

// HandleLost marks the context as lost. Rendering is skipped until the
// context is restored.
func (c *ContextSystem) HandleLost() {
	if c.lost {
		return
	}
	c.lost = true
	c.h.Logger().Warn("stage: context lost")
}

// HandleRestored installs provider, or a freshly acquired one when provider
// is nil, under a new context identity and broadcasts contextChange.
// Passing the active provider keeps it alive: a live context is left as is,
// a lost one is reinstalled with its ownership unchanged.
func (c *ContextSystem) HandleRestored(provider gpucontext.DeviceProvider) error {
	if provider != nil && provider == c.provider {
		if !c.lost {
			return nil
		}
		c.install(provider, c.owned)
		c.h.Logger().Info("stage: context restored", "uid", c.h.GPU().UID)
		return nil
	}
	owned := false
	if provider == nil {
		p, err := c.acquire()
		if err != nil {
			c.err = err
			return err
		}
		provider, owned = p, true
	} else if err := device.Validate(provider); err != nil {
		return err
	}
	c.release()
	c.install(provider, owned)
	c.h.Logger().Info("stage: context restored", "uid", c.h.GPU().UID)
	return nil
}

// Multisample returns the sample count used for antialiased render targets.
func (c *ContextSystem) Multisample() MSAAQuality {
	if c.attrs.Antialias {
		return MSAAMedium
	}
	return MSAANone
}

// MaxTextureSize returns the largest supported 2D texture dimension.
func (c *ContextSystem) MaxTextureSize() uint32 {
	return c.h.GPU().Limits().MaxTextureDimension2D
}

// Format returns the surface texture format.
func (c *ContextSystem) Format() gputypes.TextureFormat {
	return c.h.GPU().Format()
}

// Destroy releases an owned provider and clears the active context.
func (c *ContextSystem) Destroy(*system.DestroyOptions) {
	c.release()
	c.set(nil, c.attrs)
	c.lost = true
}

func (c *ContextSystem) acquire() (gpucontext.DeviceProvider, error) {
	acq := c.acquirer
	if acq == nil {
		acq = device.DefaultAcquirer()
	}
	p, err := acq.Acquire(c.attrs)
	if err != nil {
		return nil, fmt.Errorf("systems: acquire context: %w", err)
	}
	if err := device.Validate(p); err != nil {
		return nil, fmt.Errorf("systems: acquire context: %w", err)
	}
	return p, nil
}

func (c *ContextSystem) install(provider gpucontext.DeviceProvider, owned bool) {
	c.provider = provider
	c.owned = owned
	c.lost = false
	c.err = nil
	ctx := c.set(provider, c.attrs)
	c.h.Logger().Debug("stage: context installed", "uid", ctx.UID, "adapter", ctx.Info().Name)
	c.h.Runners().ContextChange.Emit(ctx)
}

func (c *ContextSystem) release() {
	if c.owned && c.provider != nil {
		if r, ok := c.provider.(device.Releaser); ok {
			r.Release()
		}
	}
	c.provider = nil
	c.owned = false
}
