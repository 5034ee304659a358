// Package device owns the GPU rendering context shared by the renderer
// systems: the device provider, its identity, and the attributes it was
// requested with.
package device

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrNoDevice is returned when a provider exposes no usable device.
	ErrNoDevice = errors.New("device: provider has no device")

	// ErrUnsupported is returned when no acquirer could produce a context.
	ErrUnsupported = errors.New("device: no GPU context available")
)

// Attributes are the context creation attributes requested by the renderer.
type Attributes struct {
	Antialias             bool
	Alpha                 bool
	PremultipliedAlpha    bool
	PreserveDrawingBuffer bool
	PowerPreference       gputypes.PowerPreference
}

// Context is the active GPU rendering context.
//
// UID identifies the underlying device instance. It changes every time a new
// device is acquired, so systems caching GPU resources key them by UID and
// drop entries for stale identities.
type Context struct {
	Provider   gpucontext.DeviceProvider
	UID        uint64
	Attributes Attributes
}

// halProvider is implemented by providers exposing raw HAL objects.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// limitsProvider is implemented by providers that know their device limits.
type limitsProvider interface {
	Limits() gputypes.Limits
}

// Device returns the provider's device or nil.
func (c *Context) Device() gpucontext.Device {
	if c == nil || c.Provider == nil {
		return nil
	}
	return c.Provider.Device()
}

// Queue returns the provider's queue or nil.
func (c *Context) Queue() gpucontext.Queue {
	if c == nil || c.Provider == nil {
		return nil
	}
	return c.Provider.Queue()
}

// HalDevice returns the HAL device when the provider exposes one.
func (c *Context) HalDevice() (hal.Device, bool) {
	if c == nil || c.Provider == nil {
		return nil, false
	}
	if hp, ok := c.Provider.(halProvider); ok {
		d, ok := hp.HalDevice().(hal.Device)
		return d, ok && d != nil
	}
	d, ok := c.Provider.Device().(hal.Device)
	return d, ok && d != nil
}

// HalQueue returns the HAL queue when the provider exposes one.
func (c *Context) HalQueue() (hal.Queue, bool) {
	if c == nil || c.Provider == nil {
		return nil, false
	}
	if hp, ok := c.Provider.(halProvider); ok {
		q, ok := hp.HalQueue().(hal.Queue)
		return q, ok && q != nil
	}
	q, ok := c.Provider.Queue().(hal.Queue)
	return q, ok && q != nil
}

// Format returns the surface format, falling back to RGBA8Unorm when the
// provider has no surface.
func (c *Context) Format() gputypes.TextureFormat {
	if c == nil || c.Provider == nil {
		return gputypes.TextureFormatRGBA8Unorm
	}
	if f := c.Provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		return f
	}
	return gputypes.TextureFormatRGBA8Unorm
}

// Info returns the adapter description.
func (c *Context) Info() gpucontext.AdapterInfo {
	if c == nil || c.Provider == nil {
		return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
	}
	return c.Provider.AdapterInfo()
}

// Limits returns the device limits, or the WebGPU defaults when the provider
// does not report them.
func (c *Context) Limits() gputypes.Limits {
	if c != nil {
		if lp, ok := c.Provider.(limitsProvider); ok {
			return lp.Limits()
		}
	}
	return gputypes.DefaultLimits()
}

// Validate checks that provider can back a rendering context.
func Validate(provider gpucontext.DeviceProvider) error {
	if provider == nil {
		return ErrNoDevice
	}
	if provider.Device() == nil {
		return ErrNoDevice
	}
	return nil
}
