package device

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// HALAcquirer opens a device on a wgpu HAL backend.
type HALAcquirer struct {
	Backend hal.Backend
}

// Acquire creates an instance, selects an adapter according to the
// requested power preference and opens a logical device on it.
func (a HALAcquirer) Acquire(attrs Attributes) (gpucontext.DeviceProvider, error) {
	if a.Backend == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrUnsupported)
	}
	instance, err := a.Backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no GPU adapters found", ErrUnsupported)
	}
	selected := SelectAdapter(adapters, attrs.PowerPreference)
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	format := gputypes.TextureFormatRGBA8Unorm
	if !attrs.PremultipliedAlpha && attrs.Alpha {
		format = gputypes.TextureFormatBGRA8Unorm
	}
	logger().Info("device: adapter opened",
		"name", selected.Info.Name,
		"backend", a.Backend.Variant().String(),
		"type", selected.Info.DeviceType)

	return &HALProvider{
		instance: instance,
		adapter:  selected.Adapter,
		device:   openDev.Device,
		queue:    openDev.Queue,
		info:     selected.Info,
		limits:   selected.Capabilities.Limits,
		format:   format,
	}, nil
}

// SelectAdapter picks an adapter for the given power preference.
// High performance prefers discrete GPUs, low power prefers integrated ones,
// and no preference takes the first hardware adapter. The first adapter is
// used when nothing matches. adapters must not be empty.
func SelectAdapter(adapters []hal.ExposedAdapter, pref gputypes.PowerPreference) *hal.ExposedAdapter {
	var order []gputypes.DeviceType
	switch pref {
	case gputypes.PowerPreferenceHighPerformance:
		order = []gputypes.DeviceType{gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU}
	case gputypes.PowerPreferenceLowPower:
		order = []gputypes.DeviceType{gputypes.DeviceTypeIntegratedGPU, gputypes.DeviceTypeDiscreteGPU}
	default:
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
				adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
				return &adapters[i]
			}
		}
	}
	for _, want := range order {
		for i := range adapters {
			if adapters[i].Info.DeviceType == want {
				return &adapters[i]
			}
		}
	}
	return &adapters[0]
}

// HALProvider is a gpucontext.DeviceProvider backed by a device this package
// opened. It owns the instance, adapter and device and frees them on Release.
type HALProvider struct {
	instance hal.Instance
	adapter  hal.Adapter
	device   hal.Device
	queue    hal.Queue
	info     gputypes.AdapterInfo
	limits   gputypes.Limits
	format   gputypes.TextureFormat
	released bool
}

var _ gpucontext.DeviceProvider = (*HALProvider)(nil)

// Device returns the HAL device.
func (p *HALProvider) Device() gpucontext.Device { return p.device }

// Queue returns the HAL queue.
func (p *HALProvider) Queue() gpucontext.Queue { return p.queue }

// Adapter returns the HAL adapter.
func (p *HALProvider) Adapter() gpucontext.Adapter { return p.adapter }

// SurfaceFormat returns the preferred color format.
func (p *HALProvider) SurfaceFormat() gputypes.TextureFormat { return p.format }

// HalDevice returns the device as hal.Device.
func (p *HALProvider) HalDevice() any { return p.device }

// HalQueue returns the queue as hal.Queue.
func (p *HALProvider) HalQueue() any { return p.queue }

// Limits returns the adapter limits.
func (p *HALProvider) Limits() gputypes.Limits { return p.limits }

// AdapterInfo describes the selected adapter.
func (p *HALProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: p.info.Name, Type: adapterType(p.info.DeviceType)}
}

// Released reports whether Release has been called.
func (p *HALProvider) Released() bool { return p.released }

// Release waits for the device to go idle and destroys device, adapter and
// instance in reverse order of creation. Calling Release twice is a no-op.
func (p *HALProvider) Release() {
	if p.released {
		return
	}
	p.released = true
	if p.device != nil {
		if err := p.device.WaitIdle(); err != nil {
			logger().Warn("device: wait idle failed", "err", err)
		}
		p.device.Destroy()
		p.device = nil
	}
	p.queue = nil
	if p.adapter != nil {
		p.adapter.Destroy()
		p.adapter = nil
	}
	if p.instance != nil {
		p.instance.Destroy()
		p.instance = nil
	}
}

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}
