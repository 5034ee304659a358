//go:build !nogpu

package device

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

func init() {
	RegisterAcquirer(AcquirerVulkan, func() Acquirer {
		return AcquirerFunc(func(attrs Attributes) (gpucontext.DeviceProvider, error) {
			backend, ok := hal.GetBackend(gputypes.BackendVulkan)
			if !ok {
				return nil, fmt.Errorf("%w: vulkan backend not available", ErrUnsupported)
			}
			return HALAcquirer{Backend: backend}.Acquire(attrs)
		})
	})
}
