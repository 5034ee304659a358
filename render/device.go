// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrInvalidSize is returned for zero or negative texture dimensions.
var ErrInvalidSize = errors.New("render: invalid texture size")

// TextureDescriptor describes parameters for creating a 2D texture.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// SampleCount is the number of samples for multisampling.
	// Use 1 for no multisampling.
	SampleCount uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage
}

// DefaultTextureDescriptor returns a TextureDescriptor usable as a render
// attachment, a sampled texture and a copy destination.
func DefaultTextureDescriptor(width, height uint32, format gputypes.TextureFormat) TextureDescriptor {
	return TextureDescriptor{
		Width:       width,
		Height:      height,
		SampleCount: 1,
		Format:      format,
		Usage: gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopyDst |
			gputypes.TextureUsageCopySrc,
	}
}

// TextureView represents a view into a texture.
// hal.TextureView satisfies it.
type TextureView interface {
	// Destroy releases resources associated with this view.
	Destroy()
}

// CreateTexture creates a texture and a default 2D view on dev.
func CreateTexture(dev hal.Device, desc TextureDescriptor) (hal.Texture, hal.TextureView, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, desc.Width, desc.Height)
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	tex, err := dev.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("render: create texture %q: %w", desc.Label, err)
	}
	view, err := dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          desc.Format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		dev.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("render: create texture view %q: %w", desc.Label, err)
	}
	return tex, view, nil
}

// WritePixels uploads tightly or loosely packed RGBA rows into tex.
func WritePixels(q hal.Queue, tex hal.Texture, width, height int, pix []byte, stride int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	//nolint:gosec // G115: dimensions validated above
	return q.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, Aspect: gputypes.TextureAspectAll},
		pix,
		&hal.ImageDataLayout{BytesPerRow: uint32(stride), RowsPerImage: uint32(height)},
		&hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
	)
}
