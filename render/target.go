// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// RenderTarget defines where rendering output goes.
//
// Targets may support CPU access (Pixels), GPU access (TextureView), or both.
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// TextureView returns the GPU texture view for this target.
	// Returns nil for CPU-only targets.
	TextureView() TextureView

	// Pixels returns direct access to pixel data.
	// Returns nil for GPU-only targets.
	// For RGBA format, each pixel is 4 bytes: R, G, B, A.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	Stride() int
}

// Surface is a resizable target the rasterizer can draw into directly. The
// renderer's view is a Surface.
type Surface interface {
	RenderTarget

	// Image returns the backing image. It is replaced by Resize.
	Image() *image.RGBA

	// Resize reallocates the surface. Contents are not preserved.
	Resize(width, height int)
}

// PixmapTarget is a CPU-backed render target using *image.RGBA.
//
// Example:
//
//	target := render.NewPixmapTarget(800, 600)
//	target.Clear(color.Black)
//	img := target.Image()
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a new CPU-backed render target.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewPixmapTargetFromImage wraps an existing *image.RGBA as a render target.
// The image is used directly without copying.
func NewPixmapTargetFromImage(img *image.RGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int {
	return t.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int {
	return t.img.Bounds().Dy()
}

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// TextureView returns nil as this is a CPU-only target.
func (t *PixmapTarget) TextureView() TextureView {
	return nil
}

// Pixels returns direct access to the pixel data.
func (t *PixmapTarget) Pixels() []byte {
	return t.img.Pix
}

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int {
	return t.img.Stride
}

// Image returns the underlying *image.RGBA.
// The returned image shares memory with the target.
func (t *PixmapTarget) Image() *image.RGBA {
	return t.img
}

// Clear fills the entire target with c.
func (t *PixmapTarget) Clear(c color.Color) {
	t.ClearRect(t.img.Bounds(), c)
}

// ClearRect replaces the pixels inside r with c, ignoring blending.
func (t *PixmapTarget) ClearRect(r image.Rectangle, c color.Color) {
	draw.Draw(t.img, r.Intersect(t.img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

// SetPixel sets a single pixel at the given coordinates.
func (t *PixmapTarget) SetPixel(x, y int, c color.Color) {
	t.img.Set(x, y, c)
}

// GetPixel returns the color at the given coordinates.
func (t *PixmapTarget) GetPixel(x, y int) color.Color {
	return t.img.At(x, y)
}

// Resize replaces the image with a new one of the given dimensions.
// The contents are not preserved.
func (t *PixmapTarget) Resize(width, height int) {
	if width == t.Width() && height == t.Height() {
		return
	}
	t.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ Surface = (*PixmapTarget)(nil)

// TextureTarget is a GPU texture-backed render target.
//
// The texture is the GPU mirror of a CPU frame; Upload copies pixels into it.
type TextureTarget struct {
	device hal.Device
	width  int
	height int
	format gputypes.TextureFormat
	tex    hal.Texture
	view   hal.TextureView
}

// NewTextureTarget creates a texture and view on dev. samples of 0 or 1
// disables multisampling.
func NewTextureTarget(dev hal.Device, width, height int, format gputypes.TextureFormat, samples uint32) (*TextureTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	//nolint:gosec // G115: dimensions validated above
	desc := DefaultTextureDescriptor(uint32(width), uint32(height), format)
	desc.Label = "stage_render_target"
	desc.SampleCount = samples
	tex, view, err := CreateTexture(dev, desc)
	if err != nil {
		return nil, err
	}
	return &TextureTarget{
		device: dev,
		width:  width,
		height: height,
		format: format,
		tex:    tex,
		view:   view,
	}, nil
}

// Width returns the target width in pixels.
func (t *TextureTarget) Width() int {
	return t.width
}

// Height returns the target height in pixels.
func (t *TextureTarget) Height() int {
	return t.height
}

// Format returns the pixel format.
func (t *TextureTarget) Format() gputypes.TextureFormat {
	return t.format
}

// TextureView returns the GPU texture view, or nil after Destroy.
func (t *TextureTarget) TextureView() TextureView {
	if t.view == nil {
		return nil
	}
	return t.view
}

// Texture returns the HAL texture.
func (t *TextureTarget) Texture() hal.Texture {
	return t.tex
}

// Pixels returns nil as this is a GPU-only target.
func (t *TextureTarget) Pixels() []byte {
	return nil
}

// Stride returns 0 as this is a GPU-only target.
func (t *TextureTarget) Stride() int {
	return 0
}

// Upload writes the pixels of src into the texture.
func (t *TextureTarget) Upload(q hal.Queue, src *image.RGBA) error {
	if t.tex == nil {
		return ErrInvalidSize
	}
	b := src.Bounds().Intersect(image.Rect(0, 0, t.width, t.height))
	if b.Empty() {
		return nil
	}
	sub := src.SubImage(b).(*image.RGBA)
	return WritePixels(q, t.tex, b.Dx(), b.Dy(), sub.Pix, sub.Stride)
}

// Destroy releases GPU resources. It is safe to call more than once.
func (t *TextureTarget) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

var _ RenderTarget = (*TextureTarget)(nil)

// SurfaceTarget is the visible surface of a renderer: a CPU back buffer that
// is handed to a present function once per frame.
type SurfaceTarget struct {
	*PixmapTarget
	present  func(*image.RGBA) error
	onRemove func()
	removed  bool
}

// NewSurfaceTarget creates a surface. present and onRemove may be nil.
func NewSurfaceTarget(width, height int, present func(*image.RGBA) error, onRemove func()) *SurfaceTarget {
	return &SurfaceTarget{
		PixmapTarget: NewPixmapTarget(width, height),
		present:      present,
		onRemove:     onRemove,
	}
}

// Present hands the current frame to the present function.
func (t *SurfaceTarget) Present() error {
	if t.present == nil || t.removed {
		return nil
	}
	return t.present(t.Image())
}

// Remove detaches the surface from its host. Later Present calls do nothing.
func (t *SurfaceTarget) Remove() {
	if t.removed {
		return
	}
	t.removed = true
	if t.onRemove != nil {
		t.onRemove()
	}
}

// Removed reports whether Remove was called.
func (t *SurfaceTarget) Removed() bool {
	return t.removed
}

var _ Surface = (*SurfaceTarget)(nil)
