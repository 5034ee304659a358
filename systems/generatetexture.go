package systems

import (
	"github.com/gogpu/stage/geom"
)

// TextureOptions configures GenerateTexture.
type TextureOptions struct {
	ScaleMode ScaleMode

	// Resolution of the texture. Zero uses the view resolution.
	Resolution float64

	// Region is the part of the object to capture, in its parent's space.
	// Nil captures the object's local bounds.
	Region *geom.Rect

	// Multisample renders into a multisampled target that is resolved into
	// the returned texture.
	Multisample MSAAQuality
}

// GenerateTextureSystem renders display objects into new render textures.
type GenerateTextureSystem struct {
	h Host
}

// NewGenerateTextureSystem creates the texture generator.
func NewGenerateTextureSystem(h Host) *GenerateTextureSystem {
	return &GenerateTextureSystem{h: h}
}

// GenerateTexture renders obj into a new render texture sized to the
// captured region. An empty region yields a 1x1 texture.
func (g *GenerateTextureSystem) GenerateTexture(obj DisplayObject, opts TextureOptions) *RenderTexture {
	set := g.h.Systems()

	region := obj.LocalBounds()
	if opts.Region != nil {
		region = *opts.Region
	}
	if region.Width <= 0 {
		region.Width = 1
	}
	if region.Height <= 0 {
		region.Height = 1
	}
	res := opts.Resolution
	if res <= 0 {
		res = 1
		if set.View != nil {
			res = set.View.Resolution()
		}
	}

	rt := NewRenderTexture(region.Width, region.Height, res, opts.ScaleMode, opts.Multisample)
	transform := geom.Translate(-region.X, -region.Y)
	noClear := false
	set.ObjectRenderer.Render(obj, RenderOptions{
		RenderTexture:       rt,
		Clear:               &noClear,
		Transform:           &transform,
		SkipUpdateTransform: obj.Attached(),
	})

	if opts.Multisample > MSAANone {
		resolved := NewRenderTexture(region.Width, region.Height, res, opts.ScaleMode, MSAANone)
		set.Framebuffer.Bind(rt.Framebuffer, nil)
		set.Framebuffer.Blit(resolved.Framebuffer, nil, nil)
		set.Framebuffer.DestroyFramebuffer(rt.Framebuffer)
		rt = resolved
	}
	set.RenderTexture.Bind(nil, nil, nil)
	return rt
}
