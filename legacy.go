package stage

import (
	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/systems"
)

// LegacyRenderOptions converts the positional render arguments into
// RenderOptions. clear is always explicit: the background setting is not
// consulted.
func LegacyRenderOptions(rt *RenderTexture, clear bool, transform *geom.Matrix, skipUpdateTransform bool) RenderOptions {
	return RenderOptions{
		RenderTexture:       rt,
		Clear:               &clear,
		Transform:           transform,
		SkipUpdateTransform: skipUpdateTransform,
	}
}

// LegacyTextureOptions converts the positional GenerateTexture arguments
// into TextureOptions.
func LegacyTextureOptions(scaleMode systems.ScaleMode, resolution float64, region *geom.Rect) TextureOptions {
	return TextureOptions{
		ScaleMode:  scaleMode,
		Resolution: resolution,
		Region:     region,
	}
}

// RenderTo renders obj with positional arguments.
//
// Deprecated: Use Render with RenderOptions.
func (r *Renderer) RenderTo(obj DisplayObject, rt *RenderTexture, clear bool, transform *geom.Matrix, skipUpdateTransform bool) {
	warnDeprecated(r.log, "Renderer.RenderTo", "Renderer.Render")
	r.Render(obj, LegacyRenderOptions(rt, clear, transform, skipUpdateTransform))
}

// GenerateTextureWith generates a texture with positional arguments.
//
// Deprecated: Use GenerateTexture with TextureOptions.
func (r *Renderer) GenerateTextureWith(obj DisplayObject, scaleMode systems.ScaleMode, resolution float64, region *geom.Rect) *RenderTexture {
	warnDeprecated(r.log, "Renderer.GenerateTextureWith", "Renderer.GenerateTexture")
	return r.GenerateTexture(obj, LegacyTextureOptions(scaleMode, resolution, region))
}
