// Package extract reads rendered pixels back from a stage renderer as
// images, raw pixels, PNG streams or data URLs.
package extract

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/gogpu/stage"
	"github.com/gogpu/stage/systems"
)

// Name is the plugin name.
const Name = "extract"

// ErrNoView is returned when extracting the screen after the view was
// removed.
var ErrNoView = errors.New("extract: renderer has no view")

// Extract reads pixels from a renderer.
type Extract struct {
	r *stage.Renderer
}

// New is the plugin constructor.
func New(r *stage.Renderer) (any, error) {
	return &Extract{r: r}, nil
}

// Register adds the plugin to reg.
func Register(reg *stage.PluginRegistry) {
	reg.Register(Name, New)
}

// From returns the extract plugin installed on r.
func From(r *stage.Renderer) (*Extract, bool) {
	p, ok := r.Plugin(Name)
	if !ok {
		return nil, false
	}
	e, ok := p.(*Extract)
	return e, ok
}

// Image returns a copy of obj rendered into a texture, or of the screen
// when obj is nil. The image is in premultiplied RGBA.
func (e *Extract) Image(obj stage.DisplayObject) (*image.RGBA, error) {
	if obj == nil {
		view := e.r.View()
		if view == nil {
			return nil, ErrNoView
		}
		return clone(view.Image()), nil
	}
	rt := e.r.GenerateTexture(obj, stage.TextureOptions{})
	if rt == nil {
		return nil, stage.ErrUnsupported
	}
	defer e.r.Systems().Framebuffer.DestroyFramebuffer(rt.Framebuffer)
	return clone(rt.Image()), nil
}

// Pixels returns the straight-alpha RGBA bytes of Image, row by row.
func (e *Extract) Pixels(obj stage.DisplayObject) ([]uint8, error) {
	img, err := e.Image(obj)
	if err != nil {
		return nil, err
	}
	return Unpremultiply(img.Pix), nil
}

// PNG writes Image to w as PNG.
func (e *Extract) PNG(w io.Writer, obj stage.DisplayObject) error {
	img, err := e.Image(obj)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Base64 returns Image as a PNG data URL.
func (e *Extract) Base64(obj stage.DisplayObject) (string, error) {
	var buf bytes.Buffer
	if err := e.PNG(&buf, obj); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Texture renders obj into a new render texture owned by the caller.
func (e *Extract) Texture(obj stage.DisplayObject, opts stage.TextureOptions) *systems.RenderTexture {
	return e.r.GenerateTexture(obj, opts)
}

// Unpremultiply converts premultiplied RGBA bytes to straight alpha. The
// input is not modified.
func Unpremultiply(pix []uint8) []uint8 {
	out := make([]uint8, len(pix))
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint32(pix[i+3])
		out[i+3] = uint8(a)
		if a == 0 {
			continue
		}
		for c := range 3 {
			out[i+c] = uint8(min((uint32(pix[i+c])*255+a/2)/a, 255))
		}
	}
	return out
}

func clone(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		i := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], src.Pix[i:i+b.Dx()*4])
	}
	return dst
}
