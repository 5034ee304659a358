package systems

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/stage/geom"
)

// QuadShaderSource draws a textured, tinted quad.
const QuadShaderSource = `
struct Globals {
    projectionMatrix: mat3x3<f32>,
};

struct Locals {
    translationMatrix: mat3x3<f32>,
    uColor: vec4<f32>,
};

@group(0) @binding(0) var<uniform> globals: Globals;
@group(1) @binding(0) var<uniform> locals: Locals;
@group(1) @binding(1) var uSampler: texture_2d<f32>;
@group(1) @binding(2) var uSamplerState: sampler;

struct VertexOutput {
    @location(0) uv: vec2<f32>,
    @builtin(position) position: vec4<f32>,
};

@vertex
fn vs_main(@location(0) pos: vec2<f32>, @location(1) uv: vec2<f32>) -> VertexOutput {
    let p = globals.projectionMatrix * locals.translationMatrix * vec3<f32>(pos, 1.0);
    var out: VertexOutput;
    out.uv = uv;
    out.position = vec4<f32>(p.xy, 0.0, 1.0);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(uSampler, uSamplerState, in.uv) * locals.uColor;
}
`

// Quad is one textured quad.
type Quad struct {
	Texture *BaseTexture

	// Frame is the texture region in pixels. The zero rectangle selects the
	// whole texture.
	Frame image.Rectangle

	// Transform is the world transform of the quad. The quad spans the
	// frame size divided by the texture resolution.
	Transform geom.Matrix

	// Tint multiplies the texture colors. The zero value means white.
	Tint      color.RGBA
	Alpha     float64
	BlendMode BlendMode
}

// QuadRenderer batches quads and rasterizes them into the bound target.
type QuadRenderer struct {
	h Host

	shader   *Shader
	geometry *Geometry
	white    *BaseTexture
	quads    []Quad
	draws    int
}

var _ ObjectRenderer = (*QuadRenderer)(nil)

// NewQuadRenderer creates a quad renderer.
func NewQuadRenderer(h Host) *QuadRenderer {
	white := NewBaseTexture(1, 1)
	white.ScaleMode = ScaleNearest
	white.Pixels.SetRGBA(0, 0, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	return &QuadRenderer{
		h:        h,
		shader:   NewShader(NewProgram("quad", QuadShaderSource), map[string]any{"translationMatrix": geom.Identity(), "uColor": [4]float32{1, 1, 1, 1}}),
		geometry: NewQuadGeometry(),
		white:    white,
	}
}

// White returns the shared 1x1 white texture used for solid fills.
func (r *QuadRenderer) White() *BaseTexture { return r.white }

// Draws returns the number of quads rasterized.
func (r *QuadRenderer) Draws() int { return r.draws }

// Pending returns the number of batched quads.
func (r *QuadRenderer) Pending() int { return len(r.quads) }

// Render batches q, making the quad renderer current.
func (r *QuadRenderer) Render(q Quad) {
	r.h.Systems().Batch.SetObjectRenderer(r)
	r.quads = append(r.quads, q)
}

// Start implements ObjectRenderer.
func (r *QuadRenderer) Start() {}

// Stop implements ObjectRenderer.
func (r *QuadRenderer) Stop() { r.Flush() }

// Flush rasterizes the batched quads.
func (r *QuadRenderer) Flush() {
	if len(r.quads) == 0 {
		return
	}
	quads := r.quads
	r.quads = r.quads[:0]

	set := r.h.Systems()
	dst := set.Framebuffer.Target()
	if dst == nil {
		return
	}
	_ = set.Shader.Bind(r.shader, false)
	if _, err := set.Geometry.Bind(r.geometry); err != nil {
		r.h.Logger().Warn("stage: bind quad geometry", "err", err)
	}

	clip := set.Mask.Clip().Intersect(dst.Bounds())
	if clip.Empty() {
		return
	}
	target := dst.SubImage(clip).(*image.RGBA)
	pixel := set.Projection.Pixel()
	stencil := set.Stencil.Current()

	for _, q := range quads {
		tex := q.Texture
		if tex == nil {
			tex = r.white
		}
		if err := set.Texture.Bind(tex, 0); err != nil {
			r.h.Logger().Warn("stage: bind texture", "err", err)
		}
		set.State.SetBlendMode(q.BlendMode)
		r.shader.Uniforms.Set("translationMatrix", q.Transform)

		sr := q.Frame
		if sr.Empty() {
			sr = tex.Pixels.Bounds()
		}
		res := tex.res()
		s2d := pixel.Multiply(q.Transform).
			Multiply(geom.Scale(1/res, 1/res)).
			Multiply(geom.Translate(-float64(sr.Min.X), -float64(sr.Min.Y)))

		src := image.Image(tex.Pixels)
		if tinted, ok := tint(tex.Pixels, sr, q.Tint); ok {
			src = tinted
		}
		opts := &xdraw.Options{}
		if stencil != nil {
			opts.DstMask = stencil
		}
		if q.Alpha < 1 {
			opts.SrcMask = image.NewUniform(color.Alpha{A: uint8(max(q.Alpha, 0)*255 + 0.5)})
		}
		interp := tex.ScaleMode.Interpolator()

		switch q.BlendMode {
		case BlendNormal:
			interp.Transform(target, s2d.Aff3(), src, sr, xdraw.Over, opts)
		case BlendNone:
			interp.Transform(target, s2d.Aff3(), src, sr, xdraw.Src, opts)
		default:
			layer := image.NewRGBA(clip)
			interp.Transform(layer, s2d.Aff3(), src, sr, xdraw.Over, &xdraw.Options{SrcMask: opts.SrcMask})
			blendInto(target, layer, q.BlendMode, stencil)
		}
		r.draws++
	}
	set.Framebuffer.MarkDirty()
	set.State.SetBlendMode(BlendNormal)
}

// tint returns the sr region of src multiplied by c. It reports false when
// c is white or zero.
func tint(src *image.RGBA, sr image.Rectangle, c color.RGBA) (*image.RGBA, bool) {
	if c == (color.RGBA{}) || c == (color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}) {
		return nil, false
	}
	sr = sr.Intersect(src.Bounds())
	out := image.NewRGBA(sr)
	mul := [4]uint32{uint32(c.R), uint32(c.G), uint32(c.B), uint32(c.A)}
	for y := sr.Min.Y; y < sr.Max.Y; y++ {
		si, di := src.PixOffset(sr.Min.X, y), out.PixOffset(sr.Min.X, y)
		for x := 0; x < sr.Dx()*4; x++ {
			out.Pix[di+x] = uint8((uint32(src.Pix[si+x])*mul[x%4] + 127) / 255)
		}
	}
	return out, true
}

// blendInto composites the premultiplied layer into dst with a separable
// blend mode, weighted by the optional coverage mask.
func blendInto(dst, layer *image.RGBA, mode BlendMode, mask *image.Alpha) {
	r := dst.Bounds().Intersect(layer.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			li := layer.PixOffset(x, y)
			sa := uint32(layer.Pix[li+3])
			if sa == 0 {
				continue
			}
			cov := uint32(255)
			if mask != nil {
				cov = uint32(mask.AlphaAt(x, y).A)
				if cov == 0 {
					continue
				}
			}
			di := dst.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				s := uint32(layer.Pix[li+c])
				d := uint32(dst.Pix[di+c])
				var o uint32
				switch mode {
				case BlendAdd:
					o = min(s+d, 255)
				case BlendMultiply:
					o = (s*d + d*(255-sa) + 127) / 255
				case BlendScreen:
					o = s + (d*(255-s)+127)/255
				default:
					o = s + (d*(255-sa)+127)/255
				}
				o = min(o, 255)
				dst.Pix[di+c] = uint8((d*(255-cov) + o*cov + 127) / 255)
			}
		}
	}
}
