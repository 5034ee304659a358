package systems

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/system"
)

// Filter post-processes the pixels drawn between FilterSystem.Push and Pop.
type Filter interface {
	// Apply writes the filtered src into dst. Both have the same bounds
	// size; dst is transparent on entry.
	Apply(dst, src *image.RGBA)
}

// AlphaFilter scales the opacity of its input.
type AlphaFilter struct {
	Alpha float64
}

// Apply multiplies every premultiplied channel by Alpha.
func (f AlphaFilter) Apply(dst, src *image.RGBA) {
	a := min(max(f.Alpha, 0), 1)
	scale := uint32(a*256 + 0.5)
	sb, db := src.Bounds(), dst.Bounds()
	for y := 0; y < sb.Dy() && y < db.Dy(); y++ {
		si := src.PixOffset(sb.Min.X, sb.Min.Y+y)
		di := dst.PixOffset(db.Min.X, db.Min.Y+y)
		for x := 0; x < sb.Dx()*4 && x < db.Dx()*4; x++ {
			dst.Pix[di+x] = uint8(uint32(src.Pix[si+x]) * scale >> 8)
		}
	}
}

type filterState struct {
	filters []Filter
	source  geom.Rect
	target  *RenderTexture

	prev       *RenderTexture
	prevSource geom.Rect
	prevDest   geom.Rect
	transform  *geom.Matrix
}

type poolKey struct {
	w, h int
	res  float64
}

// FilterSystem renders filtered subtrees through pooled render textures.
type FilterSystem struct {
	h Host

	stack []filterState
	pool  map[poolKey][]*RenderTexture
}

var (
	_ system.Resizer   = (*FilterSystem)(nil)
	_ system.Destroyer = (*FilterSystem)(nil)
)

// NewFilterSystem creates the filter system.
func NewFilterSystem(h Host) *FilterSystem {
	return &FilterSystem{h: h, pool: make(map[poolKey][]*RenderTexture)}
}

// Push redirects drawing of the world region bounds into a pooled render
// texture. Pop applies filters and composites the result back.
func (s *FilterSystem) Push(bounds geom.Rect, filters ...Filter) {
	set := s.h.Systems()
	if set.Batch != nil {
		set.Batch.Flush()
	}
	proj := set.Projection
	source := bounds
	if proj.Transform != nil {
		source = bounds.Transform(*proj.Transform)
	}
	st := filterState{
		filters:    filters,
		source:     source,
		prev:       set.RenderTexture.Current(),
		prevSource: set.RenderTexture.Source(),
		prevDest:   set.RenderTexture.Destination(),
		transform:  proj.Transform,
	}
	st.target = s.get(source.Width, source.Height, proj.Resolution())
	s.stack = append(s.stack, st)

	set.RenderTexture.Bind(st.target, &source, nil)
	transparent := st.target.ClearColor
	set.RenderTexture.Clear(&transparent)
}

// Pop applies the filters of the matching Push and draws the result into
// the previous target.
func (s *FilterSystem) Pop() {
	n := len(s.stack)
	if n == 0 {
		return
	}
	st := s.stack[n-1]
	s.stack = s.stack[:n-1]

	set := s.h.Systems()
	if set.Batch != nil {
		set.Batch.Flush()
	}

	in := st.target
	for _, f := range st.filters {
		out := s.get(in.Frame.Width, in.Frame.Height, in.Resolution())
		f.Apply(out.Image(), in.Image())
		out.Base().Update()
		if in != st.target {
			s.put(in)
		}
		in = out
	}

	set.RenderTexture.Bind(st.prev, &st.prevSource, &st.prevDest)
	set.Projection.Transform = st.transform
	if dst := set.Framebuffer.Target(); dst != nil {
		dr := st.source.Transform(set.Projection.Frame()).Image().Intersect(set.Mask.Clip())
		if !dr.Empty() {
			opts := &xdraw.Options{}
			if m := set.Stencil.Current(); m != nil {
				opts.DstMask = m
			}
			xdraw.BiLinear.Scale(dst, dr, in.Image(), in.Image().Bounds(), xdraw.Over, opts)
			set.Framebuffer.MarkDirty()
		}
	}
	if in != st.target {
		s.put(in)
	}
	s.put(st.target)
}

// Depth returns the number of active filter passes.
func (s *FilterSystem) Depth() int { return len(s.stack) }

// Pooled returns the number of idle pooled render textures.
func (s *FilterSystem) Pooled() int {
	n := 0
	for _, l := range s.pool {
		n += len(l)
	}
	return n
}

func (s *FilterSystem) get(w, h, res float64) *RenderTexture {
	if res <= 0 {
		res = 1
	}
	key := poolKey{w: scaleBy(max(w, 1), res), h: scaleBy(max(h, 1), res), res: res}
	if l := s.pool[key]; len(l) > 0 {
		rt := l[len(l)-1]
		s.pool[key] = l[:len(l)-1]
		rt.Frame = geom.RectOf(0, 0, w, h)
		return rt
	}
	return NewRenderTexture(w, h, res, ScaleLinear, MSAANone)
}

func (s *FilterSystem) put(rt *RenderTexture) {
	px := rt.Base().Pixels
	clear(px.Pix)
	key := poolKey{w: px.Bounds().Dx(), h: px.Bounds().Dy(), res: rt.Resolution()}
	s.pool[key] = append(s.pool[key], rt)
}

// Resize empties the pool.
func (s *FilterSystem) Resize(int, int) { s.clearPool() }

// Destroy empties the pool.
func (s *FilterSystem) Destroy(*system.DestroyOptions) {
	s.clearPool()
	s.stack = nil
}

func (s *FilterSystem) clearPool() {
	fbs := s.h.Systems().Framebuffer
	for k, l := range s.pool {
		for _, rt := range l {
			if fbs != nil {
				fbs.DestroyFramebuffer(rt.Framebuffer)
			}
		}
		delete(s.pool, k)
	}
}
