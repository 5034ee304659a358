package systems

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/system"
)

// ErrUnknownBuffer is returned when an attribute names a missing buffer.
var ErrUnknownBuffer = errors.New("systems: attribute references unknown buffer")

// Attribute describes one vertex input.
type Attribute struct {
	Name     string
	Buffer   int
	Format   gputypes.VertexFormat
	Location uint32
}

// Geometry is a set of vertex buffers, an optional index buffer, and the
// attributes reading them.
type Geometry struct {
	Buffers    []*Buffer
	Index      *Buffer
	Attributes []Attribute

	layouts map[uint64][]gputypes.VertexBufferLayout
}

// NewQuadGeometry returns the textured quad geometry: interleaved position
// and uv floats plus a six-entry index buffer.
func NewQuadGeometry() *Geometry {
	verts := NewBuffer("quad_vertices", gputypes.BufferUsageVertex, float32Bytes(
		0, 0, 0, 0,
		1, 0, 1, 0,
		1, 1, 1, 1,
		0, 1, 0, 1,
	))
	index := NewBuffer("quad_indices", gputypes.BufferUsageIndex, uint16Bytes(0, 1, 2, 0, 2, 3))
	return &Geometry{
		Buffers: []*Buffer{verts},
		Index:   index,
		Attributes: []Attribute{
			{Name: "aVertexPosition", Buffer: 0, Format: gputypes.VertexFormatFloat32x2, Location: 0},
			{Name: "aTextureCoord", Buffer: 0, Format: gputypes.VertexFormatFloat32x2, Location: 1},
		},
	}
}

// Layouts computes vertex buffer layouts with attributes packed in order.
func (g *Geometry) Layouts() ([]gputypes.VertexBufferLayout, error) {
	layouts := make([]gputypes.VertexBufferLayout, len(g.Buffers))
	for i := range layouts {
		layouts[i].StepMode = gputypes.VertexStepModeVertex
	}
	for _, a := range g.Attributes {
		if a.Buffer < 0 || a.Buffer >= len(g.Buffers) {
			return nil, ErrUnknownBuffer
		}
		l := &layouts[a.Buffer]
		l.Attributes = append(l.Attributes, gputypes.VertexAttribute{
			Format:         a.Format,
			Offset:         l.ArrayStride,
			ShaderLocation: a.Location,
		})
		l.ArrayStride += a.Format.Size()
	}
	return layouts, nil
}

// GeometrySystem binds geometry and caches its layouts per context.
type GeometrySystem struct {
	h Host

	uid     uint64
	bound   *Geometry
	managed map[*Geometry]struct{}
}

var (
	_ system.ContextChanger = (*GeometrySystem)(nil)
	_ system.Resetter       = (*GeometrySystem)(nil)
	_ system.Destroyer      = (*GeometrySystem)(nil)
)

// NewGeometrySystem creates the geometry system.
func NewGeometrySystem(h Host) *GeometrySystem {
	return &GeometrySystem{h: h, managed: make(map[*Geometry]struct{})}
}

// ContextChange drops cached layouts of older contexts.
func (s *GeometrySystem) ContextChange(ctx *device.Context) {
	s.bound = nil
	if ctx == nil {
		return
	}
	s.uid = ctx.UID
	for g := range s.managed {
		for uid := range g.layouts {
			if uid != s.uid {
				delete(g.layouts, uid)
			}
		}
	}
}

// Bind uploads the buffers of g and returns its vertex layouts.
func (s *GeometrySystem) Bind(g *Geometry) ([]gputypes.VertexBufferLayout, error) {
	buffers := s.h.Systems().Buffer
	for _, b := range g.Buffers {
		if err := buffers.Update(b); err != nil {
			return nil, err
		}
	}
	if g.Index != nil {
		if err := buffers.Update(g.Index); err != nil {
			return nil, err
		}
	}
	s.managed[g] = struct{}{}
	s.bound = g
	if l, ok := g.layouts[s.uid]; ok {
		return l, nil
	}
	l, err := g.Layouts()
	if err != nil {
		return nil, err
	}
	if g.layouts == nil {
		g.layouts = make(map[uint64][]gputypes.VertexBufferLayout)
	}
	g.layouts[s.uid] = l
	return l, nil
}

// Bound returns the current geometry.
func (s *GeometrySystem) Bound() *Geometry { return s.bound }

// Reset unbinds the current geometry.
func (s *GeometrySystem) Reset() { s.bound = nil }

// Destroy releases the buffers of every bound geometry.
func (s *GeometrySystem) Destroy(*system.DestroyOptions) {
	buffers := s.h.Systems().Buffer
	for g := range s.managed {
		if buffers != nil {
			for _, b := range g.Buffers {
				buffers.DestroyBuffer(b)
			}
			buffers.DestroyBuffer(g.Index)
		}
		g.layouts = nil
	}
	clear(s.managed)
	s.bound = nil
}
