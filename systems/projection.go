package systems

import (
	"github.com/gogpu/stage/geom"
)

// ProjectionSystem maps world coordinates onto the bound target.
type ProjectionSystem struct {
	h Host

	destination geom.Rect
	source      geom.Rect
	resolution  float64
	root        bool
	projection  geom.Matrix

	// Transform is applied to world coordinates before projection. It is
	// set by the object renderer for the duration of a render call.
	Transform *geom.Matrix
}

// NewProjectionSystem creates the projection system.
func NewProjectionSystem(h Host) *ProjectionSystem {
	return &ProjectionSystem{h: h, resolution: 1, projection: geom.Identity()}
}

// Update projects source (world units) onto destination (target units at
// resolution). root marks the screen, whose y axis is flipped in clip space.
// The clip-space matrix is published as the projection uniform.
func (p *ProjectionSystem) Update(destination, source geom.Rect, resolution float64, root bool) {
	if resolution <= 0 {
		resolution = 1
	}
	p.destination = destination
	p.source = source
	p.resolution = resolution
	p.root = root

	p.projection = clipProjection(source, root)
	if p.Transform != nil {
		p.projection = p.projection.Multiply(*p.Transform)
	}
	if u := p.h.Uniforms(); u != nil {
		u.Set(UniformProjection, p.projection)
	}
}

// clipProjection maps source onto the [-1, 1] clip square.
func clipProjection(source geom.Rect, root bool) geom.Matrix {
	sign := 1.0
	if root {
		sign = -1
	}
	m := geom.Identity()
	if source.Width == 0 || source.Height == 0 {
		return m
	}
	m.A = 2 / source.Width
	m.E = sign * 2 / source.Height
	m.C = -1 - source.X*m.A
	m.F = -sign - source.Y*m.E
	return m
}

// Matrix returns the clip-space projection.
func (p *ProjectionSystem) Matrix() geom.Matrix { return p.projection }

// Pixel returns the matrix mapping world coordinates to target pixels.
func (p *ProjectionSystem) Pixel() geom.Matrix {
	m := p.Frame()
	if p.Transform != nil {
		m = m.Multiply(*p.Transform)
	}
	return m
}

// Frame maps the source frame onto the destination pixels, ignoring
// Transform.
func (p *ProjectionSystem) Frame() geom.Matrix {
	if p.source.Width == 0 || p.source.Height == 0 {
		return geom.Identity()
	}
	res := p.resolution
	return geom.Translate(p.destination.X*res, p.destination.Y*res).
		Multiply(geom.Scale(p.destination.Width*res/p.source.Width, p.destination.Height*res/p.source.Height)).
		Multiply(geom.Translate(-p.source.X, -p.source.Y))
}

// Destination returns the destination frame.
func (p *ProjectionSystem) Destination() geom.Rect { return p.destination }

// Source returns the source frame.
func (p *ProjectionSystem) Source() geom.Rect { return p.source }

// Resolution returns the target resolution.
func (p *ProjectionSystem) Resolution() float64 { return p.resolution }

// Root reports whether the screen is projected.
func (p *ProjectionSystem) Root() bool { return p.root }
