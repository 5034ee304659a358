package systems

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/gogpu/stage/geom"
)

// UniformProjection is the uniform holding the projection matrix.
const UniformProjection = "projectionMatrix"

// UniformGroup is a named set of shader inputs. DirtyID changes on every
// write so shaders know when to resynchronize.
type UniformGroup struct {
	values  map[string]any
	dirtyID int

	// Static groups are synchronized once per context.
	Static bool
}

// NewUniformGroup creates a group holding a copy of values.
func NewUniformGroup(values map[string]any) *UniformGroup {
	g := &UniformGroup{values: make(map[string]any, len(values))}
	for k, v := range values {
		g.values[k] = v
	}
	return g
}

// Set stores v under name.
func (g *UniformGroup) Set(name string, v any) {
	g.values[name] = v
	g.dirtyID++
}

// Get returns the value stored under name.
func (g *UniformGroup) Get(name string) (any, bool) {
	v, ok := g.values[name]
	return v, ok
}

// Matrix returns the matrix stored under name, or the identity.
func (g *UniformGroup) Matrix(name string) geom.Matrix {
	if m, ok := g.values[name].(geom.Matrix); ok {
		return m
	}
	return geom.Identity()
}

// DirtyID returns the write counter.
func (g *UniformGroup) DirtyID() int { return g.dirtyID }

// Names returns the uniform names in sorted order, the order Bytes packs them.
func (g *UniformGroup) Names() []string {
	names := make([]string, 0, len(g.values))
	for k := range g.values {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Bytes packs the group into a uniform buffer with std140-like alignment:
// scalars take 4 bytes, vec4 values 16 and matrices three 16-byte columns.
// Unsupported value types are skipped.
func (g *UniformGroup) Bytes() []byte {
	var out []byte
	for _, name := range g.Names() {
		switch v := g.values[name].(type) {
		case geom.Matrix:
			out = align(out, 16)
			u := v.Uniform()
			for col := 0; col < 3; col++ {
				out = appendFloats(out, u[col*3], u[col*3+1], u[col*3+2], 0)
			}
		case [4]float32:
			out = align(out, 16)
			out = appendFloats(out, v[:]...)
		case float32:
			out = appendFloats(out, v)
		case float64:
			out = appendFloats(out, float32(v))
		case int:
			out = binary.LittleEndian.AppendUint32(out, uint32(int32(v))) //nolint:gosec // G115: shader ints are 32-bit
		case bool:
			var b uint32
			if v {
				b = 1
			}
			out = binary.LittleEndian.AppendUint32(out, b)
		}
	}
	return align(out, 16)
}

func appendFloats(b []byte, fs ...float32) []byte {
	for _, f := range fs {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	return b
}

func align(b []byte, n int) []byte {
	for len(b)%n != 0 {
		b = append(b, 0)
	}
	return b
}

func float32Bytes(fs ...float32) []byte {
	return appendFloats(make([]byte, 0, len(fs)*4), fs...)
}

func uint16Bytes(vs ...uint16) []byte {
	b := make([]byte, 0, len(vs)*2)
	for _, v := range vs {
		b = binary.LittleEndian.AppendUint16(b, v)
	}
	return b
}
