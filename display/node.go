// Package display provides basic display objects for the stage renderer:
// containers, solid rectangles and sprites.
package display

import (
	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/systems"
)

// Node holds the transform state shared by every display object.
//
// The local transform is built from Position, Scale, Rotation and Pivot as
// translate(Position) * rotate(Rotation) * scale(Scale) * translate(-Pivot).
type Node struct {
	Position geom.Point
	Scale    geom.Point
	Pivot    geom.Point
	Rotation float64

	// Alpha multiplies the alpha of the object and its children.
	Alpha float64

	Visible bool

	parent     *Container
	world      geom.Matrix
	worldAlpha float64
}

func newNode() Node {
	return Node{
		Scale:      geom.Pt(1, 1),
		Alpha:      1,
		Visible:    true,
		world:      geom.Identity(),
		worldAlpha: 1,
	}
}

func (n *Node) node() *Node { return n }

// Local returns the local transform.
func (n *Node) Local() geom.Matrix {
	return geom.Translate(n.Position.X, n.Position.Y).
		Multiply(geom.Rotate(n.Rotation)).
		Multiply(geom.Scale(n.Scale.X, n.Scale.Y)).
		Multiply(geom.Translate(-n.Pivot.X, -n.Pivot.Y))
}

// World returns the world transform computed by the last UpdateTransform.
func (n *Node) World() geom.Matrix { return n.world }

// WorldAlpha returns the alpha accumulated from the root.
func (n *Node) WorldAlpha() float64 { return n.worldAlpha }

// Parent returns the parent container or nil.
func (n *Node) Parent() *Container { return n.parent }

// Attached reports whether the node has a parent.
func (n *Node) Attached() bool { return n.parent != nil }

// UpdateTransform recomputes the world transform relative to parent.
func (n *Node) UpdateTransform(parent geom.Matrix) {
	n.world = parent.Multiply(n.Local())
	n.worldAlpha = n.Alpha
	if n.parent != nil {
		n.worldAlpha *= n.parent.worldAlpha
	}
}

// Object is a display object managed by this package.
type Object interface {
	systems.DisplayObject
	node() *Node
}
