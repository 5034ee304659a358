package display

import (
	"slices"

	"github.com/gogpu/stage/geom"
	"github.com/gogpu/stage/systems"
)

// Container groups display objects. It can clip its children with a mask
// and run them through filters.
type Container struct {
	Node

	// Mask clips the children. Mask.Transform is ignored: the mask is in
	// the container's local space.
	Mask *systems.Mask

	// Filters are applied to the rendered children, in order.
	Filters []systems.Filter

	children []Object
}

var (
	_ systems.DisplayObject = (*Container)(nil)
	_ systems.Parent        = (*Container)(nil)
)

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{Node: newNode()}
}

// AddChild appends children, detaching them from previous parents.
func (c *Container) AddChild(children ...Object) {
	for _, child := range children {
		n := child.node()
		if n.parent != nil {
			n.parent.RemoveChild(child)
		}
		n.parent = c
		c.children = append(c.children, child)
	}
}

// RemoveChild detaches child. It reports whether child was found.
func (c *Container) RemoveChild(child Object) bool {
	i := slices.Index(c.children, child)
	if i < 0 {
		return false
	}
	c.children = slices.Delete(c.children, i, i+1)
	child.node().parent = nil
	return true
}

// Children implements systems.Parent.
func (c *Container) Children() []systems.DisplayObject {
	out := make([]systems.DisplayObject, len(c.children))
	for i, child := range c.children {
		out[i] = child
	}
	return out
}

// Len returns the number of children.
func (c *Container) Len() int { return len(c.children) }

// UpdateTransform updates the container and every child.
func (c *Container) UpdateTransform(parent geom.Matrix) {
	c.Node.UpdateTransform(parent)
	for _, child := range c.children {
		child.UpdateTransform(c.world)
	}
}

// LocalBounds returns the union of the children bounds in the parent's
// space.
func (c *Container) LocalBounds() geom.Rect {
	var b geom.Rect
	first := true
	for _, child := range c.children {
		cb := child.LocalBounds()
		if cb.Empty() {
			continue
		}
		if first {
			b, first = cb, false
			continue
		}
		b = b.Union(cb)
	}
	if first {
		return geom.Rect{}
	}
	return b.Transform(c.Local())
}

// Render draws the visible children, applying the mask and filters.
func (c *Container) Render(h systems.Host) {
	if !c.Visible || c.worldAlpha <= 0 {
		return
	}
	set := h.Systems()

	if len(c.Filters) > 0 {
		bounds := c.LocalBounds()
		if p := c.parent; p != nil {
			bounds = bounds.Transform(p.world)
		}
		set.Filter.Push(bounds, c.Filters...)
		defer set.Filter.Pop()
	}
	if c.Mask != nil {
		set.Batch.Flush()
		m := *c.Mask
		m.Transform = c.world
		set.Mask.Push(m)
		defer func() {
			set.Batch.Flush()
			set.Mask.Pop()
		}()
	}

	for _, child := range c.children {
		if child.node().Visible {
			child.Render(h)
		}
	}
}
